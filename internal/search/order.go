package search

import (
	"sort"
	"time"

	"notetree/internal/domain/models"
)

// ModTimeFunc resolves a hit's file to its modification time.
type ModTimeFunc func(file string) (time.Time, error)

// Sort orders merged hits in place. OrderNone preserves tool output order.
//
// OrderModTime: modification time descending, then filename, then line
// ascending. OrderEmbeddedDate: the timestamp token found in each file's
// first reported line, newest first, falling back to now when absent.
func Sort(hits []models.SearchHit, order models.SearchOrder, modTime ModTimeFunc) {
	switch order {
	case models.OrderModTime:
		times := make(map[string]time.Time, len(hits))
		for _, h := range hits {
			if _, ok := times[h.File]; ok {
				continue
			}
			t, err := modTime(h.File)
			if err != nil {
				t = time.Time{}
			}
			times[h.File] = t
		}
		sort.SliceStable(hits, func(i, j int) bool {
			ti, tj := times[hits[i].File], times[hits[j].File]
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			if hits[i].File != hits[j].File {
				return hits[i].File < hits[j].File
			}
			return hits[i].Line < hits[j].Line
		})

	case models.OrderEmbeddedDate:
		now := time.Now()
		dates := make(map[string]time.Time, len(hits))
		for _, h := range hits {
			if _, ok := dates[h.File]; ok {
				continue
			}
			if ts, ok := ExtractTimestamp(h.Content); ok {
				dates[h.File] = ts
			} else {
				dates[h.File] = now
			}
		}
		sort.SliceStable(hits, func(i, j int) bool {
			di, dj := dates[hits[i].File], dates[hits[j].File]
			if !di.Equal(dj) {
				return di.After(dj)
			}
			if hits[i].File != hits[j].File {
				return hits[i].File < hits[j].File
			}
			return hits[i].Line < hits[j].Line
		})
	}
}
