package models

import "time"

// NodeKind classifies a tree entry for rendering purposes.
type NodeKind string

const (
	KindFolder NodeKind = "folder"
	KindText   NodeKind = "text"
	KindImage  NodeKind = "image"
	KindBinary NodeKind = "binary"
)

// Node is one file or folder as observed through the rendered tree.
//
// Name is the full stored name including the ordinal prefix
// (e.g. "0007_notes.md"); LogicalName strips the prefix for display.
// Children is populated only for folders that were pulled up during
// rendering; the folder's own node is then spliced out of the parent
// listing and Children take its place.
type Node struct {
	Name               string    `json:"name"`
	LogicalName        string    `json:"logical_name"`
	Ordinal            int       `json:"ordinal"`
	Kind               NodeKind  `json:"kind"`
	Content            string    `json:"content,omitempty"`
	CreateTime         time.Time `json:"create_time"`
	ModifyTime         time.Time `json:"modify_time"`
	Children           []*Node   `json:"children,omitempty"`
	HasBackendChildren bool      `json:"has_backend_children"`
}

// BatchResult reports the outcome of a batch operation (delete, paste).
// Items are attempted independently; one failure never aborts the batch.
type BatchResult struct {
	Succeeded int      `json:"succeeded"`
	Total     int      `json:"total"`
	Errors    []string `json:"errors,omitempty"`
}
