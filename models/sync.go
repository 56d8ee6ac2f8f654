package models

// SnapshotResponse carries the full remote state of one collection for the
// authenticated user. Soft-deleted remote records are not included: absence
// from the snapshot is how the remote reports a deletion.
type SnapshotResponse struct {
	Collection Collection `json:"collection"`
	Entities   []Entity   `json:"entities"`

	// Length is the number of entries in Entities.
	Length int `json:"length"`
}

// PushRequest sends pending local changes of one collection to the remote.
// Created and Updated carry full entities; Deleted carries keys only.
type PushRequest struct {
	Collection Collection `json:"collection"`
	Created    []Entity   `json:"created,omitempty"`
	Updated    []Entity   `json:"updated,omitempty"`
	Deleted    []string   `json:"deleted,omitempty"`

	// Length is the total number of changes in the request.
	Length int `json:"length"`
}

// Size returns the number of changes carried by r.
func (r PushRequest) Size() int {
	return len(r.Created) + len(r.Updated) + len(r.Deleted)
}

// Empty reports whether r carries no changes.
func (r PushRequest) Empty() bool {
	return r.Size() == 0
}

// PushResponse lists the keys the remote accepted from a PushRequest.
type PushResponse struct {
	Accepted []string `json:"accepted"`
	Length   int      `json:"length"`
}
