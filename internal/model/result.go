package model

// StructureResult is the outcome of applying or previewing a structure.
type StructureResult struct {
	Zone          *Zone        `json:"zone"`
	BinsCreated   int          `json:"binsCreated"`
	BinsPreserved int          `json:"binsPreserved"`
	BinsUpdated   int          `json:"binsUpdated"`
	BinsDeleted   int          `json:"binsDeleted"`
	BinsBlocked   int          `json:"binsBlocked"`
	ItemsDetached int          `json:"itemsDetached"`
	BlockedBins   []BlockedBin `json:"blockedBins"`

	// Work left undone in additive mode.
	SkippedUpdates  int  `json:"skippedUpdates"`
	SkippedRemovals int  `json:"skippedRemovals"`
	Preview         bool `json:"preview"`
}

// ZoneDeletion is the outcome of deleting a zone.
type ZoneDeletion struct {
	Success          bool `json:"success"`
	DeletedBinsCount int  `json:"deletedBinsCount"`
	ItemsDetached    int  `json:"itemsDetached"`
}
