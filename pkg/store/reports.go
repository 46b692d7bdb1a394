package store

// UpdateReport summarizes one update command.
type UpdateReport struct {
	Updated int
}

// DeleteReport summarizes one delete command.
type DeleteReport struct {
	Deleted int
}

// Remap records a bookmark restored under a new id because its original
// id was already taken when the delete was undone.
type Remap struct {
	OldID int64
	NewID int64
}

// UndoUnit describes one logical unit reverted by Undo: the operation
// it undid, how many rows that touched, and any id remaps.
type UndoUnit struct {
	Op     Op
	Rows   int
	Remaps []Remap
}

// UndoReport summarizes an Undo call. Undone may fall short of
// Requested when the log ran out of units.
type UndoReport struct {
	Requested int
	Undone    int
	Units     []UndoUnit
}

// Shortfall is the number of requested units the log could not supply.
func (r UndoReport) Shortfall() int {
	return r.Requested - r.Undone
}
