package store

// ChangeKind is the kind of mutation a transaction frame records for a key.
type ChangeKind int

const (
	// ChangeNone marks the absence of a value. It never appears in a
	// record's Current slot; a record is only created when a frame sets or
	// deletes a key.
	ChangeNone ChangeKind = 1
	ChangeSet  ChangeKind = 2
	// ChangeDelete is the pending-delete marker: the key resolves as absent
	// while the record is live, and the deletion is applied on commit.
	ChangeDelete ChangeKind = 3
)

// Change is one slot of a record: either a concrete value (ChangeSet), a
// pending delete (ChangeDelete), or nothing at all (ChangeNone).
type Change struct {
	Kind  ChangeKind
	Value string // meaningful only when Kind == ChangeSet
}

func setValue(value string) Change {
	return Change{Kind: ChangeSet, Value: value}
}

func none() Change {
	return Change{Kind: ChangeNone}
}

func deleted() Change {
	return Change{Kind: ChangeDelete}
}

// Record tracks one key inside one transaction frame.
//
// Previous holds the value that was visible for the key immediately before
// the frame began (ChangeNone if the key did not exist then). Current holds
// what the frame did to the key: ChangeSet with a value, or ChangeDelete.
type Record struct {
	Previous Change
	Current  Change
}

// frame is one level of the transaction stack above the base layer. Only
// the base layer stores raw values; every frame stores records exclusively.
type frame map[string]Record
