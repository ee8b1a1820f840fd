package services

// Association is any event-owned child record with a stable primary key.
type Association interface {
	GetID() uint
}

// AssociationDiff partitions a client-submitted set of child records
// against the records currently attached to an event.
type AssociationDiff[T Association] struct {
	// ToCreate holds submitted records that carried no id, stamped with
	// the owning event.
	ToCreate []T
	// ToUpdate holds submitted records whose id matched an existing
	// record; their mutable fields are persisted individually.
	ToUpdate []T
	// ToDelete holds ids of existing records absent from the submitted
	// set.
	ToDelete []uint
}

// DiffAssociations computes the create/update/delete sets for one
// association type. stamp is applied to each record slated for creation so
// it lands on the right event. The diff is order-independent: reordering
// the submitted set yields the same partition, and re-applying an already
// applied set yields empty create and delete sets.
func DiffAssociations[T Association](existing, submitted []T, stamp func(*T)) AssociationDiff[T] {
	var diff AssociationDiff[T]

	existingIDs := make(map[uint]bool, len(existing))
	for _, record := range existing {
		existingIDs[record.GetID()] = true
	}

	submittedIDs := make(map[uint]bool, len(submitted))
	for _, record := range submitted {
		id := record.GetID()
		if id == 0 {
			if stamp != nil {
				stamp(&record)
			}
			diff.ToCreate = append(diff.ToCreate, record)
			continue
		}
		submittedIDs[id] = true
		if existingIDs[id] {
			diff.ToUpdate = append(diff.ToUpdate, record)
		}
		// A submitted id that matches nothing is a stale reference from
		// a concurrent writer; dropping it is the benign outcome.
	}

	for _, record := range existing {
		if !submittedIDs[record.GetID()] {
			diff.ToDelete = append(diff.ToDelete, record.GetID())
		}
	}

	return diff
}
