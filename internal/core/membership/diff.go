// Package membership reconciles a desired join-table membership set against
// the currently persisted one. Both join relations (user↔profile and
// profile↔permission) share the same diff rule: the owning aggregate's save
// is the sole writer of its join rows, and the save carries the complete
// desired set.
package membership

// Diff computes the join-row changes that move current to desired. Ids present
// in both sets are untouched. Order is preserved from the inputs so callers
// apply changes deterministically; duplicates are ignored.
func Diff(current, desired []int64) (toAdd, toRemove []int64) {
	currentSet := make(map[int64]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	desiredSet := make(map[int64]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}

	seen := make(map[int64]struct{}, len(desired))
	for _, id := range desired {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}

	seen = make(map[int64]struct{}, len(current))
	for _, id := range current {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := desiredSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	return toAdd, toRemove
}

// CollectIDs extracts the positive ids from a caller payload, reporting the
// count of entries that carried no usable id (logged as warnings by callers,
// never treated as errors).
func CollectIDs(ids []int64) (valid []int64, skipped int) {
	for _, id := range ids {
		if id <= 0 {
			skipped++
			continue
		}
		valid = append(valid, id)
	}
	return valid, skipped
}
