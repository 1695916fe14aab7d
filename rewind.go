package enact

// Rewind checks out the Invocation tree rooted at ref, removes its last n
// leaf calls in depth-first, right-to-left order, marks every ancestor of a
// removed leaf Complete=false, and commits the result as a new Invocation —
// the original ref is untouched and still checkoutable, since the store is
// append-only.
//
// A subsequent Replay (or Invoke resuming through Generator/Replay) against
// the returned ref re-executes exactly the calls Rewind removed, along with
// anything downstream of them that the live run produces differently —
// this is how "resample the last dice roll" is implemented on top of the
// journal rather than as a special case of it.
//
// If n is at least the total number of leaves in the tree, the whole tree
// (including the root) is marked incomplete for re-execution.
func Rewind(store *Store, ref Ref[Invocation], n int) (Ref[Invocation], error) {
	if n <= 0 {
		return ref, nil
	}

	inv, err := Checkout(store, ref)
	if err != nil {
		return Ref[Invocation]{}, err
	}

	if len(inv.Response.Children) == 0 {
		inv.Response.Complete = false
		return Commit(store, inv)
	}

	budget := n
	updated, changed, err := rewindInvocation(store, inv, &budget)
	if err != nil {
		return Ref[Invocation]{}, err
	}
	if budget > 0 {
		// Fewer than n leaves existed under ref; force the root itself to
		// re-run too so the whole tree is accounted for.
		updated.Response.Complete = false
		changed = true
	}
	if !changed {
		return ref, nil
	}
	return Commit(store, updated)
}

// rewindInvocation removes leaves from inv's subtree, right to left, until
// budget reaches zero or the subtree is exhausted. It reports whether
// anything was removed, which the caller uses to decide whether inv itself
// needs re-committing with Complete=false.
func rewindInvocation(store *Store, inv Invocation, budget *int) (Invocation, bool, error) {
	children := inv.Response.Children
	newChildren := make([]FieldValue, len(children))
	copy(newChildren, children)

	changed := false
	for i := len(newChildren) - 1; i >= 0 && *budget > 0; i-- {
		childRef := RefAs[Invocation](newChildren[i])
		childInv, err := Checkout(store, childRef)
		if err != nil {
			return inv, changed, err
		}

		if len(childInv.Response.Children) == 0 {
			newChildren = append(newChildren[:i], newChildren[i+1:]...)
			*budget--
			changed = true
			continue
		}

		updatedChild, childChanged, err := rewindInvocation(store, childInv, budget)
		if err != nil {
			return inv, changed, err
		}
		if childChanged {
			updatedChild.Response.Complete = false
			newRef, err := Commit(store, updatedChild)
			if err != nil {
				return inv, changed, err
			}
			newChildren[i] = RefVal(newRef)
			changed = true
		}
	}

	if changed {
		inv.Response.Children = newChildren
		inv.Response.Complete = false
	}
	return inv, changed, nil
}
