package enact

import (
	"context"
	"fmt"
	"strconv"
)

// Task is a handle to a concurrently spawned tracked invocation. Await
// blocks until it finishes; its result is only visible to the caller
// through Await, never through a shared variable.
type Task[Out Resource] struct {
	done chan struct{}
	out  Out
	err  error
}

// Await blocks until the spawned invocation finishes and returns its
// result.
func (t *Task[Out]) Await() (Out, error) {
	<-t.done
	return t.out, t.err
}

// Spawn starts fn(input) concurrently as a tracked child of the enclosing
// node. Unlike Invoke's synchronous children, which are ordered in the
// parent's Response.Children by start order, Spawned children are appended
// in the order they COMPLETE — a node's recorded child list only reflects
// an arrival order once every spawned task under it has been awaited.
//
// A spawned task whose goroutine has not finished by the time its parent's
// Invoke call finalizes is reported as IncompleteSubinvocation: the
// parent's own Response can't be finalized while a child it started is
// still unaccounted for. A task that has already finished counts as
// accounted for whether or not it was Awaited.
func Spawn[In Resource, Out Resource](ctx context.Context, fn Func[In, Out], input In) (*Task[Out], error) {
	store, err := CurrentStore(ctx)
	if err != nil {
		return nil, err
	}
	parent, hasParent := nodeFromContext(ctx)
	if !hasParent {
		return nil, fmt.Errorf("%w: async spawn requires an enclosing tracked invocation", ErrNoActiveStore)
	}

	parent.mu.Lock()
	if parent.pending == nil {
		parent.pending = make(map[int]bool)
	}
	spawnID := parent.nextIndex
	parent.nextIndex++
	parent.pending[spawnID] = true
	var recordedInv Invocation
	haveRecorded := false
	if parent.replaying != nil {
		_, recordedInv, haveRecorded = parent.replayChildAt(spawnID)
	}
	parent.mu.Unlock()

	task := &Task[Out]{done: make(chan struct{})}

	go func() {
		defer close(task.done)

		inputRef, err := Commit(store, input)
		if err != nil {
			task.err = err
			parent.mu.Lock()
			delete(parent.pending, spawnID)
			parent.mu.Unlock()
			return
		}
		callableRef, err := Commit(store, CallableDescriptor{Name: fn.Name})
		if err != nil {
			task.err = err
			parent.mu.Lock()
			delete(parent.pending, spawnID)
			parent.mu.Unlock()
			return
		}

		digestsMatch := haveRecorded &&
			digestOf(recordedInv.Request.Invokable) == callableRef.Digest() &&
			digestOf(recordedInv.Request.Input) == inputRef.Digest()

		var out Out
		var runErr error
		var childrenRefs []FieldValue

		if digestsMatch && recordedInv.Response.Complete {
			out, runErr = decodeOutputOrErr[Out](store, recordedInv)
			childrenRefs = recordedInv.Response.Children
		} else {
			child := &node{store: store, path: parent.path + ".async" + strconv.Itoa(spawnID)}
			if digestsMatch {
				child.replaying = &replayState{recorded: recordedInv}
			}
			childCtx := withNode(ctx, child)
			out, runErr = fn.Run(childCtx, input)
			childrenRefs = child.childRefs
		}

		task.out = out
		task.err = runErr

		if ir, ok := asInputRequest(runErr); ok {
			task.err = ir
			// Leaves this spawnID pending: the parent can't finalize
			// while this child is suspended rather than finished.
			return
		}

		resp := Response{Output: Null(), Raised: Null(), Children: childrenRefs, Complete: true}
		if runErr != nil {
			boxRef, cerr := Commit(store, ErrorBox{Message: runErr.Error()})
			if cerr != nil {
				task.err = cerr
				return
			}
			resp.Raised = RefVal(boxRef)
			resp.RaisedHere = true
		} else {
			outRef, cerr := Commit(store, out)
			if cerr != nil {
				task.err = cerr
				return
			}
			resp.Output = RefVal(outRef)
		}

		inv := Invocation{
			Request:  Request{Invokable: RefVal(callableRef), Input: RefVal(inputRef)},
			Response: resp,
		}
		invRef, cerr := Commit(store, inv)
		if cerr != nil {
			task.err = cerr
			return
		}

		parent.mu.Lock()
		parent.childRefs = append(parent.childRefs, RefVal(invRef))
		parent.lastInvRef = invRef
		parent.hasLastInv = true
		delete(parent.pending, spawnID)
		parent.mu.Unlock()
	}()

	return task, nil
}

// Gather spawns fn(input) for every element of inputs and awaits all of
// them, returning their outputs in the same order as inputs (regardless of
// completion order — Gather, unlike Spawn/Await used directly, restores
// call-order for its own caller's convenience).
func Gather[In Resource, Out Resource](ctx context.Context, fn Func[In, Out], inputs []In) ([]Out, error) {
	tasks := make([]*Task[Out], len(inputs))
	for i, in := range inputs {
		t, err := Spawn(ctx, fn, in)
		if err != nil {
			return nil, err
		}
		tasks[i] = t
	}

	outs := make([]Out, len(inputs))
	var firstErr error
	for i, t := range tasks {
		out, err := t.Await()
		outs[i] = out
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return outs, firstErr
}
