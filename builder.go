package enact

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Func is a registered, invokable unit of work: a name (used to match calls
// across a replay) plus the Go function that actually runs.
type Func[In Resource, Out Resource] struct {
	Name string
	Run  func(ctx context.Context, in In) (Out, error)
}

// NewFunc constructs a Func.
func NewFunc[In Resource, Out Resource](name string, run func(context.Context, In) (Out, error)) Func[In, Out] {
	return Func[In, Out]{Name: name, Run: run}
}

// node is the ambient, per-invocation tracking scope threaded through
// context.Context while a tracked call executes. It is not goroutine-local
// storage (Go has none); it is carried explicitly on the context the way
// the teacher's Processor carries configuration on the receiver, just
// scoped per call instead of per type. In asynchronous mode, children are
// also tracked by a task-local identity (see asyncdriver.go); the builder
// itself only ever sees one node at a time per goroutine.
type node struct {
	store *Store

	mu          sync.Mutex
	path        string
	childRefs   []FieldValue
	nextIndex   int
	lastInvRef  Ref[Invocation]
	hasLastInv  bool

	// pending tracks children started but not yet appended to childRefs —
	// used by the async driver to detect IncompleteSubinvocation.
	pending map[int]bool

	replaying *replayState
}

type nodeCtxKey struct{}

func withNode(ctx context.Context, n *node) context.Context {
	return context.WithValue(ctx, nodeCtxKey{}, n)
}

func nodeFromContext(ctx context.Context) (*node, bool) {
	n, ok := ctx.Value(nodeCtxKey{}).(*node)
	return n, ok
}

func childPath(parent *node, idx int) string {
	if parent == nil {
		return "root." + strconv.Itoa(idx)
	}
	return parent.path + "." + strconv.Itoa(idx)
}

// Invoke runs fn.Run(ctx, input) under tracking: it records a Request
// (callable name + input, both committed to the ambient store) and, once
// fn.Run returns, a Response (output or raised condition, plus every child
// invocation spawned along the way) as a single committed Invocation. The
// Invocation is appended to the enclosing node's children, if there is one.
//
// A bare call to fn.Run(ctx, input) instead of Invoke is a "plain call": it
// bypasses tracking entirely and leaves no trace in the journal. Use Invoke
// whenever the call's result should be replayable.
//
// If fn.Run raises an InputRequest, Invoke still commits what ran so far —
// a Response with Complete=false and only the children finished before
// suspension — so a later retry can replay straight back to the suspension
// point instead of starting over.
func Invoke[In Resource, Out Resource](ctx context.Context, fn Func[In, Out], input In) (Out, error) {
	var zero Out

	store, err := CurrentStore(ctx)
	if err != nil {
		return zero, err
	}

	inputRef, err := Commit(store, input)
	if err != nil {
		return zero, err
	}
	callableRef, err := Commit(store, CallableDescriptor{Name: fn.Name})
	if err != nil {
		return zero, err
	}

	parent, hasParent := nodeFromContext(ctx)
	idx := 0
	var recordedInv Invocation
	haveRecorded := false
	if hasParent {
		parent.mu.Lock()
		idx = parent.nextIndex
		parent.nextIndex++
		if parent.pending != nil {
			parent.pending[idx] = true
		}
		_, recordedInv, haveRecorded = parent.replayChildAt(idx)
		parent.mu.Unlock()
	}
	path := childPath(parent, idx)

	digestsMatch := haveRecorded &&
		digestOf(recordedInv.Request.Invokable) == callableRef.Digest() &&
		digestOf(recordedInv.Request.Input) == inputRef.Digest()

	if haveRecorded && !digestsMatch {
		divergeErr := newReplayError(path, idx,
			"callable "+digestOf(recordedInv.Request.Invokable).String()+" input "+digestOf(recordedInv.Request.Input).String(),
			"callable "+callableRef.Digest().String()+" input "+inputRef.Digest().String())
		emitReplayDivergence(path, idx, isStrictReplay(ctx), divergeErr)
		if isStrictReplay(ctx) {
			return zero, divergeErr
		}
		haveRecorded = false // non-strict: discard the recorded subtree, run fresh
	}

	if digestsMatch && recordedInv.Response.Complete {
		emitReplayReused(path, idx)
		invRef := mustCommitSameDigest(store, recordedInv)
		if hasParent {
			appendChild(parent, idx, invRef)
		}
		return decodeOutputOrErr[Out](store, recordedInv)
	}

	child := &node{store: store, path: path}
	if digestsMatch {
		// Resuming a previously suspended call: replay its completed
		// children, then continue executing from where it left off.
		child.replaying = &replayState{recorded: recordedInv}
	}
	childCtx := withNode(ctx, child)

	start := time.Now()
	emitInvocationStart(path)
	out, callErr := fn.Run(childCtx, input)
	duration := time.Since(start)

	if ir, ok := asInputRequest(callErr); ok {
		emitInputSuspend(path)
		resp := Response{
			Output:     Null(),
			Raised:     Null(),
			RaisedHere: false,
			Children:   child.childRefs,
			Complete:   false,
		}
		inv := Invocation{
			Request:  Request{Invokable: RefVal(callableRef), Input: RefVal(inputRef)},
			Response: resp,
		}
		invRef, cerr := Commit(store, inv)
		if cerr != nil {
			return zero, cerr
		}
		if hasParent {
			appendChild(parent, idx, invRef)
		}
		return zero, ir
	}

	if err := child.checkComplete(); err != nil {
		return zero, err
	}

	emitInvocationComplete(path, duration, callErr)

	resp := Response{Output: Null(), Raised: Null(), Children: child.childRefs, Complete: true}
	if callErr != nil {
		boxRef, cerr := Commit(store, ErrorBox{Message: callErr.Error()})
		if cerr != nil {
			return zero, cerr
		}
		resp.Raised = RefVal(boxRef)
		resp.RaisedHere = true
	} else {
		outRef, cerr := Commit(store, out)
		if cerr != nil {
			return zero, cerr
		}
		resp.Output = RefVal(outRef)
	}

	inv := Invocation{
		Request:  Request{Invokable: RefVal(callableRef), Input: RefVal(inputRef)},
		Response: resp,
	}
	invRef, err := Commit(store, inv)
	if err != nil {
		return zero, err
	}
	if hasParent {
		appendChild(parent, idx, invRef)
	}

	return out, callErr
}

// mustCommitSameDigest recommits an already-recorded Invocation: since
// commits are idempotent and content-addressed, this is a no-op write that
// simply returns the Invocation's Ref without needing to thread it through
// the checkout call above.
func mustCommitSameDigest(store *Store, inv Invocation) Ref[Invocation] {
	ref, err := Commit(store, inv)
	if err != nil {
		// Re-committing bytes already known to be well-formed (they were
		// just checked out) cannot fail under a working backend.
		panic(err)
	}
	return ref
}

func appendChild(parent *node, idx int, ref Ref[Invocation]) {
	parent.mu.Lock()
	defer parent.mu.Unlock()
	for len(parent.childRefs) <= idx {
		parent.childRefs = append(parent.childRefs, FieldValue{})
	}
	parent.childRefs[idx] = RefVal(ref)
	parent.lastInvRef = ref
	parent.hasLastInv = true
	if parent.pending != nil {
		delete(parent.pending, idx)
	}
}

// checkComplete reports IncompleteSubinvocation if any child this node
// spawned was started (given an index) but never finished and appended —
// reachable in async mode when a caller forgets to await a spawned task.
func (n *node) checkComplete() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for idx := range n.pending {
		return newIncompleteSubinvocationError(n.path, idx)
	}
	return nil
}

func digestOf(v FieldValue) Digest {
	if v.Kind() != KindRef {
		return Digest{}
	}
	return v.AsRef().digest()
}

func decodeOutputOrErr[Out Resource](store *Store, inv Invocation) (Out, error) {
	var zero Out
	if inv.Response.RaisedHere {
		boxRef := RefAs[ErrorBox](inv.Response.Raised)
		box, err := Checkout(store, boxRef)
		if err != nil {
			return zero, err
		}
		return zero, newReplayedError(box.Message)
	}
	outRef := RefAs[Out](inv.Response.Output)
	return Checkout(store, outRef)
}
