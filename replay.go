package enact

import "context"

// replayState holds the previously recorded Invocation a node is replaying
// against. Invoke consults it, via replayChildAt, before running fn.Run
// live: if the live (callable, input) digests match the recorded child at
// the same index, and that child's Response is marked Complete, the
// recorded Response is reused outright with no re-execution.
type replayState struct {
	recorded Invocation
}

// replayChildAt returns the recorded child Invocation at idx, checked out
// from the store, if this node is replaying and idx is within the recorded
// children. A checkout failure is treated as "no recorded child" rather
// than a hard error — the call proceeds fresh.
func (n *node) replayChildAt(idx int) (Ref[Invocation], Invocation, bool) {
	if n.replaying == nil {
		return Ref[Invocation]{}, Invocation{}, false
	}
	children := n.replaying.recorded.Response.Children
	if idx < 0 || idx >= len(children) {
		return Ref[Invocation]{}, Invocation{}, false
	}
	ref := RefAs[Invocation](children[idx])
	inv, err := Checkout(n.store, ref)
	if err != nil {
		return Ref[Invocation]{}, Invocation{}, false
	}
	return ref, inv, true
}

type strictCtxKey struct{}

// WithStrictReplay sets whether a replay run should fail loudly
// (ReplayError) on the first divergence between recorded and live calls, or
// discard the recorded suffix from that point and continue executing
// fresh. The default, with no value set, is non-strict.
func WithStrictReplay(ctx context.Context, strict bool) context.Context {
	return context.WithValue(ctx, strictCtxKey{}, strict)
}

func isStrictReplay(ctx context.Context) bool {
	strict, _ := ctx.Value(strictCtxKey{}).(bool)
	return strict
}

// Replay re-executes fn against input, replaying against the Invocation
// tree previously committed under recordedRoot wherever live and recorded
// (callable, input) digests agree, and falling through to fresh execution
// the moment they diverge. In strict mode, a divergence returns a
// ReplayError immediately; in non-strict mode (the default), the recorded
// suffix from the divergence point on is discarded and replaced by what
// actually runs.
func Replay[In Resource, Out Resource](ctx context.Context, store *Store, recordedRoot Ref[Invocation], strict bool, fn Func[In, Out], input In) (Out, error) {
	ctx = WithStore(ctx, store)
	ctx = WithStrictReplay(ctx, strict)

	synthetic := &node{
		store: store,
		path:  "root",
		replaying: &replayState{
			recorded: Invocation{Response: Response{Children: []FieldValue{RefVal(recordedRoot)}}},
		},
	}
	ctx = withNode(ctx, synthetic)
	return Invoke(ctx, fn, input)
}

// RaisedError reconstructs a raised condition's message when a replay reuses
// a recorded Response rather than re-executing fn.Run — the original Go
// error value no longer exists, only the text committed to its ErrorBox.
type RaisedError struct {
	Message string
}

func (e *RaisedError) Error() string { return e.Message }

func newReplayedError(message string) error {
	return &RaisedError{Message: message}
}
