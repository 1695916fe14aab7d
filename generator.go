package enact

import "context"

// Generator drives a tracked invocation one suspension at a time: call Next
// until it stops returning an *InputRequest, calling SetInput with the
// requested value in between. Internally each Next is a fresh Invoke call
// replayed against whatever was committed on the previous attempt: tracked
// child calls that completed before the last suspension are reused, while
// the body of fn itself runs again from the start.
type Generator[In Resource, Out Resource] struct {
	store *Store
	fn    Func[In, Out]
	input In

	rootRef  *Ref[Invocation]
	override *FieldValue
}

// NewGenerator constructs a Generator for fn(input), committing nothing
// until the first call to Next.
func NewGenerator[In Resource, Out Resource](store *Store, fn Func[In, Out], input In) *Generator[In, Out] {
	return &Generator[In, Out]{store: store, fn: fn, input: input}
}

// SetInput supplies the value for the most recently raised InputRequest.
// It takes effect on the next call to Next and is consumed by it. During
// that Next the value is returned to every RequestInput call reached, not
// only to the one that raised last time.
func (g *Generator[In, Out]) SetInput(v FieldValue) {
	g.override = &v
}

// RootRef returns the Ref to the most recently committed top-level
// Invocation, if Next has run at least once. Pass it to Rewind to force
// part of the run to re-execute, then to Replay (or a fresh Generator
// seeded with the rewound ref) to pick the run back up.
func (g *Generator[In, Out]) RootRef() (Ref[Invocation], bool) {
	if g.rootRef == nil {
		return Ref[Invocation]{}, false
	}
	return *g.rootRef, true
}

// Seed points the Generator at a previously committed Invocation tree — the
// result of a prior Generator's RootRef, possibly after a Rewind — so the
// next Next() call replays against it instead of starting fresh.
func (g *Generator[In, Out]) Seed(ref Ref[Invocation]) {
	r := ref
	g.rootRef = &r
}

// Next resumes execution. If fn suspends again, it returns the new
// *InputRequest and a zero Out/nil error; call SetInput and Next again to
// continue. Once fn runs to completion (or fails for a reason other than
// suspension), Next returns a nil *InputRequest along with the final
// output and error.
func (g *Generator[In, Out]) Next(ctx context.Context) (Out, *InputRequest, error) {
	var zero Out

	override := g.override
	g.override = nil

	ctx = WithStore(ctx, g.store)
	if override != nil {
		ctx = WithInputOverride(ctx, *override)
	}

	// synthetic wraps the actual root call as "child 0" of an empty parent,
	// the same trick Replay uses, so Invoke's normal child-matching logic
	// is what decides whether to reuse, resume, or diverge from rootRef.
	synthetic := &node{store: g.store, path: "gen"}
	if g.rootRef != nil {
		synthetic.replaying = &replayState{
			recorded: Invocation{Response: Response{Children: []FieldValue{RefVal(*g.rootRef)}}},
		}
	}
	ctx = withNode(ctx, synthetic)

	out, runErr := Invoke(ctx, g.fn, g.input)

	if synthetic.hasLastInv {
		ref := synthetic.lastInvRef
		g.rootRef = &ref
	}

	if ir, ok := asInputRequest(runErr); ok {
		return zero, ir, nil
	}
	return out, nil, runErr
}
