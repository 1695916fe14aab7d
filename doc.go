// Package enact is a framework for generative software: programs whose
// executions are themselves data, committed to a content-addressed store as
// they run and replayable from any prior point.
//
// Three pieces compose the model. A Resource is anything that can be
// reduced to named FieldValues and committed to a Store, which hashes it
// into a Ref. A Func wrapped in Invoke runs under tracking: every call, its
// input, and its outcome (or the children it spawned) are committed as an
// Invocation, chained into a tree by the calling context carried on
// context.Context. Replay re-executes a Func against a previously committed
// Invocation tree, reusing whatever the live and recorded calls agree on and
// re-running only what diverges.
//
// A running Func can ask for a value it can't produce itself by calling
// RequestInput, which raises an *InputRequest and suspends the call —
// everything executed up to that point is still committed, just marked
// incomplete, so a Generator can resume past the suspension once the caller
// supplies the missing value with SetInput. Rewind forces part of an
// already-complete tree to re-execute on the next replay, without disturbing
// anything else in the store.
package enact
