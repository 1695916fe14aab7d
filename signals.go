package enact

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for store, invocation, replay, and input-request events.
var (
	SignalCommit             = capitan.NewSignal("enact.store.commit", "Value committed to a store")
	SignalCheckout           = capitan.NewSignal("enact.store.checkout", "Value checked out of a store")
	SignalInvocationStart    = capitan.NewSignal("enact.invocation.start", "Tracked invocation beginning")
	SignalInvocationComplete = capitan.NewSignal("enact.invocation.complete", "Tracked invocation finished")
	SignalReplayDivergence   = capitan.NewSignal("enact.replay.divergence", "Recorded and live children disagreed")
	SignalReplayReused       = capitan.NewSignal("enact.replay.reused", "Recorded response reused without re-execution")
	SignalInputSuspend       = capitan.NewSignal("enact.input.suspend", "Execution suspended on an input request")
	SignalInputResolve       = capitan.NewSignal("enact.input.resolve", "Input request resolved")
)

// Keys for typed event data.
var (
	KeyDigest     = capitan.NewStringKey("digest")
	KeyTypeName   = capitan.NewStringKey("type_name")
	KeySize       = capitan.NewIntKey("size")
	KeyDuration   = capitan.NewDurationKey("duration")
	KeyError      = capitan.NewErrorKey("error")
	KeyNodePath   = capitan.NewStringKey("node_path")
	KeyChildIndex = capitan.NewIntKey("child_index")
	KeyStrict     = capitan.NewStringKey("strict")
)

func emitCommit(d Digest, size int) {
	capitan.Emit(context.Background(), SignalCommit,
		KeyDigest.Field(d.String()),
		KeySize.Field(size),
	)
}

func emitCheckout(d Digest, typeName string) {
	capitan.Emit(context.Background(), SignalCheckout,
		KeyDigest.Field(d.String()),
		KeyTypeName.Field(typeName),
	)
}

func emitInvocationStart(nodePath string) {
	capitan.Emit(context.Background(), SignalInvocationStart,
		KeyNodePath.Field(nodePath),
	)
}

func emitInvocationComplete(nodePath string, duration time.Duration, err error) {
	ctx := context.Background()
	fields := []capitan.Field{
		KeyNodePath.Field(nodePath),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalInvocationComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalInvocationComplete, fields...)
}

func emitReplayDivergence(nodePath string, childIndex int, strict bool, err error) {
	capitan.Error(context.Background(), SignalReplayDivergence,
		KeyNodePath.Field(nodePath),
		KeyChildIndex.Field(childIndex),
		KeyStrict.Field(strictLabel(strict)),
		KeyError.Field(err),
	)
}

func emitReplayReused(nodePath string, childIndex int) {
	capitan.Emit(context.Background(), SignalReplayReused,
		KeyNodePath.Field(nodePath),
		KeyChildIndex.Field(childIndex),
	)
}

func emitInputSuspend(nodePath string) {
	capitan.Emit(context.Background(), SignalInputSuspend,
		KeyNodePath.Field(nodePath),
	)
}

func emitInputResolve(nodePath string) {
	capitan.Emit(context.Background(), SignalInputResolve,
		KeyNodePath.Field(nodePath),
	)
}

func strictLabel(strict bool) string {
	if strict {
		return "strict"
	}
	return "lenient"
}
