package enact

import (
	"context"
	"errors"
	"fmt"
)

// InputRequest is a raised condition asking the driver for a value the
// running invocation can't produce itself — the input-request pattern.
// Raising one suspends the current Invoke call: nothing past the point of
// the raise has executed, and (per Invoke) everything before it has
// already been committed as an incomplete Response, ready to be replayed
// back to on the next attempt.
type InputRequest struct {
	RequestedType TypeID
	ForValue      *FieldValue // the value this input is needed to produce, if known
	Context       string      // a human-readable hint about why the input is needed
}

func (e *InputRequest) Error() string {
	return fmt.Sprintf("input requested: %s (%s)", e.RequestedType.Name, e.Context)
}

// asInputRequest reports whether err is (or wraps) an *InputRequest.
func asInputRequest(err error) (*InputRequest, bool) {
	var ir *InputRequest
	if errors.As(err, &ir) {
		return ir, true
	}
	return nil, false
}

type inputOverrideCtxKey struct{}

// WithInputOverride attaches a single resolved value to ctx: every call to
// RequestInput made under ctx returns it instead of raising. The requested
// type is not checked against the value, and the value is not used up by
// the first call. Generator uses this to resume a suspended invocation with
// the value the caller supplied.
func WithInputOverride(ctx context.Context, value FieldValue) context.Context {
	v := value
	return context.WithValue(ctx, inputOverrideCtxKey{}, &v)
}

// RequestInput asks for a value of requestedType. If the ambient context
// carries an override (set via WithInputOverride on this attempt),
// RequestInput returns it directly, whatever requestedType is. Otherwise it
// raises an *InputRequest, suspending the current Invoke call.
func RequestInput(ctx context.Context, requestedType TypeID, forValue *FieldValue, label string) (FieldValue, error) {
	if v, ok := ctx.Value(inputOverrideCtxKey{}).(*FieldValue); ok && v != nil {
		path := ""
		if n, ok := nodeFromContext(ctx); ok {
			path = n.path
		}
		emitInputResolve(path)
		return *v, nil
	}
	return FieldValue{}, &InputRequest{RequestedType: requestedType, ForValue: forValue, Context: label}
}
