package enact

// CallableDescriptor identifies a registered invokable by name. Two
// invocations of the same named callable with structurally-equal input
// produce the same Invokable and Input digests, which is what lets the
// replay engine match a live call against a recorded one without ever
// comparing Go function values.
type CallableDescriptor struct {
	Name string
}

func (c CallableDescriptor) TypeID() TypeID { return NewTypeID("enact.callable") }

func (c CallableDescriptor) FieldNames() []string { return []string{"name"} }

func (c CallableDescriptor) FieldValues() []FieldValue { return []FieldValue{Str(c.Name)} }

func (c CallableDescriptor) Clone() CallableDescriptor { return c }

func newCallableDescriptorFromFields(fields map[string]FieldValue) (Resource, error) {
	return CallableDescriptor{Name: fields["name"].AsString()}, nil
}

// ErrorBox commits an arbitrary Go error's text so it can be referenced by
// digest from a Response's Raised field.
type ErrorBox struct {
	Message string
}

func (e ErrorBox) TypeID() TypeID { return NewTypeID("enact.error") }

func (e ErrorBox) FieldNames() []string { return []string{"message"} }

func (e ErrorBox) FieldValues() []FieldValue { return []FieldValue{Str(e.Message)} }

func (e ErrorBox) Clone() ErrorBox { return e }

func newErrorBoxFromFields(fields map[string]FieldValue) (Resource, error) {
	return ErrorBox{Message: fields["message"].AsString()}, nil
}

// Request is the (invokable, input) pair that identifies a single call.
// Invokable and Input are both KindRef FieldValues: Invokable points at a
// committed CallableDescriptor, Input at whatever value the caller passed.
type Request struct {
	Invokable FieldValue
	Input     FieldValue
}

func (r Request) TypeID() TypeID { return NewTypeID("enact.request") }

func (r Request) FieldNames() []string { return []string{"invokable", "input"} }

func (r Request) FieldValues() []FieldValue { return []FieldValue{r.Invokable, r.Input} }

func (r Request) Clone() Request { return r }

func newRequestFromFields(fields map[string]FieldValue) (Resource, error) {
	return Request{Invokable: fields["invokable"], Input: fields["input"]}, nil
}

// Response is the outcome of executing a Request: either an Output or a
// Raised condition (never both), plus the ordered list of child
// invocations spawned while executing it. Complete is false on a Response
// that Invoke committed when the call suspended on an InputRequest, and on
// one produced by Rewind; either way it marks the call (and its ancestors)
// as needing re-execution on the next replay pass.
type Response struct {
	Output     FieldValue // KindRef, or KindNull if none
	Raised     FieldValue // KindRef, or KindNull if nothing was raised
	RaisedHere bool       // true whenever Raised is set; Invoke does not tell a condition raised by this call apart from one propagated from a child
	Children   []FieldValue
	Complete   bool
}

func (r Response) TypeID() TypeID { return NewTypeID("enact.response") }

func (r Response) FieldNames() []string {
	return []string{"output", "raised", "raised_here", "children", "complete"}
}

func (r Response) FieldValues() []FieldValue {
	return []FieldValue{r.Output, r.Raised, Bool(r.RaisedHere), Seq(r.Children...), Bool(r.Complete)}
}

func (r Response) Clone() Response {
	children := make([]FieldValue, len(r.Children))
	copy(children, r.Children)
	return Response{Output: r.Output, Raised: r.Raised, RaisedHere: r.RaisedHere, Children: children, Complete: r.Complete}
}

func newResponseFromFields(fields map[string]FieldValue) (Resource, error) {
	return Response{
		Output:     fields["output"],
		Raised:     fields["raised"],
		RaisedHere: fields["raised_here"].AsBool(),
		Children:   fields["children"].AsSeq(),
		Complete:   fields["complete"].AsBool(),
	}, nil
}

// Invocation is a single node in the journaled execution tree: the request
// that identified the call, and the response it produced.
type Invocation struct {
	Request  Request
	Response Response
}

func (i Invocation) TypeID() TypeID { return NewTypeID("enact.invocation") }

func (i Invocation) FieldNames() []string { return []string{"request", "response"} }

func (i Invocation) FieldValues() []FieldValue {
	return []FieldValue{ResourceVal(i.Request), ResourceVal(i.Response)}
}

func (i Invocation) Clone() Invocation {
	return Invocation{Request: i.Request.Clone(), Response: i.Response.Clone()}
}

func newInvocationFromFields(fields map[string]FieldValue) (Resource, error) {
	req, ok := fields["request"].AsResource().(Request)
	if !ok {
		if raw, ok2 := fields["request"].AsResource().(rawResource); ok2 {
			m := fieldMapOf(raw)
			r, err := newRequestFromFields(m)
			if err != nil {
				return nil, err
			}
			req = r.(Request)
		}
	}
	resp, ok := fields["response"].AsResource().(Response)
	if !ok {
		if raw, ok2 := fields["response"].AsResource().(rawResource); ok2 {
			m := fieldMapOf(raw)
			r, err := newResponseFromFields(m)
			if err != nil {
				return nil, err
			}
			resp = r.(Response)
		}
	}
	return Invocation{Request: req, Response: resp}, nil
}

func init() {
	_ = Register(NewTypeID("enact.callable"), newCallableDescriptorFromFields)
	_ = Register(NewTypeID("enact.error"), newErrorBoxFromFields)
	_ = Register(NewTypeID("enact.request"), newRequestFromFields)
	_ = Register(NewTypeID("enact.response"), newResponseFromFields)
	_ = Register(NewTypeID("enact.invocation"), newInvocationFromFields)
}
