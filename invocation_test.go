package enact

import "testing"

func TestCallableDescriptor_FieldRoundTrip(t *testing.T) {
	c := CallableDescriptor{Name: "greet"}
	rebuilt, err := newCallableDescriptorFromFields(fieldMapOf(c))
	if err != nil {
		t.Fatalf("newCallableDescriptorFromFields() error: %v", err)
	}
	got, ok := rebuilt.(CallableDescriptor)
	if !ok || got.Name != "greet" {
		t.Errorf("rebuilt = %+v, want Name=greet", rebuilt)
	}
}

func TestErrorBox_FieldRoundTrip(t *testing.T) {
	e := ErrorBox{Message: "boom"}
	rebuilt, err := newErrorBoxFromFields(fieldMapOf(e))
	if err != nil {
		t.Fatalf("newErrorBoxFromFields() error: %v", err)
	}
	got, ok := rebuilt.(ErrorBox)
	if !ok || got.Message != "boom" {
		t.Errorf("rebuilt = %+v, want Message=boom", rebuilt)
	}
}

func TestRequest_Clone(t *testing.T) {
	r := Request{Invokable: Str("a"), Input: Int(1)}
	c := r.Clone()
	if !c.Invokable.Equal(r.Invokable) || !c.Input.Equal(r.Input) {
		t.Errorf("Clone() = %+v, want equal to %+v", c, r)
	}
}

func TestResponse_Clone_IndependentChildren(t *testing.T) {
	r := Response{
		Output:   Null(),
		Raised:   Null(),
		Children: []FieldValue{Str("a"), Str("b")},
		Complete: true,
	}
	c := r.Clone()
	c.Children[0] = Str("mutated")
	if r.Children[0].AsString() != "a" {
		t.Error("Clone() should deep-copy Children so mutating the clone leaves the original untouched")
	}
}

func TestResponse_FieldRoundTrip(t *testing.T) {
	r := Response{
		Output:     Null(),
		Raised:     Null(),
		RaisedHere: true,
		Children:   []FieldValue{Str("child")},
		Complete:   false,
	}
	rebuilt, err := newResponseFromFields(fieldMapOf(r))
	if err != nil {
		t.Fatalf("newResponseFromFields() error: %v", err)
	}
	got, ok := rebuilt.(Response)
	if !ok {
		t.Fatalf("rebuilt is not a Response: %T", rebuilt)
	}
	if !got.RaisedHere || got.Complete {
		t.Errorf("rebuilt = %+v, want RaisedHere=true Complete=false", got)
	}
	if len(got.Children) != 1 || got.Children[0].AsString() != "child" {
		t.Errorf("rebuilt.Children = %+v", got.Children)
	}
}

func TestInvocation_FieldRoundTrip(t *testing.T) {
	inv := Invocation{
		Request:  Request{Invokable: Str("fn"), Input: Int(5)},
		Response: Response{Output: Null(), Raised: Null(), Complete: true},
	}
	rebuilt, err := newInvocationFromFields(fieldMapOf(inv))
	if err != nil {
		t.Fatalf("newInvocationFromFields() error: %v", err)
	}
	got, ok := rebuilt.(Invocation)
	if !ok {
		t.Fatalf("rebuilt is not an Invocation: %T", rebuilt)
	}
	if !got.Request.Invokable.Equal(inv.Request.Invokable) {
		t.Errorf("Request.Invokable = %+v, want %+v", got.Request.Invokable, inv.Request.Invokable)
	}
	if got.Response.Complete != true {
		t.Errorf("Response.Complete = %v, want true", got.Response.Complete)
	}
}

func TestInvocation_CommitCheckoutRoundTrip(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	inv := Invocation{
		Request:  Request{Invokable: Str("fn"), Input: Int(9)},
		Response: Response{Output: Null(), Raised: Null(), Complete: true},
	}

	ref, err := Commit(store, inv)
	if err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	got, err := Checkout(store, ref)
	if err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}
	if !got.Request.Input.Equal(inv.Request.Input) {
		t.Errorf("Request.Input = %+v, want %+v", got.Request.Input, inv.Request.Input)
	}
}

func TestInvocation_Clone(t *testing.T) {
	inv := Invocation{
		Request:  Request{Invokable: Str("fn"), Input: Int(1)},
		Response: Response{Children: []FieldValue{Str("a")}},
	}
	c := inv.Clone()
	c.Response.Children[0] = Str("mutated")
	if inv.Response.Children[0].AsString() != "a" {
		t.Error("Invocation.Clone() should deep-copy through to Response.Children")
	}
}
