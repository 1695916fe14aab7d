package enact

import "testing"

func commitLeaf(t *testing.T, store *Store, value int64) Ref[Invocation] {
	t.Helper()
	inputRef, err := Commit(store, testCounter{Value: value})
	if err != nil {
		t.Fatalf("Commit(input) error: %v", err)
	}
	callableRef, err := Commit(store, CallableDescriptor{Name: "leaf"})
	if err != nil {
		t.Fatalf("Commit(callable) error: %v", err)
	}
	outRef, err := Commit(store, testCounter{Value: value})
	if err != nil {
		t.Fatalf("Commit(output) error: %v", err)
	}
	inv := Invocation{
		Request:  Request{Invokable: RefVal(callableRef), Input: RefVal(inputRef)},
		Response: Response{Output: RefVal(outRef), Raised: Null(), Complete: true},
	}
	ref, err := Commit(store, inv)
	if err != nil {
		t.Fatalf("Commit(invocation) error: %v", err)
	}
	return ref
}

func commitParent(t *testing.T, store *Store, children ...Ref[Invocation]) Ref[Invocation] {
	t.Helper()
	childVals := make([]FieldValue, len(children))
	for i, c := range children {
		childVals[i] = RefVal(c)
	}
	inputRef, err := Commit(store, testCounter{Value: 0})
	if err != nil {
		t.Fatalf("Commit(input) error: %v", err)
	}
	callableRef, err := Commit(store, CallableDescriptor{Name: "parent"})
	if err != nil {
		t.Fatalf("Commit(callable) error: %v", err)
	}
	outRef, err := Commit(store, testCounter{Value: 0})
	if err != nil {
		t.Fatalf("Commit(output) error: %v", err)
	}
	inv := Invocation{
		Request:  Request{Invokable: RefVal(callableRef), Input: RefVal(inputRef)},
		Response: Response{Output: RefVal(outRef), Raised: Null(), Children: childVals, Complete: true},
	}
	ref, err := Commit(store, inv)
	if err != nil {
		t.Fatalf("Commit(invocation) error: %v", err)
	}
	return ref
}

func TestRewind_ZeroIsNoOp(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	leaf := commitLeaf(t, store, 1)

	got, err := Rewind(store, leaf, 0)
	if err != nil {
		t.Fatalf("Rewind() error: %v", err)
	}
	if got != leaf {
		t.Error("Rewind(n=0) should return the same ref unchanged")
	}
}

func TestRewind_LeafOnlyMarksRootIncomplete(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	leaf := commitLeaf(t, store, 1)

	newRef, err := Rewind(store, leaf, 1)
	if err != nil {
		t.Fatalf("Rewind() error: %v", err)
	}
	if newRef == leaf {
		t.Error("Rewind should commit a new, distinct ref")
	}

	updated, err := Checkout(store, newRef)
	if err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}
	if updated.Response.Complete {
		t.Error("rewound leaf's Response.Complete should be false")
	}

	original, err := Checkout(store, leaf)
	if err != nil {
		t.Fatalf("Checkout(original) error: %v", err)
	}
	if !original.Response.Complete {
		t.Error("the original ref should remain untouched (store is append-only)")
	}
}

func TestRewind_RemovesRightmostLeafFirst(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	left := commitLeaf(t, store, 1)
	right := commitLeaf(t, store, 2)
	root := commitParent(t, store, left, right)

	newRef, err := Rewind(store, root, 1)
	if err != nil {
		t.Fatalf("Rewind() error: %v", err)
	}

	updated, err := Checkout(store, newRef)
	if err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}
	if updated.Response.Complete {
		t.Error("root should be marked incomplete after removing a leaf")
	}
	if len(updated.Response.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1 (rightmost leaf removed)", len(updated.Response.Children))
	}

	remaining, err := Checkout(store, RefAs[Invocation](updated.Response.Children[0]))
	if err != nil {
		t.Fatalf("Checkout(remaining child) error: %v", err)
	}
	remainingInput, err := Checkout(store, RefAs[testCounter](remaining.Request.Input))
	if err != nil {
		t.Fatalf("Checkout(remaining.Request.Input) error: %v", err)
	}
	if remainingInput.Value != 1 {
		t.Errorf("surviving leaf input Value = %d, want 1 (the left leaf)", remainingInput.Value)
	}
}

func TestRewind_NExceedsLeafCountMarksWholeTreeIncomplete(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	left := commitLeaf(t, store, 1)
	right := commitLeaf(t, store, 2)
	root := commitParent(t, store, left, right)

	newRef, err := Rewind(store, root, 10)
	if err != nil {
		t.Fatalf("Rewind() error: %v", err)
	}

	updated, err := Checkout(store, newRef)
	if err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}
	if updated.Response.Complete {
		t.Error("Response.Complete should be false when n exceeds total leaf count")
	}
	if len(updated.Response.Children) != 0 {
		t.Errorf("len(Children) = %d, want 0 (all leaves removed)", len(updated.Response.Children))
	}
}
