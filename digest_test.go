package enact

import "testing"

func TestHashResource_Deterministic(t *testing.T) {
	a, err := HashResource(CallableDescriptor{Name: "sample"})
	if err != nil {
		t.Fatalf("HashResource() error: %v", err)
	}
	b, err := HashResource(CallableDescriptor{Name: "sample"})
	if err != nil {
		t.Fatalf("HashResource() error: %v", err)
	}
	if a != b {
		t.Error("structurally-equal resources must hash to the same digest")
	}
}

func TestHashResource_DistinguishesContent(t *testing.T) {
	a, err := HashResource(CallableDescriptor{Name: "sample"})
	if err != nil {
		t.Fatalf("HashResource() error: %v", err)
	}
	b, err := HashResource(CallableDescriptor{Name: "different"})
	if err != nil {
		t.Fatalf("HashResource() error: %v", err)
	}
	if a == b {
		t.Error("different field content must not collide")
	}
}

func TestHashResource_DistinguishesType(t *testing.T) {
	a, err := HashResource(CallableDescriptor{Name: "same-text"})
	if err != nil {
		t.Fatalf("HashResource() error: %v", err)
	}
	b, err := HashResource(ErrorBox{Message: "same-text"})
	if err != nil {
		t.Fatalf("HashResource() error: %v", err)
	}
	if a == b {
		t.Error("identical field content under different type-ids must not collide")
	}
}

func TestDigest_StringParseRoundTrip(t *testing.T) {
	d, err := HashResource(CallableDescriptor{Name: "round-trip"})
	if err != nil {
		t.Fatalf("HashResource() error: %v", err)
	}

	s := d.String()
	if len(s) != 64 {
		t.Fatalf("String() length = %d, want 64", len(s))
	}

	parsed, err := ParseDigest(s)
	if err != nil {
		t.Fatalf("ParseDigest() error: %v", err)
	}
	if parsed != d {
		t.Error("ParseDigest(d.String()) should recover d")
	}
}

func TestDigest_IsZero(t *testing.T) {
	var d Digest
	if !d.IsZero() {
		t.Error("zero-value Digest should report IsZero")
	}

	nonZero, err := HashResource(CallableDescriptor{Name: "nonzero"})
	if err != nil {
		t.Fatalf("HashResource() error: %v", err)
	}
	if nonZero.IsZero() {
		t.Error("a real digest should not report IsZero")
	}
}

func TestParseDigest_InvalidLength(t *testing.T) {
	if _, err := ParseDigest("deadbeef"); err == nil {
		t.Error("expected error for short hex string")
	}
}

func TestParseDigest_InvalidHex(t *testing.T) {
	bad := make([]byte, 64)
	for i := range bad {
		bad[i] = 'z'
	}
	if _, err := ParseDigest(string(bad)); err == nil {
		t.Error("expected error for non-hex string")
	}
}

func TestHash_StoreRoundTrip(t *testing.T) {
	store := NewStore(NewMemoryBackend())

	ref, err := Commit(store, CallableDescriptor{Name: "committed"})
	if err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	want, err := HashResource(CallableDescriptor{Name: "committed"})
	if err != nil {
		t.Fatalf("HashResource() error: %v", err)
	}
	if ref.Digest() != want {
		t.Error("Commit's ref digest should match HashResource of the same value")
	}
}
