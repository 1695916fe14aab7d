package testing

import (
	"testing"

	"github.com/zoobzio/enact"
)

func TestTestKey(t *testing.T) {
	key := TestKey()
	if len(key) != 32 {
		t.Errorf("TestKey() length = %d, want 32", len(key))
	}
}

func TestTestEncryptor(t *testing.T) {
	enc := TestEncryptor()
	if enc == nil {
		t.Fatal("TestEncryptor() should not return nil")
	}

	plaintext := []byte("test")
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	decrypted, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}

	if string(decrypted) != string(plaintext) {
		t.Error("round-trip failed")
	}
}

func TestNote_Clone(t *testing.T) {
	original := Note{Text: "hello"}
	cloned := original.Clone()
	if cloned.Text != original.Text {
		t.Error("Clone() should copy all fields")
	}
}

func TestNote_CommitCheckout(t *testing.T) {
	store := NewMemoryStore()

	ref, err := enact.Commit(store, Note{Text: "hello"})
	if err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	got, err := enact.Checkout(store, ref)
	if err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}
	if got.Text != "hello" {
		t.Errorf("Checkout().Text = %q, want %q", got.Text, "hello")
	}
}

func TestCounter_Chain(t *testing.T) {
	store := NewMemoryStore()

	first, err := enact.Commit(store, Counter{Value: 1})
	if err != nil {
		t.Fatalf("Commit(first) error: %v", err)
	}

	second, err := enact.Commit(store, Counter{Value: 2, Previous: &first})
	if err != nil {
		t.Fatalf("Commit(second) error: %v", err)
	}

	got, err := enact.Checkout(store, second)
	if err != nil {
		t.Fatalf("Checkout(second) error: %v", err)
	}
	if got.Value != 2 {
		t.Errorf("Value = %d, want 2", got.Value)
	}
	if got.Previous == nil {
		t.Fatal("Previous should not be nil")
	}

	prev, err := enact.Checkout(store, *got.Previous)
	if err != nil {
		t.Fatalf("Checkout(previous) error: %v", err)
	}
	if prev.Value != 1 {
		t.Errorf("Previous.Value = %d, want 1", prev.Value)
	}
}
