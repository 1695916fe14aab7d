package enact

import (
	"errors"
	"testing"
)

func TestAES_EncryptDecryptRoundTrip(t *testing.T) {
	enc, err := AES(make([]byte, 32))
	if err != nil {
		t.Fatalf("AES() error: %v", err)
	}

	ciphertext, err := enc.Encrypt([]byte("plaintext"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	plaintext, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if string(plaintext) != "plaintext" {
		t.Errorf("Decrypt() = %q, want %q", plaintext, "plaintext")
	}
}

func TestAES_InvalidKeySize(t *testing.T) {
	_, err := AES(make([]byte, 10))
	if !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("AES(bad size) error = %v, want ErrInvalidKeySize", err)
	}
}

func TestAES_DecryptShortCiphertext(t *testing.T) {
	enc, err := AES(make([]byte, 32))
	if err != nil {
		t.Fatalf("AES() error: %v", err)
	}
	if _, err := enc.Decrypt([]byte("short")); !errors.Is(err, ErrCiphertextShort) {
		t.Errorf("Decrypt(short) error = %v, want ErrCiphertextShort", err)
	}
}

func TestAES_DecryptTamperedCiphertext(t *testing.T) {
	enc, err := AES(make([]byte, 32))
	if err != nil {
		t.Fatalf("AES() error: %v", err)
	}
	ciphertext, err := enc.Encrypt([]byte("plaintext"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	ciphertext[len(ciphertext)-1] ^= 0xFF

	if _, err := enc.Decrypt(ciphertext); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt(tampered) error = %v, want ErrDecryptionFailed", err)
	}
}

func TestEncryptedBackend_CommitGet(t *testing.T) {
	enc, err := AES(make([]byte, 32))
	if err != nil {
		t.Fatalf("AES() error: %v", err)
	}
	inner := NewMemoryBackend()
	b := NewEncryptedBackend(inner, enc)

	d := Digest{1, 1, 1}
	if err := b.Commit(d, []byte("secret bytes")); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	got, err := b.Get(d)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(got) != "secret bytes" {
		t.Errorf("Get() = %q, want %q", got, "secret bytes")
	}
}

func TestEncryptedBackend_InnerBytesAreCiphertext(t *testing.T) {
	enc, err := AES(make([]byte, 32))
	if err != nil {
		t.Fatalf("AES() error: %v", err)
	}
	inner := NewMemoryBackend()
	b := NewEncryptedBackend(inner, enc)

	d := Digest{2, 2, 2}
	plaintext := []byte("secret bytes")
	if err := b.Commit(d, plaintext); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	raw, err := inner.Get(d)
	if err != nil {
		t.Fatalf("inner.Get() error: %v", err)
	}
	if string(raw) == string(plaintext) {
		t.Error("the underlying backend should never see plaintext bytes")
	}
}

func TestEncryptedBackend_Has(t *testing.T) {
	enc, err := AES(make([]byte, 32))
	if err != nil {
		t.Fatalf("AES() error: %v", err)
	}
	b := NewEncryptedBackend(NewMemoryBackend(), enc)
	d := Digest{3, 3, 3}

	if ok, _ := b.Has(d); ok {
		t.Error("Has() should be false before Commit")
	}
	if err := b.Commit(d, []byte("x")); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if ok, _ := b.Has(d); !ok {
		t.Error("Has() should be true after Commit")
	}
}
