// Package testing provides shared fixtures for enact's own test suites:
// a couple of small Resource types and store/encryption constructors so
// individual package tests don't each reinvent them.
package testing

import "github.com/zoobzio/enact"

// TestKey returns a valid 32-byte AES-256 key for testing EncryptedBackend.
func TestKey() []byte {
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestEncryptor returns an AES-GCM encryptor built from TestKey.
func TestEncryptor() enact.Encryptor {
	enc, err := enact.AES(TestKey())
	if err != nil {
		panic(err)
	}
	return enc
}

// NewMemoryStore returns a Store backed by a fresh in-memory backend.
func NewMemoryStore() *enact.Store {
	return enact.NewStore(enact.NewMemoryBackend())
}

// NewEncryptedMemoryStore returns a Store backed by an in-memory backend
// wrapped in AES-GCM encryption using TestEncryptor.
func NewEncryptedMemoryStore() *enact.Store {
	return enact.NewStore(enact.NewEncryptedBackend(enact.NewMemoryBackend(), TestEncryptor()))
}

// Note is a minimal hand-written Resource: a single string field. Used
// wherever a test needs the simplest possible committable value.
type Note struct {
	Text string
}

func (n Note) TypeID() enact.TypeID { return enact.NewTypeID("enact.testing.note") }

func (n Note) FieldNames() []string { return []string{"text"} }

func (n Note) FieldValues() []enact.FieldValue { return []enact.FieldValue{enact.Str(n.Text)} }

// Clone implements enact.Cloner[Note].
func (n Note) Clone() Note { return n }

func newNoteFromFields(fields map[string]enact.FieldValue) (enact.Resource, error) {
	return Note{Text: fields["text"].AsString()}, nil
}

// Counter is a Resource with an int field and a Ref to a previous Counter,
// used to exercise linked-list-style chains through the store (Modify,
// acyclicity by construction).
type Counter struct {
	Value    int64
	Previous *enact.Ref[Counter]
}

func (c Counter) TypeID() enact.TypeID { return enact.NewTypeID("enact.testing.counter") }

func (c Counter) FieldNames() []string { return []string{"value", "previous"} }

func (c Counter) FieldValues() []enact.FieldValue {
	prev := enact.Null()
	if c.Previous != nil {
		prev = enact.RefVal(*c.Previous)
	}
	return []enact.FieldValue{enact.Int(c.Value), prev}
}

// Clone implements enact.Cloner[Counter].
func (c Counter) Clone() Counter { return c }

func newCounterFromFields(fields map[string]enact.FieldValue) (enact.Resource, error) {
	c := Counter{Value: fields["value"].AsInt()}
	if prev := fields["previous"]; prev.Kind() == enact.KindRef {
		ref := enact.RefAs[Counter](prev)
		c.Previous = &ref
	}
	return c, nil
}

func init() {
	_ = enact.Register(enact.NewTypeID("enact.testing.note"), newNoteFromFields)
	_ = enact.Register(enact.NewTypeID("enact.testing.counter"), newCounterFromFields)
}
