package enact

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FilesystemBackend is a StorageBackend rooted at a directory on disk.
// Digests are sharded two hex characters deep (ab/cdef...) to keep any one
// directory's entry count small, and writes land via a temp-file-then-
// rename so a reader never observes a partially written object. A per-
// digest flock guards the write path against concurrent committers racing
// on the same object.
type FilesystemBackend struct {
	root string
}

// NewFilesystemBackend constructs a FilesystemBackend rooted at dir,
// creating it if absent.
func NewFilesystemBackend(dir string) (*FilesystemBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FilesystemBackend{root: dir}, nil
}

func (b *FilesystemBackend) pathFor(d Digest) string {
	hex := d.String()
	return filepath.Join(b.root, hex[:2], hex[2:])
}

func (b *FilesystemBackend) lockPathFor(d Digest) string {
	return filepath.Join(b.root, d.String()+".lock")
}

// Commit writes data under d if not already present. The write takes an
// exclusive flock keyed by digest so two goroutines or processes racing to
// commit the same new object don't interleave partial writes; since the
// object is content-addressed, two concurrent committers of the same digest
// are always writing identical bytes, so the lock exists to avoid a torn
// write, not to arbitrate conflicting content.
func (b *FilesystemBackend) Commit(d Digest, data []byte) error {
	lock := flock.New(b.lockPathFor(d))
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	dst := b.pathFor(d)
	if _, err := os.Stat(dst); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, dst)
}

// Has reports whether d has a committed object on disk.
func (b *FilesystemBackend) Has(d Digest) (bool, error) {
	_, err := os.Stat(b.pathFor(d))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Get reads the committed bytes for d.
func (b *FilesystemBackend) Get(d Digest) ([]byte, error) {
	data, err := os.ReadFile(b.pathFor(d))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newNotFoundError(d)
		}
		return nil, err
	}
	return data, nil
}
