package store

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the storage the gateway reads and writes through
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	// WriteFileAtomic replaces name so that readers see either the old or the new content
	WriteFileAtomic(name string, data []byte, perm fs.FileMode) error
}

// OSFileSystem implements FileSystem on the local disk
type OSFileSystem struct{}

// ReadFile reads the named file
func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// WriteFileAtomic writes to a temp file in the same directory, syncs it and renames it over name
func (OSFileSystem) WriteFileAtomic(name string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, name)
}
