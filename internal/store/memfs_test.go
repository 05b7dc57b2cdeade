package store

import (
	"io/fs"
	"sync"
)

// memFS is an in-memory FileSystem that records writes
type memFS struct {
	mu     sync.Mutex
	files  map[string][]byte
	reads  int
	writes int
	err    error
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string][]byte)}
}

func (m *memFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	data, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

func (m *memFS) WriteFileAtomic(name string, data []byte, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.files[name] = append([]byte(nil), data...)
	return nil
}
