// internal/core/domain/subscription/store.go
package subscription

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Store - постоянное хранилище идентификаторов подписчиков
type Store interface {
	Load() ([]int64, error)
	Save(ids []int64) error
}

// FileStore хранит подписчиков JSON-массивом целых чисел в одном файле
type FileStore struct {
	path string
}

// NewFileStore создает файловое хранилище
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path возвращает путь к файлу
func (s *FileStore) Path() string {
	return s.path
}

// Load читает файл. Отсутствующий файл - пустой список без ошибки.
func (s *FileStore) Load() ([]int64, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return ids, nil
}

// Save перезаписывает файл целиком через временный файл и rename,
// поэтому сбой посреди записи не портит предыдущее содержимое
func (s *FileStore) Save(ids []int64) error {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if sorted == nil {
		sorted = []int64{}
	}

	data, err := json.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("marshal subscribers: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
