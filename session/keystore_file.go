package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileKeystore persists key/value pairs as a single JSON file with 0600
// permissions. Writes go through a temp file and rename so a crash cannot
// leave a half-written credential file.
type FileKeystore struct {
	mu   sync.Mutex
	path string
}

// NewFileKeystore creates a file-backed keystore at path, creating the
// parent directory when missing.
func NewFileKeystore(path string) (*FileKeystore, error) {
	if path == "" {
		return nil, errors.New("[NewFileKeystore] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileKeystore] MkdirAll")
	}
	return &FileKeystore{path: path}, nil
}

func (k *FileKeystore) Get(key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	values, err := k.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (k *FileKeystore) Set(key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	values, err := k.read()
	if err != nil {
		return err
	}
	values[key] = value
	return k.write(values)
}

func (k *FileKeystore) Delete(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	values, err := k.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return k.write(values)
}

func (k *FileKeystore) read() (map[string]string, error) {
	data, err := os.ReadFile(k.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileKeystore.read] ReadFile")
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "[FileKeystore.read] Unmarshal")
	}
	return values, nil
}

func (k *FileKeystore) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "[FileKeystore.write] Marshal")
	}
	tmp := k.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileKeystore.write] WriteFile")
	}
	if err := os.Rename(tmp, k.path); err != nil {
		return errors.Wrap(err, "[FileKeystore.write] Rename")
	}
	return nil
}
