package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"focusguard/internal/core/model"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// MappingFileName is the default document name inside the app config directory.
const MappingFileName = "apps.yaml"

// ErrInvalidDocument indicates the mapping file is not a string-to-string object.
var ErrInvalidDocument = errors.New("app mapping document must be a mapping of strings")

// AppMapStore reads and rewrites the app mapping document.
// JSON process maps are accepted on read since JSON is valid YAML.
type AppMapStore struct {
	path string
}

// NewAppMapStore creates a store for the document at path.
func NewAppMapStore(path string) *AppMapStore {
	return &AppMapStore{path: path}
}

// Path returns the document location.
func (store *AppMapStore) Path() string {
	return store.path
}

// Load reads the whole mapping. A missing file yields an empty mapping.
func (store *AppMapStore) Load() (*model.AppMapping, error) {
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewAppMapping(), nil
		}
		return nil, fmt.Errorf("read app mapping: %w", err)
	}
	return decodeMapping(rawData)
}

// Save rewrites the whole document under an exclusive file lock.
func (store *AppMapStore) Save(mapping *model.AppMapping) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create mapping directory: %w", err)
	}

	lock := flock.New(store.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock app mapping: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	serialized, err := encodeMapping(mapping)
	if err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(filepath.Dir(store.path), ".apps-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp mapping file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, err := tempFile.Write(serialized); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write app mapping: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close app mapping: %w", err)
	}
	if err := os.Rename(tempPath, store.path); err != nil {
		return fmt.Errorf("replace app mapping: %w", err)
	}
	return nil
}

func decodeMapping(rawData []byte) (*model.AppMapping, error) {
	mapping := model.NewAppMapping()
	if len(bytes.TrimSpace(rawData)) == 0 {
		return mapping, nil
	}

	var document yaml.Node
	if err := yaml.Unmarshal(rawData, &document); err != nil {
		return nil, fmt.Errorf("parse app mapping: %w", err)
	}
	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 {
		return mapping, nil
	}

	root := document.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrInvalidDocument
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: entry at line %d", ErrInvalidDocument, key.Line)
		}
		mapping.Set(key.Value, value.Value)
	}
	return mapping, nil
}

func encodeMapping(mapping *model.AppMapping) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	mapping.Each(func(displayName, processName string) {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: displayName},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: processName},
		)
	})

	serialized, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("marshal app mapping: %w", err)
	}
	return serialized, nil
}
