package arbor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ConfigStore is flat sectioned key-value storage for settings.
type ConfigStore interface {
	ReadInt(section, key string) (int, bool)
	WriteInt(section, key string, value int)
	Save() error
}

// Graphics section keys.
const (
	SectionGraphics = "Graphics"
	KeyWidth        = "Width"
	KeyHeight       = "Height"
	KeyWindowed     = "Windowed"
	KeyVSynced      = "V-Synced"
)

// FileStore is a ConfigStore persisted as TOML, or YAML when the path ends
// in .yaml or .yml. Each section is a table of scalar values.
type FileStore struct {
	path string
	data map[string]map[string]any
}

// NewMemoryStore returns a store that is never written to disk.
func NewMemoryStore() *FileStore {
	return &FileStore{data: make(map[string]map[string]any)}
}

// LoadFileStore reads path. A missing file yields an empty store that will be
// created on Save.
func LoadFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: make(map[string]map[string]any)}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if s.isYAML() {
		err = yaml.Unmarshal(raw, &s.data)
	} else {
		_, err = toml.Decode(string(raw), &s.data)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if s.data == nil {
		s.data = make(map[string]map[string]any)
	}
	return s, nil
}

// Path returns the backing file path, empty for memory stores.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

// ReadInt returns the integer under section/key. Booleans read as 0 or 1.
func (s *FileStore) ReadInt(section, key string) (int, bool) {
	v, ok := s.data[section][key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// ReadString returns the string under section/key.
func (s *FileStore) ReadString(section, key string) (string, bool) {
	v, ok := s.data[section][key].(string)
	return v, ok
}

// WriteInt sets section/key in memory. Call Save to persist.
func (s *FileStore) WriteInt(section, key string, value int) {
	sec, ok := s.data[section]
	if !ok {
		sec = make(map[string]any)
		s.data[section] = sec
	}
	sec[key] = value
}

// Save writes the store to its file. Memory stores do nothing.
func (s *FileStore) Save() error {
	if s.path == "" {
		return nil
	}
	var out []byte
	if s.isYAML() {
		b, err := yaml.Marshal(s.data)
		if err != nil {
			return errors.Wrap(err, "encode config")
		}
		out = b
	} else {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(s.data); err != nil {
			return errors.Wrap(err, "encode config")
		}
		out = buf.Bytes()
	}
	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		return errors.Wrapf(err, "write config %s", s.path)
	}
	return nil
}

// LoadGraphics reads the Graphics section, falling back to DefaultGraphics
// for missing keys.
func LoadGraphics(store ConfigStore) GraphicsSettings {
	gs := DefaultGraphics
	if store == nil {
		return gs
	}
	if v, ok := store.ReadInt(SectionGraphics, KeyWidth); ok && v > 0 {
		gs.Width = v
	}
	if v, ok := store.ReadInt(SectionGraphics, KeyHeight); ok && v > 0 {
		gs.Height = v
	}
	if v, ok := store.ReadInt(SectionGraphics, KeyWindowed); ok {
		gs.Windowed = v != 0
	}
	if v, ok := store.ReadInt(SectionGraphics, KeyVSynced); ok {
		gs.VSynced = v != 0
	}
	return gs
}

// SaveGraphics writes gs to the Graphics section and persists the store.
func SaveGraphics(store ConfigStore, gs GraphicsSettings) error {
	store.WriteInt(SectionGraphics, KeyWidth, gs.Width)
	store.WriteInt(SectionGraphics, KeyHeight, gs.Height)
	store.WriteInt(SectionGraphics, KeyWindowed, boolInt(gs.Windowed))
	store.WriteInt(SectionGraphics, KeyVSynced, boolInt(gs.VSynced))
	return store.Save()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
