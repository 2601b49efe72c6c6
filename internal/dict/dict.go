package dict

import (
	"fmt"
	"strings"
)

// Entry names one extended-metadata tag id. Entries loaded from a
// dictionary name tags the parser's built-in table does not cover;
// built-in names always win, and payload decoding is unaffected.
type Entry struct {
	Tag  uint32
	Name string
}

// Store is a tag-id to display-name registry.
type Store struct {
	names map[uint32]string
}

type JSONFile struct {
	Tags []JSONEntry `json:"tags"`
}

type JSONEntry struct {
	Tag  int    `json:"tag"`
	Name string `json:"name"`
}

func FromJSON(file JSONFile) (*Store, error) {
	store := &Store{names: make(map[uint32]string)}
	for i, entry := range file.Tags {
		if entry.Tag < 0 || entry.Tag > 0xFFFFFF {
			return nil, fmt.Errorf("tags[%d]: tag id out of range", i)
		}
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("tags[%d]: empty name", i)
		}
		tag := uint32(entry.Tag)
		if _, exists := store.names[tag]; exists {
			return nil, fmt.Errorf("tags[%d]: duplicate tag id %d", i, entry.Tag)
		}
		store.names[tag] = name
	}
	return store, nil
}

// Name resolves a tag id to its display name.
func (s *Store) Name(tag uint32) (string, bool) {
	if s == nil {
		return "", false
	}
	name, ok := s.names[tag]
	return name, ok
}

// Len reports the number of registered tags.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}
