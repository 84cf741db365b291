package index

import (
	"fmt"
	"strings"
)

// Backend selects the store used by terminal nodes.
type Backend int

const (
	// LinkedBackend stores tuples in a linked list: fastest sequential
	// iteration, no positional Get.
	LinkedBackend Backend = iota
	// IndexedBackend stores tuples in an indexed set and supports Get, which
	// random selection needs.
	IndexedBackend
)

func (b Backend) String() string {
	switch b {
	case LinkedBackend:
		return "linked"
	case IndexedBackend:
		return "indexed"
	default:
		return fmt.Sprintf("index.Backend(%d)", int(b))
	}
}

// ParseBackend parses "linked" or "indexed".
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linked", "linked_list":
		return LinkedBackend, nil
	case "indexed", "indexed_set":
		return IndexedBackend, nil
	}
	return 0, fmt.Errorf("unknown index backend %q", s)
}
