package dungeon

// ContentResolver answers whether a content id refers to a known asset.
// Layout mutation, commands and validation never consult it; only outer
// layers such as the CLI do, when a user asks for content checking.
type ContentResolver interface {
	Exists(contentID uint32) bool
}

// ContentSet is a ContentResolver backed by a fixed set of ids.
type ContentSet map[uint32]struct{}

// NewContentSet creates a ContentSet holding ids.
func NewContentSet(ids ...uint32) ContentSet {
	s := make(ContentSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Exists reports whether id is in the set.
func (s ContentSet) Exists(id uint32) bool {
	_, ok := s[id]
	return ok
}
