// Package ledger implements the bounded persistent set of delivered
// document keys used for cross-run deduplication.
package ledger

// boundedSet keeps insertion order so capacity eviction drops oldest first.
type boundedSet struct {
	capacity int
	ids      []string
	index    map[string]struct{}
}

func newBoundedSet(capacity int) *boundedSet {
	if capacity <= 0 {
		capacity = 1
	}
	return &boundedSet{
		capacity: capacity,
		index:    map[string]struct{}{},
	}
}

func (s *boundedSet) contains(key string) bool {
	_, ok := s.index[key]
	return ok
}

func (s *boundedSet) add(key string) {
	if key == "" || s.contains(key) {
		return
	}
	s.ids = append(s.ids, key)
	s.index[key] = struct{}{}
	s.evict()
}

func (s *boundedSet) evict() {
	if len(s.ids) <= s.capacity {
		return
	}
	drop := s.ids[:len(s.ids)-s.capacity]
	for _, key := range drop {
		delete(s.index, key)
	}
	s.ids = append([]string(nil), s.ids[len(s.ids)-s.capacity:]...)
}

func (s *boundedSet) replace(ids []string) {
	s.ids = s.ids[:0]
	s.index = make(map[string]struct{}, len(ids))
	for _, key := range ids {
		s.add(key)
	}
}

func (s *boundedSet) len() int {
	return len(s.ids)
}
