package crawler

// urlSet is an insertion-ordered set of URLs.
type urlSet struct {
	order []string
	seen  map[string]struct{}
}

func newURLSet() *urlSet {
	return &urlSet{seen: make(map[string]struct{})}
}

// Add inserts u and reports whether it was new.
func (s *urlSet) Add(u string) bool {
	if _, ok := s.seen[u]; ok {
		return false
	}
	s.seen[u] = struct{}{}
	s.order = append(s.order, u)
	return true
}

func (s *urlSet) Len() int { return len(s.order) }

// Items returns at most limit URLs in first-discovered order; limit <= 0 means all.
func (s *urlSet) Items(limit int) []string {
	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]string, n)
	copy(out, s.order[:n])
	return out
}
