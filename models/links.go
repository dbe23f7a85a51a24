package models

// LinkSet is an insertion-ordered set of paper URLs
type LinkSet struct {
	seen  map[PaperURL]struct{}
	order []PaperURL
}

// NewLinkSet creates an empty LinkSet
func NewLinkSet() *LinkSet {
	return &LinkSet{seen: make(map[PaperURL]struct{})}
}

// Add inserts the URL and reports whether it was new
func (s *LinkSet) Add(u PaperURL) bool {
	if _, ok := s.seen[u]; ok {
		return false
	}
	s.seen[u] = struct{}{}
	s.order = append(s.order, u)
	return true
}

// AddAll inserts every URL and returns how many were new
func (s *LinkSet) AddAll(urls []PaperURL) int {
	added := 0
	for _, u := range urls {
		if s.Add(u) {
			added++
		}
	}
	return added
}

// Len returns the number of distinct URLs
func (s *LinkSet) Len() int {
	return len(s.order)
}

// Slice returns the URLs in first-seen order
func (s *LinkSet) Slice() []PaperURL {
	out := make([]PaperURL, len(s.order))
	copy(out, s.order)
	return out
}
