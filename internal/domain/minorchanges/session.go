package minorchanges

// Session remembers the canonical keys produced for the molecule currently
// being processed.  It belongs to one worker and is reset per molecule.
type Session struct {
	seen map[string]struct{}
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{seen: make(map[string]struct{})}
}

// Reset forgets every key.
func (s *Session) Reset() {
	for k := range s.seen {
		delete(s.seen, k)
	}
}

// Offer records key and reports whether it was new.
func (s *Session) Offer(key string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len is the number of keys recorded since the last Reset.
func (s *Session) Len() int { return len(s.seen) }

//Personal.AI order the ending
