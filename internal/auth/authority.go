package auth

type Authority string

const (
	AuthorityAdmin       Authority = "ROLE_ADMIN"
	AuthorityOrganizer   Authority = "ROLE_ORGANIZER"
	AuthorityParticipant Authority = "ROLE_PARTICIPANT"
)

var knownAuthorities = map[Authority]struct{}{
	AuthorityAdmin:       {},
	AuthorityOrganizer:   {},
	AuthorityParticipant: {},
}

// ParseAuthority only recognizes the fixed set above.
func ParseAuthority(s string) (Authority, bool) {
	a := Authority(s)
	_, ok := knownAuthorities[a]
	return a, ok
}

// AuthoritySet is the closed set of authorities held by an identity.
type AuthoritySet map[Authority]struct{}

// NewAuthoritySet keeps known authorities and drops everything else.
func NewAuthoritySet(names ...string) AuthoritySet {
	set := make(AuthoritySet, len(names))
	for _, name := range names {
		if a, ok := ParseAuthority(name); ok {
			set[a] = struct{}{}
		}
	}
	return set
}

func (s AuthoritySet) Has(a Authority) bool {
	_, ok := s[a]
	return ok
}

// Intersects reports whether s holds at least one of required.
func (s AuthoritySet) Intersects(required []Authority) bool {
	for _, a := range required {
		if s.Has(a) {
			return true
		}
	}
	return false
}
