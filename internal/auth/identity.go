package auth

import (
	"context"
	"sort"
)

// Identity is the caller resolved by the authentication gate for a single
// request. The zero value is the anonymous caller.
type Identity struct {
	Subject     string
	Authorities AuthoritySet
}

func (i Identity) Anonymous() bool {
	return i.Subject == ""
}

func (i Identity) HasAnyAuthority(required ...Authority) bool {
	return i.Authorities.Intersects(required)
}

// AuthorityNames returns the authorities sorted for stable output.
func (i Identity) AuthorityNames() []string {
	names := make([]string, 0, len(i.Authorities))
	for a := range i.Authorities {
		names = append(names, string(a))
	}
	sort.Strings(names)
	return names
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the anonymous identity when none was attached.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}
