package auth

import (
	"net/http"
	"strings"
)

type Requirement int

const (
	RequireDeny Requirement = iota
	RequirePublic
	RequireAuthenticated
	RequireAuthority
)

func (r Requirement) String() string {
	switch r {
	case RequirePublic:
		return "public"
	case RequireAuthenticated:
		return "authenticated"
	case RequireAuthority:
		return "authority"
	default:
		return "deny"
	}
}

// Rule is one row of the route table. An empty Methods list matches every
// method. Authorities are OR'ed.
type Rule struct {
	Methods     []string
	Pattern     string
	Requirement Requirement
	Authorities []Authority
}

func (r Rule) matches(method, requestPath string) bool {
	if len(r.Methods) > 0 {
		found := false
		for _, m := range r.Methods {
			if strings.EqualFold(m, method) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return MatchPath(r.Pattern, requestPath)
}

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

// Policy evaluates rules top to bottom; the first matching rule decides.
// A request that matches nothing is forbidden.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: append([]Rule(nil), rules...)}
}

func (p *Policy) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

func (p *Policy) Decide(method, requestPath string, id Identity) Decision {
	for _, rule := range p.rules {
		if !rule.matches(method, requestPath) {
			continue
		}
		switch rule.Requirement {
		case RequirePublic:
			return Allow
		case RequireAuthenticated:
			if id.Anonymous() {
				return DenyUnauthenticated
			}
			return Allow
		case RequireAuthority:
			if id.Anonymous() {
				return DenyUnauthenticated
			}
			if id.HasAnyAuthority(rule.Authorities...) {
				return Allow
			}
			return DenyForbidden
		default:
			return DenyForbidden
		}
	}
	return DenyForbidden
}

var crudMethods = []string{http.MethodPost, http.MethodGet, http.MethodPut, http.MethodDelete}

// DefaultPolicy is the route table for the API mounted under prefix.
func DefaultPolicy(prefix string) *Policy {
	prefix = strings.TrimSuffix(prefix, "/")
	return NewPolicy(
		Rule{Methods: []string{http.MethodGet}, Pattern: "/health", Requirement: RequirePublic},
		Rule{Methods: []string{http.MethodPost}, Pattern: prefix + "/authenticate", Requirement: RequirePublic},
		Rule{Methods: []string{http.MethodGet}, Pattern: prefix + "/authenticated", Requirement: RequireAuthenticated},
		Rule{
			Methods:     crudMethods,
			Pattern:     prefix + "/users/**",
			Requirement: RequireAuthority,
			Authorities: []Authority{AuthorityAdmin},
		},
		Rule{
			Methods:     crudMethods,
			Pattern:     prefix + "/events/**",
			Requirement: RequireAuthority,
			Authorities: []Authority{AuthorityAdmin, AuthorityOrganizer},
		},
		Rule{Pattern: "**", Requirement: RequireDeny},
	)
}
