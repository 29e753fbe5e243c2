package auth

import (
	"path"
	"strings"
)

// MatchPath checks a request path against a route pattern:
//
//   - "/users" matches only "/users"
//   - "/users/*" matches "/users/alice" but not "/users/alice/roles"
//   - "/users/**" matches "/users", "/users/alice", "/users/alice/roles"
//   - "**" matches everything
//
// Both sides are cleaned first so "/users/" and "/users//alice/.." cannot
// slip past a rule. Malformed patterns never match.
func MatchPath(pattern, requestPath string) bool {
	if pattern == "**" {
		return true
	}
	requestPath = cleanPath(requestPath)

	if strings.HasSuffix(pattern, "/**") {
		prefix := cleanPath(strings.TrimSuffix(pattern, "/**"))
		if matchSegments(prefix, requestPath) {
			return true
		}
		prefixDepth := strings.Count(prefix, "/")
		segments := strings.Split(requestPath, "/")
		if len(segments) <= prefixDepth+1 {
			return false
		}
		return matchSegments(prefix, strings.Join(segments[:prefixDepth+1], "/"))
	}

	if strings.Contains(pattern, "**") {
		return false
	}
	return matchSegments(cleanPath(pattern), requestPath)
}

func matchSegments(pattern, candidate string) bool {
	matched, err := path.Match(pattern, candidate)
	if err != nil {
		return false
	}
	return matched
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
