// Package guard decides which screen a path resolves to given the session
// state. It has two states only: logged out users see the login screen,
// logged in users see what they asked for.
package guard

import "strings"

const (
	LoginPath   = "/login"
	LandingPath = "/dashboard"
)

// Decision is the outcome of resolving a path. When Redirect is set the
// browser URL should be replaced with Path.
type Decision struct {
	Path     string
	Redirect bool
}

type Guard struct {
	exact    map[string]bool
	prefixes []string
}

// New registers the known screens. Paths ending in "/" are matched as
// prefixes that require a non-empty remainder, e.g. "/projects/" matches
// "/projects/12".
func New(paths ...string) *Guard {
	g := &Guard{exact: map[string]bool{LandingPath: true}}
	for _, p := range paths {
		if strings.HasSuffix(p, "/") && p != "/" {
			g.prefixes = append(g.prefixes, p)
			continue
		}
		g.exact[p] = true
	}
	return g
}

func (g *Guard) Resolve(path string, authenticated bool) Decision {
	path = clean(path)

	if !authenticated {
		return decide(path, LoginPath)
	}
	if path == LoginPath || !g.known(path) {
		return decide(path, LandingPath)
	}
	return Decision{Path: path}
}

func (g *Guard) known(path string) bool {
	if g.exact[path] {
		return true
	}
	for _, p := range g.prefixes {
		if rest, ok := strings.CutPrefix(path, p); ok && rest != "" && !strings.Contains(rest, "/") {
			return true
		}
	}
	return false
}

func decide(from, to string) Decision {
	return Decision{Path: to, Redirect: from != to}
}

func clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
