package guard

import "testing"

func TestResolve(t *testing.T) {
	g := New("/", "/organizations", "/projects", "/projects/", "/shots", "/assets", "/tasks", "/users")

	cases := []struct {
		path string
		auth bool
		want Decision
	}{
		{"/projects", false, Decision{Path: LoginPath, Redirect: true}},
		{"/login", false, Decision{Path: LoginPath}},
		{"/nowhere", false, Decision{Path: LoginPath, Redirect: true}},
		{"/login", true, Decision{Path: LandingPath, Redirect: true}},
		{"/dashboard", true, Decision{Path: LandingPath}},
		{"/shots", true, Decision{Path: "/shots"}},
		{"/shots/", true, Decision{Path: "/shots"}},
		{"/tasks?x=1", true, Decision{Path: "/tasks"}},
		{"/projects/12", true, Decision{Path: "/projects/12"}},
		{"/projects/12/extra", true, Decision{Path: LandingPath, Redirect: true}},
		{"/nowhere", true, Decision{Path: LandingPath, Redirect: true}},
		{"", true, Decision{Path: "/"}},
	}
	for _, tc := range cases {
		if got := g.Resolve(tc.path, tc.auth); got != tc.want {
			t.Fatalf("Resolve(%q, %v): expected %+v, got %+v", tc.path, tc.auth, tc.want, got)
		}
	}
}
