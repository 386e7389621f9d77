package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kidandcat/motk/internal/models"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestBearerTokenAttached(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("abc"))
	if _, err := c.Organizations(context.Background()); err != nil {
		t.Fatalf("organizations: %v", err)
	}
	if got != "Bearer abc" {
		t.Fatalf("expected bearer header, got %q", got)
	}
}

func TestNoTokenNoHeader(t *testing.T) {
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	if _, err := c.Shots(context.Background()); err != nil {
		t.Fatalf("shots: %v", err)
	}
	if present {
		t.Fatal("expected no Authorization header without a token")
	}
}

func TestLoginSendsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", ct)
		}
		if r.FormValue("username") != "alice" || r.FormValue("password") != "pw" {
			t.Errorf("unexpected form %v", r.Form)
		}
		json.NewEncoder(w).Encode(models.Token{AccessToken: "tok", TokenType: "bearer"})
	}))
	defer srv.Close()

	tok, err := New(srv.URL, nil).Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok.AccessToken != "tok" {
		t.Fatalf("unexpected token %q", tok.AccessToken)
	}
}

func TestErrorDetailAndClass(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
		detail string
	}{
		{http.StatusUnauthorized, `{"detail":"Incorrect username or password"}`, ErrUnauthorized, "Incorrect username or password"},
		{http.StatusNotFound, `{"detail":"Organization not found"}`, ErrNotFound, "Organization not found"},
		{http.StatusBadRequest, `{"detail":"name is required"}`, ErrValidation, "name is required"},
		{http.StatusForbidden, `{"detail":"Admin access required"}`, ErrValidation, "Admin access required"},
		{http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","name"]}]}`, ErrValidation, `[{"loc":["body","name"]}]`},
		{http.StatusBadGateway, `oops`, ErrTransport, ""},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			io.WriteString(w, tc.body)
		}))
		_, err := New(srv.URL, nil).CreateOrganization(context.Background(), models.OrganizationCreate{Name: "x"})
		srv.Close()

		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		if tc.want != ErrUnauthorized && errors.Is(err, ErrUnauthorized) {
			t.Fatalf("status %d: must not end the session", tc.status)
		}
		if got := Detail(err); got != tc.detail {
			t.Fatalf("status %d: expected detail %q, got %q", tc.status, tc.detail, got)
		}
	}
}

func TestMessageFallback(t *testing.T) {
	if got := Message(errors.New("boom"), "generic"); got != "generic" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := Message(&APIError{Status: 400, Detail: "bad"}, "generic"); got != "bad" {
		t.Fatalf("expected detail, got %q", got)
	}
}

func TestUnauthorizedHookOnlyWithToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"Could not validate credentials"}`)
	}))
	defer srv.Close()

	var calls int32
	withToken := New(srv.URL, staticToken("expired"))
	withToken.OnUnauthorized(func() { atomic.AddInt32(&calls, 1) })
	withToken.Projects(context.Background())

	anonymous := New(srv.URL, staticToken(""))
	anonymous.OnUnauthorized(func() { atomic.AddInt32(&calls, 1) })
	anonymous.Login(context.Background(), "a", "b")

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected hook once, got %d", n)
	}
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":`)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, staticToken("t")).Me(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, WithBreaker("test", 2, time.Minute))
	for i := 0; i < 5; i++ {
		c.Assets(context.Background())
	}
	if n := atomic.LoadInt32(&hits); n != 5 {
		t.Fatalf("expected every request to reach the server, got %d", n)
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, WithBreaker("test", 2, time.Minute))
	var err error
	for i := 0; i < 4; i++ {
		_, err = c.Tasks(context.Background())
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("expected breaker to stop after 2 failures, got %d hits", n)
	}
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error while open, got %v", err)
	}
}

func TestCancelledRequestsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tasks/" {
			<-r.Context().Done()
			return
		}
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	c := New(srv.URL, nil, WithBreaker("test", 2, time.Minute))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		_, err := c.Shots(cancelled)
		if !errors.Is(err, context.Canceled) || errors.Is(err, ErrTransport) {
			t.Fatalf("expected plain cancellation, got %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := c.Tasks(ctx)
		cancel()
		if !errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTransport) {
			t.Fatalf("expected deadline error, got %v", err)
		}
	}

	if _, err := c.Shots(context.Background()); err != nil {
		t.Fatalf("expected breaker to stay closed, got %v", err)
	}
}

func TestDeleteShotNoBody(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := New(srv.URL, staticToken("t")).DeleteShot(context.Background(), 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if method != http.MethodDelete || path != "/shots/7" {
		t.Fatalf("unexpected request %s %s", method, path)
	}
}
