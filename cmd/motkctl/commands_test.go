package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kidandcat/motk/internal/api"
	"github.com/kidandcat/motk/internal/auth"
	"github.com/kidandcat/motk/internal/db"
	"github.com/kidandcat/motk/internal/models"
)

type testServer struct {
	url       string
	tokenFile string
	store     *db.Store
	project   models.Project
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(api.New(store, auth.New("test-secret", time.Hour, store)).Routes())
	t.Cleanup(srv.Close)

	ctx := context.Background()
	org, err := store.CreateOrganization(ctx, models.OrganizationCreate{Name: "Studio", Status: "active"})
	if err != nil {
		t.Fatalf("seed org: %v", err)
	}
	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := store.CreateAccount(ctx, models.AccountCreate{
		AccountName: "root", DisplayName: "Root", AccountType: "admin", OrganizationID: org.ID,
	}, hash); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	project, err := store.CreateProject(ctx, models.ProjectCreate{Name: "Feature", OrganizationID: org.ID, Status: "active"})
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}

	return &testServer{
		url:       srv.URL,
		tokenFile: filepath.Join(t.TempDir(), "accessToken"),
		store:     store,
		project:   project,
	}
}

func (s *testServer) run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api", s.url, "--token-file", s.tokenFile}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	s := newTestServer(t)

	out, err := s.run("login", "root", "--password", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Logged in as Root (admin)") {
		t.Fatalf("unexpected login output %q", out)
	}
	if b, err := os.ReadFile(s.tokenFile); err != nil || len(b) == 0 {
		t.Fatalf("expected token file to be written (%v)", err)
	}

	out, err = s.run("whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.HasPrefix(out, "root\tRoot\tadmin") {
		t.Fatalf("unexpected whoami output %q", out)
	}

	if _, err := s.run("logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := os.Stat(s.tokenFile); !os.IsNotExist(err) {
		t.Fatalf("expected token file removed, stat err %v", err)
	}
	if _, err := s.run("whoami"); !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("expected errNotLoggedIn, got %v", err)
	}
}

func TestLoginRejected(t *testing.T) {
	s := newTestServer(t)

	_, err := s.run("login", "root", "--password", "wrong")
	if err == nil || err.Error() != "Incorrect username or password" {
		t.Fatalf("expected server detail, got %v", err)
	}
	if _, err := os.Stat(s.tokenFile); !os.IsNotExist(err) {
		t.Fatalf("expected no token file, stat err %v", err)
	}
}

func TestStaleTokenIsPurged(t *testing.T) {
	s := newTestServer(t)
	if err := os.WriteFile(s.tokenFile, []byte("not-a-jwt"), 0600); err != nil {
		t.Fatalf("write token: %v", err)
	}

	if _, err := s.run("list", "projects"); !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("expected errNotLoggedIn, got %v", err)
	}
	if _, err := os.Stat(s.tokenFile); !os.IsNotExist(err) {
		t.Fatalf("expected stale token removed, stat err %v", err)
	}
}

func TestListAndShotCommands(t *testing.T) {
	s := newTestServer(t)
	shot, err := s.store.CreateShot(context.Background(), models.ShotCreate{Name: "sh010", Status: "pending", ProjectID: s.project.ID})
	if err != nil {
		t.Fatalf("seed shot: %v", err)
	}
	if _, err := s.run("login", "root", "-p", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	id := fmt.Sprint(shot.ID)

	out, err := s.run("list", "projects")
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if !strings.Contains(out, "Feature") || !strings.Contains(out, "STATUS") {
		t.Fatalf("unexpected projects table %q", out)
	}

	if _, err := s.run("list", "sequences"); err == nil {
		t.Fatalf("expected unknown resource to be rejected")
	}

	_, err = s.run("shot", "update", id, "--status", "bogus")
	if err == nil || !strings.Contains(err.Error(), "Invalid shot status") {
		t.Fatalf("expected status rejection, got %v", err)
	}

	out, err = s.run("shot", "update", id, "--name", "sh020")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !strings.Contains(out, "sh020 (pending)") {
		t.Fatalf("unexpected update output %q", out)
	}

	if _, err := s.run("shot", "update", id); err == nil {
		t.Fatalf("expected empty update to be rejected")
	}

	if _, err := s.run("shot", "delete", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, err = s.run("list", "shots")
	if err != nil {
		t.Fatalf("list shots: %v", err)
	}
	if strings.Contains(out, "sh020") {
		t.Fatalf("expected deleted shot to be gone, got %q", out)
	}
}

func TestCreateAndProjectCommands(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.run("login", "root", "-p", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	pid := fmt.Sprint(s.project.ID)

	out, err := s.run("project", pid)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if !strings.Contains(out, "Feature (active)") || !strings.Contains(out, "No shots found.") {
		t.Fatalf("unexpected empty project output %q", out)
	}

	if _, err := s.run("create", "shot", "--name", "sh010"); err == nil || err.Error() != "Please select a project." {
		t.Fatalf("expected local validation message, got %v", err)
	}
	out, err = s.run("create", "shot", "--name", "sh010", "--project", pid)
	if err != nil {
		t.Fatalf("create shot: %v", err)
	}
	if !strings.Contains(out, "Created shot") {
		t.Fatalf("unexpected create output %q", out)
	}
	if _, err := s.run("create", "asset", "--name", "hero", "--type", "character", "--project", pid); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	_, err = s.run("create", "organization", "--name", "Studio")
	if err == nil || err.Error() != "Failed to create organization: Organization already exists" {
		t.Fatalf("expected conflict detail, got %v", err)
	}

	out, err = s.run("project", pid)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	for _, want := range []string{"sh010", "hero", "character", "No members found.", "No tasks found."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}

	if _, err := s.run("project", "9999"); err == nil || !strings.Contains(err.Error(), "Project not found") {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	s := newTestServer(t)
	for _, args := range [][]string{
		{"list", "shots"},
		{"project", "1"},
		{"create", "organization", "--name", "Acme"},
		{"shot", "delete", "1"},
	} {
		if _, err := s.run(args...); !errors.Is(err, errNotLoggedIn) {
			t.Fatalf("%v: expected errNotLoggedIn, got %v", args, err)
		}
	}
}
