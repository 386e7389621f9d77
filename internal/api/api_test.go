package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kidandcat/motk/internal/apiclient"
	"github.com/kidandcat/motk/internal/auth"
	"github.com/kidandcat/motk/internal/db"
	"github.com/kidandcat/motk/internal/models"
)

type tokenHolder struct{ token string }

func (t *tokenHolder) Token() string { return t.token }

type testEnv struct {
	srv   *httptest.Server
	store *db.Store
	org   models.Organization
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := New(store, auth.New("test-secret", time.Hour, store))
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	org, err := store.CreateOrganization(context.Background(), models.OrganizationCreate{Name: "Studio", Status: "active"})
	if err != nil {
		t.Fatalf("seed org: %v", err)
	}
	env := &testEnv{srv: srv, store: store, org: org}
	env.account(t, "admin", "admin")
	return env
}

func (e *testEnv) account(t *testing.T, name, role string) models.Account {
	t.Helper()
	hash, err := auth.HashPassword("pw-" + name)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	acc, err := e.store.CreateAccount(context.Background(), models.AccountCreate{
		AccountName: name, DisplayName: name, AccountType: role, OrganizationID: e.org.ID,
	}, hash)
	if err != nil {
		t.Fatalf("seed account %s: %v", name, err)
	}
	return acc
}

// client logs in as name and returns a client carrying the token.
func (e *testEnv) client(t *testing.T, name string) *apiclient.Client {
	t.Helper()
	holder := &tokenHolder{}
	c := apiclient.New(e.srv.URL, holder)
	tok, err := c.Login(context.Background(), name, "pw-"+name)
	if err != nil {
		t.Fatalf("login %s: %v", name, err)
	}
	holder.token = tok.AccessToken
	return c
}

func status(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, "admin")

	me, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.AccountName != "admin" || me.AccountType != "admin" {
		t.Fatalf("unexpected account %+v", me)
	}

	_, err = apiclient.New(env.srv.URL, &tokenHolder{}).Login(context.Background(), "admin", "wrong")
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.srv.URL + "/projects/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if resp.Header.Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("expected bearer challenge, got %q", resp.Header.Get("WWW-Authenticate"))
	}
}

func TestOrganizationsRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.account(t, "artie", "artist")
	ctx := context.Background()

	_, err := env.client(t, "artie").CreateOrganization(ctx, models.OrganizationCreate{Name: "Other"})
	if status(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}

	admin := env.client(t, "admin")
	org, err := admin.CreateOrganization(ctx, models.OrganizationCreate{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if org.Status != "active" {
		t.Fatalf("expected default status active, got %q", org.Status)
	}
	if _, err := admin.CreateOrganization(ctx, models.OrganizationCreate{Name: "Acme"}); status(err) != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %v", err)
	}
	orgs, err := admin.Organizations(ctx)
	if err != nil || len(orgs) != 2 {
		t.Fatalf("expected 2 organizations, got %d (%v)", len(orgs), err)
	}
}

func TestProjectVisibility(t *testing.T) {
	env := newTestEnv(t)
	env.account(t, "artie", "artist")
	ctx := context.Background()
	admin := env.client(t, "admin")

	p, err := admin.CreateProject(ctx, models.ProjectCreate{Name: "Film", OrganizationID: env.org.ID})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	artist := env.client(t, "artie")
	list, err := artist.Projects(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected no visible projects, got %+v (%v)", list, err)
	}
	if _, err := artist.Project(ctx, p.ID); status(err) != http.StatusForbidden {
		t.Fatalf("expected 403 for non-member, got %v", err)
	}
	_, err = admin.Project(ctx, 999)
	if !errors.Is(err, apiclient.ErrNotFound) || apiclient.Detail(err) != "Project not found" {
		t.Fatalf("expected Project not found, got %v", err)
	}

	me, _ := artist.Me(ctx)
	if _, err := admin.CreateProjectMember(ctx, p.ID, models.ProjectMemberCreate{DisplayName: "Artie", AccountID: &me.ID}); err != nil {
		t.Fatalf("add member: %v", err)
	}
	list, err = artist.Projects(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected member project visible, got %+v (%v)", list, err)
	}
	d, err := artist.Project(ctx, p.ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if len(d.Members) != 1 || d.Members[0].Department != "Unassigned" || d.Members[0].Role != "Member" {
		t.Fatalf("unexpected members %+v", d.Members)
	}
}

func TestProjectValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.client(t, "admin")
	ctx := context.Background()

	start, end := "2024-05-01", "2024-04-01"
	_, err := admin.CreateProject(ctx, models.ProjectCreate{Name: "Film", OrganizationID: env.org.ID, StartDate: &start, EndDate: &end})
	if status(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted dates, got %v", err)
	}
	_, err = admin.CreateProject(ctx, models.ProjectCreate{Name: "Film", OrganizationID: 404})
	if apiclient.Detail(err) != "Organization not found" {
		t.Fatalf("expected Organization not found, got %v", err)
	}
}

func TestShotEditAndDelete(t *testing.T) {
	env := newTestEnv(t)
	admin := env.client(t, "admin")
	ctx := context.Background()

	p, err := admin.CreateProject(ctx, models.ProjectCreate{Name: "Film", OrganizationID: env.org.ID})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	sh, err := admin.CreateProjectShot(ctx, p.ID, models.ShotCreate{Name: "sh010"})
	if err != nil {
		t.Fatalf("create shot: %v", err)
	}
	if sh.Status != "pending" || sh.ProjectID != p.ID {
		t.Fatalf("unexpected shot %+v", sh)
	}

	name := "sh020"
	got, err := admin.UpdateShot(ctx, sh.ID, models.ShotUpdate{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "sh020" || got.Status != "pending" {
		t.Fatalf("expected only name changed, got %+v", got)
	}

	bad := "exploded"
	_, err = admin.UpdateShot(ctx, sh.ID, models.ShotUpdate{Status: &bad})
	if apiclient.Detail(err) != "Invalid shot status" {
		t.Fatalf("expected Invalid shot status, got %v", err)
	}

	if err := admin.DeleteShot(ctx, sh.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := admin.DeleteShot(ctx, sh.ID); !errors.Is(err, apiclient.ErrNotFound) {
		t.Fatalf("expected second delete 404, got %v", err)
	}
	shots, err := admin.Shots(ctx)
	if err != nil || len(shots) != 0 {
		t.Fatalf("expected no shots, got %+v (%v)", shots, err)
	}
}

func TestTaskCreation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.client(t, "admin")
	ctx := context.Background()

	film, _ := admin.CreateProject(ctx, models.ProjectCreate{Name: "Film", OrganizationID: env.org.ID})
	promo, _ := admin.CreateProject(ctx, models.ProjectCreate{Name: "Promo", OrganizationID: env.org.ID})
	sh, err := admin.CreateProjectShot(ctx, film.ID, models.ShotCreate{Name: "sh010"})
	if err != nil {
		t.Fatalf("create shot: %v", err)
	}
	asset, err := admin.CreateProjectAsset(ctx, film.ID, models.AssetCreate{Name: "hero", AssetType: "character"})
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	lead, _ := admin.CreateProjectMember(ctx, film.ID, models.ProjectMemberCreate{DisplayName: "Lead"})
	outsider, _ := admin.CreateProjectMember(ctx, promo.ID, models.ProjectMemberCreate{DisplayName: "Outsider"})

	tests := []struct {
		name   string
		in     models.TaskCreate
		detail string
	}{
		{"no parent", models.TaskCreate{Name: "T", AssignedToID: lead.ID}, "Task must be linked to a Shot or an Asset."},
		{"two parents", models.TaskCreate{Name: "T", AssignedToID: lead.ID, ShotID: &sh.ID, AssetID: &asset.ID}, "Task must be linked to a Shot or an Asset."},
		{"unknown member", models.TaskCreate{Name: "T", AssignedToID: 999, ShotID: &sh.ID}, "Assigned ProjectMember not found"},
		{"foreign member", models.TaskCreate{Name: "T", AssignedToID: outsider.ID, ShotID: &sh.ID}, "Cannot assign a task to a member from a different project."},
		{"missing dependency", models.TaskCreate{Name: "T", AssignedToID: lead.ID, ShotID: &sh.ID, Dependencies: []int64{77}}, "Dependency tasks not found: [77]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := admin.CreateTask(ctx, tc.in)
			if apiclient.Detail(err) != tc.detail {
				t.Fatalf("expected %q, got %v", tc.detail, err)
			}
		})
	}

	first, err := admin.CreateTask(ctx, models.TaskCreate{Name: "Model", AssignedToID: lead.ID, AssetID: &asset.ID})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.Status != "todo" {
		t.Fatalf("expected default status todo, got %q", first.Status)
	}
	second, err := admin.CreateTask(ctx, models.TaskCreate{
		Name: "Anim", AssignedToID: lead.ID, ShotID: &sh.ID, Dependencies: []int64{first.ID, first.ID},
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if len(second.Dependencies) != 1 || second.Dependencies[0] != first.ID {
		t.Fatalf("expected one dependency, got %v", second.Dependencies)
	}

	tasks, err := admin.ProjectTasks(ctx, film.ID)
	if err != nil || len(tasks) != 2 {
		t.Fatalf("expected 2 film tasks, got %d (%v)", len(tasks), err)
	}
	tasks, err = admin.ProjectTasks(ctx, promo.ID)
	if err != nil || len(tasks) != 0 {
		t.Fatalf("expected no promo tasks, got %d (%v)", len(tasks), err)
	}
}

func TestSignupCannotCreateStaff(t *testing.T) {
	env := newTestEnv(t)
	body := `{"account_name":"eve","display_name":"Eve","password":"pw","account_type":"admin","organization_id":1}`
	resp, err := http.Post(env.srv.URL+"/accounts/", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	body = strings.Replace(body, `"admin"`, `"artist"`, 1)
	resp, err = http.Post(env.srv.URL+"/accounts/", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if _, err := env.client(t, "admin").Users(context.Background()); err != nil {
		t.Fatalf("users: %v", err)
	}
}
