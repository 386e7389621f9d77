package db

import (
	"context"
	"errors"
	"testing"

	"github.com/kidandcat/motk/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type fixture struct {
	org     models.Organization
	account models.Account
	project models.Project
	member  models.ProjectMember
	shot    models.Shot
	asset   models.Asset
}

func seed(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error

	if f.org, err = s.CreateOrganization(ctx, models.OrganizationCreate{Name: "Acme", Status: "active"}); err != nil {
		t.Fatalf("create org: %v", err)
	}
	f.account, err = s.CreateAccount(ctx, models.AccountCreate{
		AccountName: "alice", DisplayName: "Alice", AccountType: "artist", OrganizationID: f.org.ID,
	}, "hash")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if f.project, err = s.CreateProject(ctx, models.ProjectCreate{Name: "Film", Status: "active", OrganizationID: f.org.ID}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	f.member, err = s.CreateMember(ctx, f.project.ID, models.ProjectMemberCreate{
		DisplayName: "Alice", Department: "Anim", Role: "Lead", AccountID: &f.account.ID,
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if f.shot, err = s.CreateShot(ctx, models.ShotCreate{Name: "sh010", Status: "pending", ProjectID: f.project.ID}); err != nil {
		t.Fatalf("create shot: %v", err)
	}
	if f.asset, err = s.CreateAsset(ctx, models.AssetCreate{Name: "hero", AssetType: "character", Status: "pending", ProjectID: f.project.ID}); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	return f
}

func TestOrganizationConflict(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	_, err := s.CreateOrganization(context.Background(), models.OrganizationCreate{Name: "Acme", Status: "active"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	orgs, err := s.ListOrganizations(context.Background())
	if err != nil || len(orgs) != 1 {
		t.Fatalf("expected 1 organization, got %d (%v)", len(orgs), err)
	}
}

func TestProjectRequiresOrganization(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateProject(context.Background(), models.ProjectCreate{Name: "Orphan", Status: "active", OrganizationID: 99})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectVisibility(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	other, err := s.CreateProject(ctx, models.ProjectCreate{Name: "Other", Status: "active", OrganizationID: f.org.ID})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	all, err := s.ListProjectsByOrganization(ctx, f.org.ID)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 org projects, got %d (%v)", len(all), err)
	}
	mine, err := s.ListProjectsForAccount(ctx, f.account.ID)
	if err != nil || len(mine) != 1 || mine[0].ID != f.project.ID {
		t.Fatalf("expected only the member project, got %+v (%v)", mine, err)
	}
	if ok, _ := s.IsMember(ctx, other.ID, f.account.ID); ok {
		t.Fatal("expected no membership in the other project")
	}
}

func TestProjectDetails(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)

	d, err := s.ProjectDetails(context.Background(), f.project.ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if len(d.Members) != 1 || len(d.Shots) != 1 || len(d.Assets) != 1 {
		t.Fatalf("unexpected details: %+v", d)
	}
	if d.Members[0].Account == nil || d.Members[0].Account.AccountName != "alice" {
		t.Fatalf("expected member account joined, got %+v", d.Members[0])
	}

	if _, err := s.ProjectDetails(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateShotPartial(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	status := "in_progress"
	got, err := s.UpdateShot(ctx, f.shot.ID, models.ShotUpdate{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "sh010" || got.Status != "in_progress" {
		t.Fatalf("expected only status changed, got %+v", got)
	}

	name := "sh020"
	if _, err := s.UpdateShot(ctx, 404, models.ShotUpdate{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteShotCascadesTasks(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	if _, err := s.CreateTask(ctx, models.TaskCreate{
		Name: "Layout", Status: "todo", AssignedToID: f.member.ID, ShotID: &f.shot.ID,
	}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.DeleteShot(ctx, f.shot.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteShot(ctx, f.shot.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected second delete to be ErrNotFound, got %v", err)
	}

	tasks, err := s.ListTasks(ctx, []int64{f.project.ID})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected tasks removed with the shot, got %+v", tasks)
	}
}

func TestTasksWithDependencies(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	first, err := s.CreateTask(ctx, models.TaskCreate{
		Name: "Model", Status: "todo", AssignedToID: f.member.ID, AssetID: &f.asset.ID,
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.Dependencies == nil || len(first.Dependencies) != 0 {
		t.Fatalf("expected empty non-nil dependencies, got %#v", first.Dependencies)
	}

	second, err := s.CreateTask(ctx, models.TaskCreate{
		Name: "Anim", Status: "todo", AssignedToID: f.member.ID, ShotID: &f.shot.ID,
		Dependencies: []int64{first.ID, first.ID},
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if len(second.Dependencies) != 1 || second.Dependencies[0] != first.ID {
		t.Fatalf("expected one dependency on %d, got %v", first.ID, second.Dependencies)
	}
	if second.AssignedTo == nil || second.AssignedTo.Account == nil || second.AssignedTo.Account.AccountName != "alice" {
		t.Fatalf("expected assignee joined, got %+v", second.AssignedTo)
	}

	tasks, err := s.ListTasks(ctx, []int64{f.project.ID})
	if err != nil || len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d (%v)", len(tasks), err)
	}

	missing, err := s.MissingTasks(ctx, []int64{first.ID, 999})
	if err != nil || len(missing) != 1 || missing[0] != 999 {
		t.Fatalf("expected 999 missing, got %v (%v)", missing, err)
	}
}

func TestTaskNeedsExactlyOneParent(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)

	_, err := s.CreateTask(context.Background(), models.TaskCreate{
		Name: "Both", Status: "todo", AssignedToID: f.member.ID, ShotID: &f.shot.ID, AssetID: &f.asset.ID,
	})
	if err == nil {
		t.Fatal("expected check constraint failure")
	}
}

func TestAccounts(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	acc, hash, err := s.GetAccountByName(ctx, "alice")
	if err != nil || acc.ID != f.account.ID || hash != "hash" {
		t.Fatalf("unexpected account %+v %q (%v)", acc, hash, err)
	}
	if _, _, err := s.GetAccountByName(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	n, err := s.CountAccounts(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 account, got %d (%v)", n, err)
	}
	if list, _ := s.ListAccounts(ctx, f.org.ID+1); len(list) != 0 {
		t.Fatalf("expected no accounts in another org, got %+v", list)
	}
}
