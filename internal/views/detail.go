package views

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kidandcat/motk/internal/apiclient"
	"github.com/kidandcat/motk/internal/models"
)

type Tab string

const (
	TabShots   Tab = "shots"
	TabAssets  Tab = "assets"
	TabTasks   Tab = "tasks"
	TabMembers Tab = "members"
)

var Tabs = []Tab{TabShots, TabAssets, TabTasks, TabMembers}

// ProjectDetail is one project with its members, shots, assets and tasks.
// The project and its tasks are fetched concurrently and shown only when
// both arrive.
type ProjectDetail struct {
	ID int64
	c  Client

	Shots      *Grid
	ShotForm   *Form[models.Shot, models.ShotCreate]
	AssetForm  *Form[models.Asset, models.AssetCreate]
	MemberForm *Form[models.ProjectMember, models.ProjectMemberCreate]
	TaskForm   *Form[models.Task, TaskDraft]

	mu      sync.RWMutex
	seq     int
	status  Status
	err     error
	project models.ProjectDetails
	tasks   []models.Task
	tab     Tab
}

func NewProjectDetail(c Client, id int64) *ProjectDetail {
	d := &ProjectDetail{ID: id, c: c, tab: TabShots}
	d.Shots = NewGrid(c, d.shotRows, d.Load)

	d.ShotForm = NewForm(Resource[models.Shot, models.ShotCreate]{
		Singular: "shot",
		Create: func(ctx context.Context, in models.ShotCreate) (models.Shot, error) {
			return c.CreateProjectShot(ctx, id, in)
		},
		Validate: func(in models.ShotCreate) error {
			if strings.TrimSpace(in.Name) == "" {
				return InputError("Please enter a shot name.")
			}
			return nil
		},
		Defaults: func() models.ShotCreate { return models.ShotCreate{Status: "pending"} },
	})
	d.AssetForm = NewForm(Resource[models.Asset, models.AssetCreate]{
		Singular: "asset",
		Create: func(ctx context.Context, in models.AssetCreate) (models.Asset, error) {
			return c.CreateProjectAsset(ctx, id, in)
		},
		Validate: func(in models.AssetCreate) error {
			if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.AssetType) == "" {
				return InputError("Please enter an asset name and type.")
			}
			return nil
		},
		Defaults: func() models.AssetCreate { return models.AssetCreate{Status: "pending"} },
	})
	d.MemberForm = NewForm(Resource[models.ProjectMember, models.ProjectMemberCreate]{
		Singular: "member",
		Create: func(ctx context.Context, in models.ProjectMemberCreate) (models.ProjectMember, error) {
			return c.CreateProjectMember(ctx, id, in)
		},
		Validate: func(in models.ProjectMemberCreate) error {
			if strings.TrimSpace(in.DisplayName) == "" {
				return InputError("Please enter a display name.")
			}
			return nil
		},
		Defaults: func() models.ProjectMemberCreate {
			return models.ProjectMemberCreate{Department: "Unassigned", Role: "Member"}
		},
	})
	d.TaskForm = NewForm(Resource[models.Task, TaskDraft]{
		Singular: "task",
		Create: func(ctx context.Context, dr TaskDraft) (models.Task, error) {
			return c.CreateTask(ctx, dr.Payload())
		},
		Validate: TaskDraft.Validate,
		Defaults: NewTaskDraft,
	})

	reload := func(ctx context.Context) { d.Load(ctx) }
	d.ShotForm.OnSuccess = reload
	d.AssetForm.OnSuccess = reload
	d.MemberForm.OnSuccess = reload
	d.TaskForm.OnSuccess = reload
	return d
}

// Load fetches the project and its tasks in parallel. If either request
// fails nothing is kept and Message reports the error.
func (d *ProjectDetail) Load(ctx context.Context) error {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	prev := d.status
	d.status = Loading
	d.mu.Unlock()

	var (
		project models.ProjectDetails
		tasks   []models.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		project, err = d.c.Project(gctx, d.ID)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = d.c.ProjectTasks(gctx, d.ID)
		return err
	})
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		return err
	}
	if ctx.Err() != nil {
		d.status = prev
		return ctx.Err()
	}
	if err != nil {
		d.status, d.err = Failed, err
		d.project, d.tasks = models.ProjectDetails{}, nil
		return err
	}
	d.status, d.err = Ready, nil
	d.project, d.tasks = project, tasks
	return nil
}

func (d *ProjectDetail) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

func (d *ProjectDetail) Project() models.ProjectDetails {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.project
}

func (d *ProjectDetail) Tasks() []models.Task {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Task(nil), d.tasks...)
}

func (d *ProjectDetail) shotRows() []models.Shot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.project.Shots
}

func (d *ProjectDetail) Tab() Tab {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tab
}

func (d *ProjectDetail) SetTab(t Tab) {
	d.mu.Lock()
	d.tab = t
	d.mu.Unlock()
}

// Message is the page level banner, or "" once the project is shown.
func (d *ProjectDetail) Message() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	switch d.status {
	case Loading:
		return "Loading project details..."
	case Failed:
		if errors.Is(d.err, apiclient.ErrUnauthorized) {
			return ""
		}
		return "Error: " + apiclient.Message(d.err, "Failed to fetch project data.")
	}
	return ""
}

// TaskBlocked returns the message shown instead of the task form, or "".
func (d *ProjectDetail) TaskBlocked() string {
	p := d.Project()
	switch {
	case len(p.Shots) == 0 && len(p.Assets) == 0:
		return noParentsMessage
	case len(p.Members) == 0:
		return noMembersMessage
	}
	return ""
}
