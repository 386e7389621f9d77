package views

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kidandcat/motk/internal/models"
)

// LinkType says which kind of parent a new task hangs off.
type LinkType string

const (
	LinkShot  LinkType = "shot"
	LinkAsset LinkType = "asset"
)

// TaskDraft holds the task form fields. Exactly one parent is linked, chosen
// by LinkType.
type TaskDraft struct {
	Name         string
	Status       string
	LinkType     LinkType
	LinkID       int64
	AssignedToID int64
	Dependencies []int64
}

func NewTaskDraft() TaskDraft {
	return TaskDraft{Status: "todo", LinkType: LinkShot}
}

// SetLinkType switches the parent kind and forgets the previous selection.
func (d *TaskDraft) SetLinkType(t LinkType) {
	if d.LinkType != t {
		d.LinkType = t
		d.LinkID = 0
	}
}

// Payload sets the id of the linked parent and leaves the other one nil so
// it encodes as JSON null.
func (d TaskDraft) Payload() models.TaskCreate {
	out := models.TaskCreate{
		Name:         strings.TrimSpace(d.Name),
		Status:       d.Status,
		AssignedToID: d.AssignedToID,
		Dependencies: []int64{},
	}
	id := d.LinkID
	switch d.LinkType {
	case LinkShot:
		out.ShotID = &id
	case LinkAsset:
		out.AssetID = &id
	}
	for _, dep := range d.Dependencies {
		if !slices.Contains(out.Dependencies, dep) {
			out.Dependencies = append(out.Dependencies, dep)
		}
	}
	return out
}

func (d TaskDraft) Validate() error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return InputError("Please enter a name.")
	case d.LinkType != LinkShot && d.LinkType != LinkAsset, d.LinkID == 0:
		return InputError("Please select a parent (shot or asset).")
	case d.AssignedToID == 0:
		return InputError("Please select a member to assign.")
	}
	return oneOf("status", d.Status, models.TaskStatuses)
}

// DependencyOptions lists the tasks a task may depend on. A task never
// depends on itself.
func DependencyOptions(all []models.Task, self int64) []models.Task {
	out := make([]models.Task, 0, len(all))
	for _, t := range all {
		if self != 0 && t.ID == self {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Option is one entry of a selection input.
type Option struct {
	ID    int64
	Label string
}

// LinkOptions lists the parents selectable for the draft's link type.
func LinkOptions(t LinkType, shots []models.Shot, assets []models.Asset) []Option {
	var out []Option
	switch t {
	case LinkShot:
		for _, s := range shots {
			out = append(out, Option{ID: s.ID, Label: s.Name})
		}
	case LinkAsset:
		for _, a := range assets {
			out = append(out, Option{ID: a.ID, Label: fmt.Sprintf("%s (%s)", a.Name, a.AssetType)})
		}
	}
	return out
}

// MemberOptions lists assignable members as "name (role)".
func MemberOptions(members []models.ProjectMember) []Option {
	out := make([]Option, 0, len(members))
	for _, m := range members {
		out = append(out, Option{ID: m.ID, Label: fmt.Sprintf("%s (%s)", m.DisplayName, m.Role)})
	}
	return out
}

const (
	noParentsMessage = "Please create at least one shot or asset before creating a task."
	noMembersMessage = "Please add at least one member to the project before creating a task."
)

// TaskChoices loads what the standalone task form selects from: every shot,
// asset and task, plus the members of the project the chosen parent belongs
// to.
type TaskChoices struct {
	c Client

	mu      sync.RWMutex
	status  Status
	err     error
	shots   []models.Shot
	assets  []models.Asset
	tasks   []models.Task
	members []models.ProjectMember
	project int64
	want    int64
}

func NewTaskChoices(c Client) *TaskChoices {
	return &TaskChoices{c: c}
}

// Load fetches shots, assets and tasks concurrently. Either all three land
// or none do.
func (tc *TaskChoices) Load(ctx context.Context) error {
	var (
		shots  []models.Shot
		assets []models.Asset
		tasks  []models.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		shots, err = tc.c.Shots(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		assets, err = tc.c.Assets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = tc.c.Tasks(gctx)
		return err
	})
	err := g.Wait()

	tc.mu.Lock()
	defer tc.mu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		tc.status, tc.err = Failed, err
		return err
	}
	tc.status, tc.err = Ready, nil
	tc.shots, tc.assets, tc.tasks = shots, assets, tasks
	return nil
}

// LoadMembers fetches the members of the project owning the draft's parent.
// It is a no-op when that project's members are already loaded. Members of
// any other project are dropped at once, so a draft without a parent offers
// no assignees.
func (tc *TaskChoices) LoadMembers(ctx context.Context, d TaskDraft) error {
	projectID := tc.parentProject(d)
	tc.mu.Lock()
	tc.want = projectID
	if projectID == tc.project {
		tc.mu.Unlock()
		return nil
	}
	tc.project, tc.members = 0, nil
	tc.mu.Unlock()
	if projectID == 0 {
		return nil
	}

	p, err := tc.c.Project(ctx, projectID)
	if err != nil {
		return err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.want == projectID {
		tc.project, tc.members = projectID, p.Members
	}
	return nil
}

func (tc *TaskChoices) parentProject(d TaskDraft) int64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	switch d.LinkType {
	case LinkShot:
		for _, s := range tc.shots {
			if s.ID == d.LinkID {
				return s.ProjectID
			}
		}
	case LinkAsset:
		for _, a := range tc.assets {
			if a.ID == d.LinkID {
				return a.ProjectID
			}
		}
	}
	return 0
}

func (tc *TaskChoices) Status() Status {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.status
}

func (tc *TaskChoices) Links(t LinkType) []Option {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return LinkOptions(t, tc.shots, tc.assets)
}

func (tc *TaskChoices) Members() []Option {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return MemberOptions(tc.members)
}

func (tc *TaskChoices) Dependencies(self int64) []models.Task {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return DependencyOptions(tc.tasks, self)
}

// Blocked returns the message shown instead of the form, or "".
func (tc *TaskChoices) Blocked() string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	switch {
	case tc.status == Failed:
		return "Failed to load required data (shots, assets, tasks). Please ensure they are created."
	case tc.status == Ready && len(tc.shots) == 0 && len(tc.assets) == 0:
		return noParentsMessage
	case tc.project != 0 && len(tc.members) == 0:
		return noMembersMessage
	}
	return ""
}
