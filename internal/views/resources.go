package views

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/kidandcat/motk/internal/models"
)

// Client is the part of apiclient.Client the screens use.
type Client interface {
	Organizations(ctx context.Context) ([]models.Organization, error)
	CreateOrganization(ctx context.Context, in models.OrganizationCreate) (models.Organization, error)
	Projects(ctx context.Context) ([]models.Project, error)
	Project(ctx context.Context, id int64) (models.ProjectDetails, error)
	CreateProject(ctx context.Context, in models.ProjectCreate) (models.Project, error)
	CreateProjectMember(ctx context.Context, projectID int64, in models.ProjectMemberCreate) (models.ProjectMember, error)
	CreateProjectShot(ctx context.Context, projectID int64, in models.ShotCreate) (models.Shot, error)
	CreateProjectAsset(ctx context.Context, projectID int64, in models.AssetCreate) (models.Asset, error)
	Shots(ctx context.Context) ([]models.Shot, error)
	CreateShot(ctx context.Context, in models.ShotCreate) (models.Shot, error)
	UpdateShot(ctx context.Context, id int64, in models.ShotUpdate) (models.Shot, error)
	DeleteShot(ctx context.Context, id int64) error
	Assets(ctx context.Context) ([]models.Asset, error)
	CreateAsset(ctx context.Context, in models.AssetCreate) (models.Asset, error)
	Users(ctx context.Context) ([]models.Account, error)
	CreateUser(ctx context.Context, in models.AccountCreate) (models.Account, error)
	Tasks(ctx context.Context) ([]models.Task, error)
	ProjectTasks(ctx context.Context, projectID int64) ([]models.Task, error)
	CreateTask(ctx context.Context, in models.TaskCreate) (models.Task, error)
}

// Resource is the capability set of one entity screen. Name is the plural
// used in list messages, Singular the noun used in form messages.
type Resource[T, In any] struct {
	Name     string
	Singular string
	List     func(ctx context.Context) ([]T, error)
	Create   func(ctx context.Context, in In) (T, error)
	Validate func(in In) error
	Defaults func() In
}

// Screen pairs a resource's list with its creation form. A successful
// submit re-fetches the list in full.
type Screen[T, In any] struct {
	List *List[T]
	Form *Form[T, In]
}

func NewScreen[T, In any](res Resource[T, In]) *Screen[T, In] {
	s := &Screen[T, In]{
		List: NewList(res.Name, res.List),
		Form: NewForm(res),
	}
	s.Form.OnSuccess = func(ctx context.Context) { s.List.Load(ctx) }
	return s
}

func Organizations(c Client) Resource[models.Organization, models.OrganizationCreate] {
	return Resource[models.Organization, models.OrganizationCreate]{
		Name:     "organizations",
		Singular: "organization",
		List:     c.Organizations,
		Create:   c.CreateOrganization,
		Validate: func(in models.OrganizationCreate) error {
			if strings.TrimSpace(in.Name) == "" {
				return InputError("Please enter a name.")
			}
			return oneOf("status", in.Status, models.OrganizationStatuses)
		},
		Defaults: func() models.OrganizationCreate {
			return models.OrganizationCreate{Status: "active"}
		},
	}
}

func Projects(c Client) Resource[models.Project, models.ProjectCreate] {
	return Resource[models.Project, models.ProjectCreate]{
		Name:     "projects",
		Singular: "project",
		List:     c.Projects,
		Create:   c.CreateProject,
		Validate: func(in models.ProjectCreate) error {
			if strings.TrimSpace(in.Name) == "" {
				return InputError("Please enter a name.")
			}
			if in.OrganizationID == 0 {
				return InputError("Please select an organization.")
			}
			if err := oneOf("status", in.Status, models.ProjectStatuses); err != nil {
				return err
			}
			return dateRange(in.StartDate, in.EndDate)
		},
		Defaults: func() models.ProjectCreate {
			return models.ProjectCreate{Status: "active"}
		},
	}
}

func Shots(c Client) Resource[models.Shot, models.ShotCreate] {
	return Resource[models.Shot, models.ShotCreate]{
		Name:     "shots",
		Singular: "shot",
		List:     c.Shots,
		Create:   c.CreateShot,
		Validate: func(in models.ShotCreate) error {
			if strings.TrimSpace(in.Name) == "" {
				return InputError("Please enter a name.")
			}
			if in.ProjectID == 0 {
				return InputError("Please select a project.")
			}
			return oneOf("status", in.Status, models.ShotStatuses)
		},
		Defaults: func() models.ShotCreate {
			return models.ShotCreate{Status: "pending"}
		},
	}
}

func Assets(c Client) Resource[models.Asset, models.AssetCreate] {
	return Resource[models.Asset, models.AssetCreate]{
		Name:     "assets",
		Singular: "asset",
		List:     c.Assets,
		Create:   c.CreateAsset,
		Validate: func(in models.AssetCreate) error {
			if strings.TrimSpace(in.Name) == "" {
				return InputError("Please enter a name.")
			}
			if strings.TrimSpace(in.AssetType) == "" {
				return InputError("Please enter an asset type.")
			}
			if in.ProjectID == 0 {
				return InputError("Please select a project.")
			}
			return oneOf("status", in.Status, models.ShotStatuses)
		},
		Defaults: func() models.AssetCreate {
			return models.AssetCreate{Status: "pending"}
		},
	}
}

func Users(c Client) Resource[models.Account, models.AccountCreate] {
	return Resource[models.Account, models.AccountCreate]{
		Name:     "users",
		Singular: "user",
		List:     c.Users,
		Create:   c.CreateUser,
		Validate: func(in models.AccountCreate) error {
			switch {
			case strings.TrimSpace(in.AccountName) == "":
				return InputError("Please enter an account name.")
			case strings.TrimSpace(in.DisplayName) == "":
				return InputError("Please enter a display name.")
			case in.Password == "":
				return InputError("Please enter a password.")
			case in.OrganizationID == 0:
				return InputError("Please select an organization.")
			}
			return oneOf("account type", in.AccountType, models.AccountTypes)
		},
		Defaults: func() models.AccountCreate {
			return models.AccountCreate{AccountType: "artist"}
		},
	}
}

// Tasks creates from a TaskDraft so the form can hold the link type.
func Tasks(c Client) Resource[models.Task, TaskDraft] {
	return Resource[models.Task, TaskDraft]{
		Name:     "tasks",
		Singular: "task",
		List:     c.Tasks,
		Create: func(ctx context.Context, d TaskDraft) (models.Task, error) {
			return c.CreateTask(ctx, d.Payload())
		},
		Validate: TaskDraft.Validate,
		Defaults: NewTaskDraft,
	}
}

// Reference collections used by the forms above.

func OrganizationChoices(c Client) *Reference[models.Organization] {
	return NewReference("organizations", "organization", "Organizations", c.Organizations)
}

func ProjectChoices(c Client) *Reference[models.Project] {
	return NewReference("projects", "project", "Projects", c.Projects)
}

func oneOf(field, v string, allowed []string) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return InputError("Please select a " + field + " (" + strings.Join(allowed, ", ") + ").")
}

func dateRange(start, end *string) error {
	var from, to time.Time
	for _, d := range []struct {
		v   *string
		out *time.Time
	}{{start, &from}, {end, &to}} {
		if d.v == nil || *d.v == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, *d.v)
		if err != nil {
			return InputError("Dates must use the YYYY-MM-DD format.")
		}
		*d.out = t
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return InputError("The end date must not be before the start date.")
	}
	return nil
}
