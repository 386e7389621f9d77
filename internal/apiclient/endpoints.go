package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kidandcat/motk/internal/models"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (models.Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var tok models.Token
	err := c.postForm(ctx, "/token", form, &tok)
	if err == nil && tok.AccessToken == "" {
		err = fmt.Errorf("login: empty access_token in response")
	}
	return tok, err
}

// Me resolves the current token to its account.
func (c *Client) Me(ctx context.Context) (models.Account, error) {
	var a models.Account
	err := c.getJSON(ctx, "/accounts/me", &a)
	if err == nil && a.ID == 0 {
		err = fmt.Errorf("accounts/me: response has no account id")
	}
	return a, err
}

// Organizations

func (c *Client) Organizations(ctx context.Context) ([]models.Organization, error) {
	return get[[]models.Organization](ctx, c, "/organizations/")
}

func (c *Client) CreateOrganization(ctx context.Context, in models.OrganizationCreate) (models.Organization, error) {
	return send[models.Organization](ctx, c, http.MethodPost, "/organizations/", in)
}

// Projects

func (c *Client) Projects(ctx context.Context) ([]models.Project, error) {
	return get[[]models.Project](ctx, c, "/projects/")
}

func (c *Client) Project(ctx context.Context, id int64) (models.ProjectDetails, error) {
	return get[models.ProjectDetails](ctx, c, fmt.Sprintf("/projects/%d", id))
}

func (c *Client) CreateProject(ctx context.Context, in models.ProjectCreate) (models.Project, error) {
	return send[models.Project](ctx, c, http.MethodPost, "/projects/", in)
}

func (c *Client) CreateProjectMember(ctx context.Context, projectID int64, in models.ProjectMemberCreate) (models.ProjectMember, error) {
	return send[models.ProjectMember](ctx, c, http.MethodPost, fmt.Sprintf("/projects/%d/members", projectID), in)
}

func (c *Client) CreateProjectShot(ctx context.Context, projectID int64, in models.ShotCreate) (models.Shot, error) {
	return send[models.Shot](ctx, c, http.MethodPost, fmt.Sprintf("/projects/%d/shots", projectID), in)
}

func (c *Client) CreateProjectAsset(ctx context.Context, projectID int64, in models.AssetCreate) (models.Asset, error) {
	return send[models.Asset](ctx, c, http.MethodPost, fmt.Sprintf("/projects/%d/assets", projectID), in)
}

// Shots

func (c *Client) Shots(ctx context.Context) ([]models.Shot, error) {
	return get[[]models.Shot](ctx, c, "/shots/")
}

func (c *Client) CreateShot(ctx context.Context, in models.ShotCreate) (models.Shot, error) {
	return send[models.Shot](ctx, c, http.MethodPost, "/shots/", in)
}

func (c *Client) UpdateShot(ctx context.Context, id int64, in models.ShotUpdate) (models.Shot, error) {
	return send[models.Shot](ctx, c, http.MethodPut, fmt.Sprintf("/shots/%d", id), in)
}

func (c *Client) DeleteShot(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/shots/%d", id)}, nil)
}

// Assets

func (c *Client) Assets(ctx context.Context) ([]models.Asset, error) {
	return get[[]models.Asset](ctx, c, "/assets/")
}

func (c *Client) CreateAsset(ctx context.Context, in models.AssetCreate) (models.Asset, error) {
	return send[models.Asset](ctx, c, http.MethodPost, "/assets/", in)
}

// Users

func (c *Client) Users(ctx context.Context) ([]models.Account, error) {
	return get[[]models.Account](ctx, c, "/users/")
}

func (c *Client) CreateUser(ctx context.Context, in models.AccountCreate) (models.Account, error) {
	return send[models.Account](ctx, c, http.MethodPost, "/users/", in)
}

// Tasks

func (c *Client) Tasks(ctx context.Context) ([]models.Task, error) {
	return get[[]models.Task](ctx, c, "/tasks/")
}

func (c *Client) ProjectTasks(ctx context.Context, projectID int64) ([]models.Task, error) {
	return get[[]models.Task](ctx, c, fmt.Sprintf("/tasks/project/%d", projectID))
}

func (c *Client) CreateTask(ctx context.Context, in models.TaskCreate) (models.Task, error) {
	return send[models.Task](ctx, c, http.MethodPost, "/tasks/", in)
}

func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.getJSON(ctx, path, &out)
	return out, err
}

func send[T any](ctx context.Context, c *Client, method, path string, in any) (T, error) {
	var out T
	err := c.sendJSON(ctx, method, path, in, &out)
	return out, err
}
