package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kidandcat/motk/internal/models"
)

const projectColumns = "p.id, p.name, p.status, p.organization_id, p.start_date, p.end_date"

func scanProject(sc interface{ Scan(...any) error }) (models.Project, error) {
	var p models.Project
	var start, end sql.NullString
	if err := sc.Scan(&p.ID, &p.Name, &p.Status, &p.OrganizationID, &start, &end); err != nil {
		return p, err
	}
	p.StartDate, p.EndDate = stringPtr(start), stringPtr(end)
	return p, nil
}

func (s *Store) CreateProject(ctx context.Context, in models.ProjectCreate) (models.Project, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, status, organization_id, start_date, end_date) VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.Status, in.OrganizationID, nullString(in.StartDate), nullString(in.EndDate),
	)
	if err != nil {
		return models.Project{}, wrapInsert("project", err)
	}
	id, _ := res.LastInsertId()
	return s.GetProject(ctx, id)
}

func (s *Store) GetProject(ctx context.Context, id int64) (models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects p WHERE p.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("query project: %w", err)
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.queryProjects(ctx, "SELECT "+projectColumns+" FROM projects p ORDER BY p.id")
}

// ListProjectsByOrganization is what managers see.
func (s *Store) ListProjectsByOrganization(ctx context.Context, organizationID int64) ([]models.Project, error) {
	return s.queryProjects(ctx,
		"SELECT "+projectColumns+" FROM projects p WHERE p.organization_id = ? ORDER BY p.id", organizationID)
}

// ListProjectsForAccount is what everyone else sees: the projects where the
// account holds a membership.
func (s *Store) ListProjectsForAccount(ctx context.Context, accountID int64) ([]models.Project, error) {
	return s.queryProjects(ctx,
		`SELECT DISTINCT `+projectColumns+` FROM projects p
		 JOIN project_members m ON m.project_id = p.id
		 WHERE m.account_id = ? ORDER BY p.id`, accountID)
}

func (s *Store) queryProjects(ctx context.Context, query string, args ...any) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// IsMember reports whether accountID holds a membership in projectID.
func (s *Store) IsMember(ctx context.Context, projectID, accountID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM project_members WHERE project_id = ? AND account_id = ?)",
		projectID, accountID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("query membership: %w", err)
	}
	return ok, nil
}

// ProjectDetails loads a project with its members (and their accounts),
// shots and assets.
func (s *Store) ProjectDetails(ctx context.Context, id int64) (models.ProjectDetails, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return models.ProjectDetails{}, err
	}
	d := models.ProjectDetails{Project: p}

	if d.Members, err = s.ListMembers(ctx, id); err != nil {
		return d, err
	}
	if d.Shots, err = s.ListShots(ctx, []int64{id}); err != nil {
		return d, err
	}
	if d.Assets, err = s.ListAssets(ctx, []int64{id}); err != nil {
		return d, err
	}
	return d, nil
}

// Members

const memberColumns = `m.id, m.project_id, m.account_id, m.display_name, m.department, m.role,
	a.id, a.account_name, a.display_name, a.account_type, a.organization_id`

func scanMember(sc interface{ Scan(...any) error }) (models.ProjectMember, error) {
	var m models.ProjectMember
	var accountID sql.NullInt64
	var aID, aOrg sql.NullInt64
	var aName, aDisplay, aType sql.NullString
	err := sc.Scan(&m.ID, &m.ProjectID, &accountID, &m.DisplayName, &m.Department, &m.Role,
		&aID, &aName, &aDisplay, &aType, &aOrg)
	if err != nil {
		return m, err
	}
	m.AccountID = int64Ptr(accountID)
	if aID.Valid {
		m.Account = &models.Account{
			ID:             aID.Int64,
			AccountName:    aName.String,
			DisplayName:    aDisplay.String,
			AccountType:    aType.String,
			OrganizationID: aOrg.Int64,
		}
	}
	return m, nil
}

func (s *Store) CreateMember(ctx context.Context, projectID int64, in models.ProjectMemberCreate) (models.ProjectMember, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO project_members (project_id, account_id, display_name, department, role) VALUES (?, ?, ?, ?, ?)`,
		projectID, nullInt(in.AccountID), in.DisplayName, in.Department, in.Role,
	)
	if err != nil {
		return models.ProjectMember{}, wrapInsert("project member", err)
	}
	id, _ := res.LastInsertId()
	return s.GetMember(ctx, id)
}

func (s *Store) GetMember(ctx context.Context, id int64) (models.ProjectMember, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM project_members m
		 LEFT JOIN accounts a ON a.id = m.account_id WHERE m.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return m, fmt.Errorf("project member %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return m, fmt.Errorf("query project member: %w", err)
	}
	return m, nil
}

func (s *Store) ListMembers(ctx context.Context, projectID int64) ([]models.ProjectMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM project_members m
		 LEFT JOIN accounts a ON a.id = m.account_id
		 WHERE m.project_id = ? ORDER BY m.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query project members: %w", err)
	}
	defer rows.Close()

	members := []models.ProjectMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
