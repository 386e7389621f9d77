package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kidandcat/motk/internal/models"
)

// Shots

func (s *Store) CreateShot(ctx context.Context, in models.ShotCreate) (models.Shot, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO shots (name, status, project_id) VALUES (?, ?, ?)", in.Name, in.Status, in.ProjectID)
	if err != nil {
		return models.Shot{}, wrapInsert("shot", err)
	}
	id, _ := res.LastInsertId()
	return models.Shot{ID: id, Name: in.Name, Status: in.Status, ProjectID: in.ProjectID}, nil
}

func (s *Store) GetShot(ctx context.Context, id int64) (models.Shot, error) {
	var sh models.Shot
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, status, project_id FROM shots WHERE id = ?", id,
	).Scan(&sh.ID, &sh.Name, &sh.Status, &sh.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return sh, fmt.Errorf("shot %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return sh, fmt.Errorf("query shot: %w", err)
	}
	return sh, nil
}

// ListShots returns the shots of the given projects. An empty slice of ids
// yields no shots.
func (s *Store) ListShots(ctx context.Context, projectIDs []int64) ([]models.Shot, error) {
	shots := []models.Shot{}
	if len(projectIDs) == 0 {
		return shots, nil
	}
	in, args := inClause(projectIDs)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, status, project_id FROM shots WHERE project_id IN "+in+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("query shots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sh models.Shot
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.Status, &sh.ProjectID); err != nil {
			return nil, err
		}
		shots = append(shots, sh)
	}
	return shots, rows.Err()
}

// UpdateShot changes only the fields set in upd.
func (s *Store) UpdateShot(ctx context.Context, id int64, upd models.ShotUpdate) (models.Shot, error) {
	var sets []string
	var args []any
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if len(sets) > 0 {
		args = append(args, id)
		res, err := s.db.ExecContext(ctx, "UPDATE shots SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return models.Shot{}, fmt.Errorf("update shot: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.Shot{}, fmt.Errorf("shot %d: %w", id, ErrNotFound)
		}
	}
	return s.GetShot(ctx, id)
}

func (s *Store) DeleteShot(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM shots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete shot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shot %d: %w", id, ErrNotFound)
	}
	return nil
}

// Assets

func (s *Store) CreateAsset(ctx context.Context, in models.AssetCreate) (models.Asset, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO assets (name, asset_type, status, project_id) VALUES (?, ?, ?, ?)",
		in.Name, in.AssetType, in.Status, in.ProjectID)
	if err != nil {
		return models.Asset{}, wrapInsert("asset", err)
	}
	id, _ := res.LastInsertId()
	return models.Asset{ID: id, Name: in.Name, AssetType: in.AssetType, Status: in.Status, ProjectID: in.ProjectID}, nil
}

func (s *Store) GetAsset(ctx context.Context, id int64) (models.Asset, error) {
	var a models.Asset
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, asset_type, status, project_id FROM assets WHERE id = ?", id,
	).Scan(&a.ID, &a.Name, &a.AssetType, &a.Status, &a.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("asset %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return a, fmt.Errorf("query asset: %w", err)
	}
	return a, nil
}

func (s *Store) ListAssets(ctx context.Context, projectIDs []int64) ([]models.Asset, error) {
	assets := []models.Asset{}
	if len(projectIDs) == 0 {
		return assets, nil
	}
	in, args := inClause(projectIDs)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, asset_type, status, project_id FROM assets WHERE project_id IN "+in+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.AssetType, &a.Status, &a.ProjectID); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// Tasks

// CreateTask inserts the task and its dependency edges in one transaction.
func (s *Store) CreateTask(ctx context.Context, in models.TaskCreate) (models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (name, status, assigned_to_id, shot_id, asset_id) VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.Status, in.AssignedToID, nullInt(in.ShotID), nullInt(in.AssetID),
	)
	if err != nil {
		return models.Task{}, wrapInsert("task", err)
	}
	id, _ := res.LastInsertId()

	for _, dep := range in.Dependencies {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO task_dependencies (dependent_task_id, dependency_on_task_id) VALUES (?, ?)",
			id, dep,
		); err != nil {
			return models.Task{}, wrapInsert("task dependency", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Task{}, fmt.Errorf("commit: %w", err)
	}

	tasks, err := s.queryTasks(ctx, "WHERE t.id = ?", id)
	if err != nil {
		return models.Task{}, err
	}
	if len(tasks) == 0 {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return tasks[0], nil
}

// MissingTasks returns the ids in ids that do not exist.
func (s *Store) MissingTasks(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM tasks WHERE id IN "+in, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	found := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, rows.Err()
}

// ListTasks returns the tasks whose shot or asset belongs to one of
// projectIDs.
func (s *Store) ListTasks(ctx context.Context, projectIDs []int64) ([]models.Task, error) {
	if len(projectIDs) == 0 {
		return []models.Task{}, nil
	}
	in, args := inClause(projectIDs)
	return s.queryTasks(ctx, "WHERE COALESCE(sh.project_id, a2.project_id) IN "+in, args...)
}

func (s *Store) queryTasks(ctx context.Context, where string, args ...any) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.status, t.start_date, t.end_date, t.assigned_to_id, t.shot_id, t.asset_id,
		        `+memberColumns+`
		 FROM tasks t
		 LEFT JOIN shots sh ON sh.id = t.shot_id
		 LEFT JOIN assets a2 ON a2.id = t.asset_id
		 JOIN project_members m ON m.id = t.assigned_to_id
		 LEFT JOIN accounts a ON a.id = m.account_id
		 `+where+` ORDER BY t.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		var start, end sql.NullString
		var shotID, assetID sql.NullInt64
		var m models.ProjectMember
		var accountID, aID, aOrg sql.NullInt64
		var aName, aDisplay, aType sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Status, &start, &end, &t.AssignedToID, &shotID, &assetID,
			&m.ID, &m.ProjectID, &accountID, &m.DisplayName, &m.Department, &m.Role,
			&aID, &aName, &aDisplay, &aType, &aOrg); err != nil {
			return nil, err
		}
		t.StartDate, t.EndDate = stringPtr(start), stringPtr(end)
		t.ShotID, t.AssetID = int64Ptr(shotID), int64Ptr(assetID)
		m.AccountID = int64Ptr(accountID)
		if aID.Valid {
			m.Account = &models.Account{ID: aID.Int64, AccountName: aName.String, DisplayName: aDisplay.String, AccountType: aType.String, OrganizationID: aOrg.Int64}
		}
		t.AssignedTo = &m
		t.Dependencies = []int64{}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	return tasks, s.attachDependencies(ctx, tasks)
}

func (s *Store) attachDependencies(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Task, len(tasks))
	ids := make([]int64, 0, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
		ids = append(ids, tasks[i].ID)
	}
	in, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx,
		`SELECT dependent_task_id, dependency_on_task_id FROM task_dependencies
		 WHERE dependent_task_id IN `+in+` ORDER BY dependency_on_task_id`, args...)
	if err != nil {
		return fmt.Errorf("query task dependencies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var from, to int64
		if err := rows.Scan(&from, &to); err != nil {
			return err
		}
		t := byID[from]
		t.Dependencies = append(t.Dependencies, to)
	}
	return rows.Err()
}
