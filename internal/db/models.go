package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kidandcat/motk/internal/models"
)

// Organizations

func (s *Store) CreateOrganization(ctx context.Context, in models.OrganizationCreate) (models.Organization, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO organizations (name, status) VALUES (?, ?)", in.Name, in.Status)
	if err != nil {
		return models.Organization{}, wrapInsert("organization", err)
	}
	id, _ := res.LastInsertId()
	return models.Organization{ID: id, Name: in.Name, Status: in.Status}, nil
}

func (s *Store) GetOrganization(ctx context.Context, id int64) (models.Organization, error) {
	var o models.Organization
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, status FROM organizations WHERE id = ?", id,
	).Scan(&o.ID, &o.Name, &o.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return o, fmt.Errorf("organization %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return o, fmt.Errorf("query organization: %w", err)
	}
	return o, nil
}

func (s *Store) GetOrganizationByName(ctx context.Context, name string) (models.Organization, error) {
	var o models.Organization
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, status FROM organizations WHERE name = ?", name,
	).Scan(&o.ID, &o.Name, &o.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return o, fmt.Errorf("organization %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return o, fmt.Errorf("query organization: %w", err)
	}
	return o, nil
}

func (s *Store) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, status FROM organizations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query organizations: %w", err)
	}
	defer rows.Close()

	orgs := []models.Organization{}
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Status); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

// Accounts

func (s *Store) CreateAccount(ctx context.Context, in models.AccountCreate, hashedPassword string) (models.Account, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (account_name, display_name, hashed_password, account_type, organization_id)
		 VALUES (?, ?, ?, ?, ?)`,
		in.AccountName, in.DisplayName, hashedPassword, in.AccountType, in.OrganizationID,
	)
	if err != nil {
		return models.Account{}, wrapInsert("account", err)
	}
	id, _ := res.LastInsertId()
	return models.Account{
		ID:             id,
		AccountName:    in.AccountName,
		DisplayName:    in.DisplayName,
		AccountType:    in.AccountType,
		OrganizationID: in.OrganizationID,
	}, nil
}

// GetAccountByName returns the account and its bcrypt hash.
func (s *Store) GetAccountByName(ctx context.Context, name string) (models.Account, string, error) {
	var a models.Account
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, account_name, display_name, account_type, organization_id, hashed_password
		 FROM accounts WHERE account_name = ?`, name,
	).Scan(&a.ID, &a.AccountName, &a.DisplayName, &a.AccountType, &a.OrganizationID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return a, "", fmt.Errorf("account %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return a, "", fmt.Errorf("query account: %w", err)
	}
	return a, hash, nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	var a models.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, account_name, display_name, account_type, organization_id
		 FROM accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.AccountName, &a.DisplayName, &a.AccountType, &a.OrganizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return a, fmt.Errorf("query account: %w", err)
	}
	return a, nil
}

// ListAccounts lists every account, or only those of organizationID when it
// is non-zero.
func (s *Store) ListAccounts(ctx context.Context, organizationID int64) ([]models.Account, error) {
	query := `SELECT id, account_name, display_name, account_type, organization_id FROM accounts`
	var args []any
	if organizationID != 0 {
		query += ` WHERE organization_id = ?`
		args = append(args, organizationID)
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.AccountName, &a.DisplayName, &a.AccountType, &a.OrganizationID); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) CountAccounts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}
