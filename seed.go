package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kidandcat/motk/internal/auth"
	"github.com/kidandcat/motk/internal/config"
	"github.com/kidandcat/motk/internal/db"
	"github.com/kidandcat/motk/internal/logging"
	"github.com/kidandcat/motk/internal/models"
)

// seedAdmin creates the configured administrator and its organization when
// the database has no accounts yet. It does nothing when no admin is
// configured or any account exists.
func seedAdmin(ctx context.Context, store *db.Store, seed config.SeedConfig) error {
	if seed.AdminUser == "" || seed.AdminPassword == "" {
		return nil
	}
	n, err := store.CountAccounts(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	org, err := store.GetOrganizationByName(ctx, seed.Organization)
	if errors.Is(err, db.ErrNotFound) {
		org, err = store.CreateOrganization(ctx, models.OrganizationCreate{Name: seed.Organization, Status: "active"})
	}
	if err != nil {
		return fmt.Errorf("seed organization: %w", err)
	}

	hash, err := auth.HashPassword(seed.AdminPassword)
	if err != nil {
		return err
	}
	acc, err := store.CreateAccount(ctx, models.AccountCreate{
		AccountName:    seed.AdminUser,
		DisplayName:    seed.AdminUser,
		AccountType:    "admin",
		OrganizationID: org.ID,
	}, hash)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logging.Logger.Infof("Event ID: ADMIN_SEEDED, Description: created admin %q in organization %q", acc.AccountName, org.Name)
	return nil
}
