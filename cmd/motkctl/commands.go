package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kidandcat/motk/internal/apiclient"
	"github.com/kidandcat/motk/internal/config"
	"github.com/kidandcat/motk/internal/models"
	"github.com/kidandcat/motk/internal/session"
)

var errNotLoggedIn = errors.New("not logged in, run motkctl login first")

type cli struct {
	apiURL    string
	tokenFile string

	api     *apiclient.Client
	session *session.Store
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	c := &cli{}

	root := &cobra.Command{
		Use:          "motkctl",
		Short:        "Manage MOTK organizations, projects, shots, assets and tasks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.connect(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&c.apiURL, "api", cfg.APIURL, "API base URL")
	root.PersistentFlags().StringVar(&c.tokenFile, "token-file", "", "token file (default: user config dir)")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.listCmd(),
		c.createCmd(),
		c.projectCmd(),
		c.shotCmd(),
	)
	return root
}

// connect builds the client and restores the stored session.
func (c *cli) connect(ctx context.Context, cfg config.Config) error {
	var tokens session.TokenStore
	if c.tokenFile != "" {
		tokens = &session.FileTokens{Path: c.tokenFile}
	} else {
		ft, err := session.DefaultFileTokens()
		if err != nil {
			return err
		}
		tokens = ft
	}

	hc := &http.Client{Timeout: cfg.HTTPTimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	c.api = apiclient.New(c.apiURL, tokens, apiclient.WithHTTPClient(hc))
	c.session = session.New(tokens, c.api)
	c.api.OnUnauthorized(c.session.HandleUnauthorized)

	c.session.Bootstrap(ctx)
	return nil
}

func (c *cli) account() (*models.Account, error) {
	st := c.session.State()
	if !st.Authenticated {
		return nil, errNotLoggedIn
	}
	return st.Account, nil
}

func (c *cli) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <account>",
		Short: "Log in and store the access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("MOTK_PASSWORD")
			}
			if password == "" {
				return errors.New("a password is required (--password or MOTK_PASSWORD)")
			}
			tok, err := c.api.Login(cmd.Context(), args[0], password)
			if err != nil {
				return errors.New(apiclient.Message(err, "login failed"))
			}
			if err := c.session.Login(cmd.Context(), tok.AccessToken); err != nil {
				return err
			}
			acc := c.session.State().Account
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", acc.DisplayName, acc.AccountType)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := c.account()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", acc.AccountName, acc.DisplayName, acc.AccountType)
			return nil
		},
	}
}

func (c *cli) shotCmd() *cobra.Command {
	shot := &cobra.Command{
		Use:   "shot",
		Short: "Edit or delete a shot",
	}

	var name, status string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the name or status of a shot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.shotID(args[0])
			if err != nil {
				return err
			}
			var upd models.ShotUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("status") {
				upd.Status = &status
			}
			if upd.Name == nil && upd.Status == nil {
				return errors.New("nothing to update, pass --name or --status")
			}
			s, err := c.api.UpdateShot(cmd.Context(), id, upd)
			if err != nil {
				return errors.New("failed to update shot: " + apiclient.Message(err, "request failed"))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shot %d: %s (%s)\n", s.ID, s.Name, s.Status)
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "new shot name")
	update.Flags().StringVar(&status, "status", "", "new status ("+strings.Join(models.ShotStatuses, ", ")+")")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a shot and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.shotID(args[0])
			if err != nil {
				return err
			}
			if err := c.api.DeleteShot(cmd.Context(), id); err != nil {
				return errors.New("failed to delete shot: " + apiclient.Message(err, "request failed"))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shot %d deleted\n", id)
			return nil
		},
	}

	shot.AddCommand(update, del)
	return shot
}

func (c *cli) shotID(arg string) (int64, error) {
	if _, err := c.account(); err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid shot id %q", arg)
	}
	return id, nil
}
