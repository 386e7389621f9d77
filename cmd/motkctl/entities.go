package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kidandcat/motk/internal/apiclient"
	"github.com/kidandcat/motk/internal/models"
	"github.com/kidandcat/motk/internal/views"
)

var resources = []string{"organizations", "projects", "shots", "assets", "tasks", "users"}

// table prints rows of a loaded list, or the list's banner when there is
// nothing to print.
func table[T any](ctx context.Context, out io.Writer, l *views.List[T], header string, row func(T) []string) error {
	if err := l.Load(ctx); err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return errNotLoggedIn
		}
		return errors.New(l.Message())
	}
	if l.Empty() {
		fmt.Fprintln(out, l.Message())
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range l.Rows() {
		fmt.Fprintln(tw, strings.Join(row(r), "\t"))
	}
	return tw.Flush()
}

func list[T, In any](ctx context.Context, out io.Writer, res views.Resource[T, In], header string, row func(T) []string) error {
	return table(ctx, out, views.NewList(res.Name, res.List), header, row)
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "list <" + strings.Join(resources, "|") + ">",
		Short:     "List a collection",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: resources,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.account(); err != nil {
				return err
			}
			ctx, out := cmd.Context(), cmd.OutOrStdout()

			switch args[0] {
			case "organizations":
				return list(ctx, out, views.Organizations(c.api), "ID\tNAME\tSTATUS", func(o models.Organization) []string {
					return []string{id(o.ID), o.Name, o.Status}
				})
			case "projects":
				return list(ctx, out, views.Projects(c.api), "ID\tNAME\tSTATUS\tSTART\tEND", projectRow)
			case "shots":
				return list(ctx, out, views.Shots(c.api), "ID\tNAME\tSTATUS\tPROJECT", func(s models.Shot) []string {
					return []string{id(s.ID), s.Name, s.Status, id(s.ProjectID)}
				})
			case "assets":
				return list(ctx, out, views.Assets(c.api), "ID\tNAME\tTYPE\tSTATUS\tPROJECT", func(a models.Asset) []string {
					return []string{id(a.ID), a.Name, a.AssetType, a.Status, id(a.ProjectID)}
				})
			case "tasks":
				return list(ctx, out, views.Tasks(c.api), "ID\tNAME\tSTATUS\tASSIGNEE\tDEPENDS ON", taskRow)
			case "users":
				return list(ctx, out, views.Users(c.api), "ID\tACCOUNT\tNAME\tTYPE", func(a models.Account) []string {
					return []string{id(a.ID), a.AccountName, a.DisplayName, a.AccountType}
				})
			}
			return fmt.Errorf("unknown resource %q", args[0])
		},
	}
}

func projectRow(p models.Project) []string {
	return []string{id(p.ID), p.Name, p.Status, deref(p.StartDate), deref(p.EndDate)}
}

func taskRow(t models.Task) []string {
	deps := make([]string, len(t.Dependencies))
	for i, d := range t.Dependencies {
		deps[i] = id(d)
	}
	assignee := id(t.AssignedToID)
	if t.AssignedTo != nil {
		assignee = t.AssignedTo.DisplayName
	}
	return []string{id(t.ID), t.Name, t.Status, assignee, strings.Join(deps, ",")}
}

// submit runs a creation form the way the dashboard does and reports the
// form's inline message on failure.
func submit[T, In any](ctx context.Context, f *views.Form[T, In], set func(in *In)) (T, error) {
	f.Update(set)
	out, err := f.Submit(ctx)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return out, errNotLoggedIn
		}
		if msg := f.Error(); msg != "" {
			return out, errors.New(msg)
		}
	}
	return out, err
}

func (c *cli) createCmd() *cobra.Command {
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an organization, project, shot or asset",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			_, err := c.account()
			return err
		},
	}

	var name, status, kind, start, end string
	var org, project int64
	optional := func(cmd *cobra.Command, flag, v string) *string {
		if !cmd.Flags().Changed(flag) {
			return nil
		}
		return &v
	}

	organization := &cobra.Command{
		Use:  "organization",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := views.NewForm(views.Organizations(c.api))
			o, err := submit(cmd.Context(), f, func(in *models.OrganizationCreate) {
				in.Name = name
				if status != "" {
					in.Status = status
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created organization %d: %s\n", o.ID, o.Name)
			return nil
		},
	}

	proj := &cobra.Command{
		Use:  "project",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := views.NewForm(views.Projects(c.api))
			p, err := submit(cmd.Context(), f, func(in *models.ProjectCreate) {
				in.Name, in.OrganizationID = name, org
				if status != "" {
					in.Status = status
				}
				in.StartDate = optional(cmd, "start", start)
				in.EndDate = optional(cmd, "end", end)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s\n", p.ID, p.Name)
			return nil
		},
	}
	proj.Flags().Int64Var(&org, "org", 0, "organization id")
	proj.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	proj.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")

	shot := &cobra.Command{
		Use:  "shot",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := views.NewForm(views.Shots(c.api))
			s, err := submit(cmd.Context(), f, func(in *models.ShotCreate) {
				in.Name, in.ProjectID = name, project
				if status != "" {
					in.Status = status
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created shot %d: %s\n", s.ID, s.Name)
			return nil
		},
	}
	shot.Flags().Int64Var(&project, "project", 0, "project id")

	asset := &cobra.Command{
		Use:  "asset",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := views.NewForm(views.Assets(c.api))
			a, err := submit(cmd.Context(), f, func(in *models.AssetCreate) {
				in.Name, in.AssetType, in.ProjectID = name, kind, project
				if status != "" {
					in.Status = status
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created asset %d: %s\n", a.ID, a.Name)
			return nil
		},
	}
	asset.Flags().Int64Var(&project, "project", 0, "project id")
	asset.Flags().StringVar(&kind, "type", "", "asset type")

	for _, sub := range []*cobra.Command{organization, proj, shot, asset} {
		sub.Short = "Create a " + sub.Use
		sub.Flags().StringVar(&name, "name", "", "name")
		sub.Flags().StringVar(&status, "status", "", "status (default depends on the entity)")
		create.AddCommand(sub)
	}
	return create
}

func (c *cli) projectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project <id>",
		Short: "Show a project with its shots, assets, members and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.account(); err != nil {
				return err
			}
			pid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || pid <= 0 {
				return fmt.Errorf("invalid project id %q", args[0])
			}

			d := views.NewProjectDetail(c.api, pid)
			if err := d.Load(cmd.Context()); err != nil {
				if errors.Is(err, apiclient.ErrUnauthorized) {
					return errNotLoggedIn
				}
				return errors.New(d.Message())
			}
			printProject(cmd.OutOrStdout(), d.Project(), d.Tasks())
			return nil
		},
	}
}

func printProject(out io.Writer, p models.ProjectDetails, tasks []models.Task) {
	fmt.Fprintf(out, "%s (%s)\n", p.Name, p.Status)
	if p.StartDate != nil || p.EndDate != nil {
		fmt.Fprintf(out, "%s to %s\n", deref(p.StartDate), deref(p.EndDate))
	}

	section := func(title string, n int, header string, rows func(w io.Writer)) {
		fmt.Fprintf(out, "\n%s\n", title)
		if n == 0 {
			fmt.Fprintf(out, "No %s found.\n", strings.ToLower(title))
			return
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, header)
		rows(tw)
		tw.Flush()
	}

	section("Shots", len(p.Shots), "ID\tNAME\tSTATUS", func(w io.Writer) {
		for _, s := range p.Shots {
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Name, s.Status)
		}
	})
	section("Assets", len(p.Assets), "ID\tNAME\tTYPE\tSTATUS", func(w io.Writer) {
		for _, a := range p.Assets {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID, a.Name, a.AssetType, a.Status)
		}
	})
	section("Members", len(p.Members), "ID\tNAME\tDEPARTMENT\tROLE", func(w io.Writer) {
		for _, m := range p.Members {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.DisplayName, m.Department, m.Role)
		}
	})
	section("Tasks", len(tasks), "ID\tNAME\tSTATUS\tASSIGNEE\tDEPENDS ON", func(w io.Writer) {
		for _, t := range tasks {
			fmt.Fprintln(w, strings.Join(taskRow(t), "\t"))
		}
	})
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
