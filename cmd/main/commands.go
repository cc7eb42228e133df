package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Houeta/staff-directory/internal/auth"
	"github.com/Houeta/staff-directory/internal/availability"
	"github.com/Houeta/staff-directory/internal/models"
	"github.com/Houeta/staff-directory/internal/normalize"
	"github.com/Houeta/staff-directory/internal/server"
	"github.com/Houeta/staff-directory/internal/services/directory"
	"github.com/Houeta/staff-directory/internal/services/session"
	"github.com/spf13/cobra"
)

type appFunc func() *application

func newLoginCmd(app appFunc) *cobra.Command {
	var creds auth.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and cache your record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if creds.Password == "" {
				creds.Password = os.Getenv("STAFFDIR_PASSWORD")
			}
			user, err := app().session.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n",
				models.EmployeeFromRecord(user, nil).DisplayName(), user.ID())
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password (defaults to $STAFFDIR_PASSWORD)")

	return cmd
}

func newSignupCmd(app appFunc) *cobra.Command {
	var req auth.Signup

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("STAFFDIR_PASSWORD")
			}
			if err := app().session.Signup(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created. Run `staffdir login` to continue.")
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (defaults to $STAFFDIR_PASSWORD)")

	return cmd
}

func newLogoutCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app().session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the cached record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := app().session.Resume(cmd.Context())
			if err != nil {
				return err
			}
			if err = printRecord(cmd.OutOrStdout(), user); err != nil {
				return err
			}

			for _, facet := range []models.Facet{models.FacetProfile, models.FacetDetails} {
				last, ok, err := app().session.LastConfirmed(cmd.Context(), facet)
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s last saved %s\n", facet, last.Local().Format(time.DateTime))
				}
			}
			return nil
		},
	}
}

func newListCmd(app appFunc) *cobra.Command {
	var (
		filter    availability.Filter
		rangeFlag string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees matching the filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if filter.Range, err = availability.ParseRange(rangeFlag); err != nil {
				return err
			}

			rows, err := app().directory.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printRows(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVar(&filter.Search, "search", "", "match name, skills, location or role")
	cmd.Flags().StringVar(&filter.Status, "status", availability.StatusAll,
		"availability label: All, Available, Partially Available, Occupied")
	cmd.Flags().StringVar(&rangeFlag, "range", "any", "any, today, week or month")
	cmd.Flags().BoolVar(&filter.Fuzzy, "fuzzy", false, "match search terms as subsequences")

	return cmd
}

func newProfileCmd(app appFunc) *cobra.Command {
	var form session.ProfileForm

	save := &cobra.Command{
		Use:   "save",
		Short: "Save your profile; flags not given keep their cached value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			current := app().session.Current()
			if current.ID() == "" {
				return session.ErrNotLoggedIn
			}

			prefill(cmd, "name", &form.Name, current.String(models.KeyName))
			prefill(cmd, "empid", &form.EmpID, current.ID())
			prefill(cmd, "email", &form.Email, current.String(models.KeyEmail))
			prefill(cmd, "role", &form.Role, current.String(models.KeyRole))
			prefill(cmd, "other-role", &form.OtherRole, current.String(models.KeyOtherRole, models.KeyOtherRoleSnake))
			prefill(cmd, "cluster", &form.Cluster, current.String(models.KeyCluster))
			prefill(cmd, "location", &form.Location, current.String(models.KeyLocation))

			merged, err := app().session.SaveProfile(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated and confirmed on server.")
			return printRecord(cmd.OutOrStdout(), merged)
		},
	}
	save.Flags().StringVar(&form.Name, "name", "", "full name")
	save.Flags().StringVar(&form.EmpID, "empid", "", "employee id")
	save.Flags().StringVar(&form.Email, "email", "", "email address")
	save.Flags().StringVar(&form.Role, "role", "", "role, or Other together with --other-role")
	save.Flags().StringVar(&form.OtherRole, "other-role", "", "role name when --role is Other")
	save.Flags().StringVar(&form.Cluster, "cluster", "", "one of: "+strings.Join(session.Clusters, ", "))
	save.Flags().StringVar(&form.Location, "location", "", "work location")

	cmd := &cobra.Command{Use: "profile", Short: "Manage your profile"}
	cmd.AddCommand(save)
	return cmd
}

func newDetailsCmd(app appFunc) *cobra.Command {
	var (
		form     session.DetailsForm
		previous []string
	)

	save := &cobra.Command{
		Use:   "save",
		Short: "Save your availability details; flags not given keep their cached value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			current := app().session.Current()
			if current.ID() == "" {
				return session.ErrNotLoggedIn
			}

			form.PreviousProjects = strings.Join(previous, "\n")
			prefillDetails(cmd, &form, current)

			merged, err := app().session.SaveDetails(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Details saved and confirmed on server.")
			return printRecord(cmd.OutOrStdout(), merged)
		},
	}
	save.Flags().StringVar(&form.CurrentProject, "project", "", "current project")
	save.Flags().BoolVar(&form.NoCurrentProject, "no-project", false, "no current project; implies Available")
	save.Flags().StringVar(&form.Availability, "availability", "", "Available, Partially Available or Unavailable")
	save.Flags().StringVar(&form.HoursAvailable, "hours", "", "hours per day when partially available")
	save.Flags().StringVar(&form.FromDate, "from", "", "first day of the window, YYYY-MM-DD")
	save.Flags().StringVar(&form.ToDate, "to", "", "last day of the window, YYYY-MM-DD")
	save.Flags().StringSliceVar(&form.Skills, "skills", nil, "current skills")
	save.Flags().StringVar(&form.Interests, "interests", "", "comma separated interests")
	save.Flags().StringArrayVar(&previous, "previous", nil, "a previous project; repeat for more")

	cmd := &cobra.Command{Use: "details", Short: "Manage your availability details"}
	cmd.AddCommand(save)
	return cmd
}

func newHydrateCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:       "hydrate [profile|details]",
		Short:     "Fill empty cached fields from the server",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(models.FacetProfile), string(models.FacetDetails)},
		RunE: func(cmd *cobra.Command, args []string) error {
			facets := []models.Facet{models.FacetProfile, models.FacetDetails}
			if len(args) == 1 {
				facets = []models.Facet{models.Facet(args[0])}
			}

			for _, facet := range facets {
				filled, err := app().session.Hydrate(cmd.Context(), facet)
				if err != nil {
					return err
				}
				sort.Strings(filled)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: filled %d field(s) %s\n", facet, len(filled), strings.Join(filled, ", "))
			}
			return nil
		},
	}
}

func newMonitorCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Serve /metrics and /healthz until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			return server.StartMonitoringServer(cmd.Context(), a.log, a.reg, a.cache,
				a.cfg.Monitoring.Port, a.cfg.API.BaseURL)
		},
	}
}

// prefill keeps the cached value for a flag the user did not set.
func prefill(cmd *cobra.Command, flag string, target *string, cached string) {
	if !cmd.Flags().Changed(flag) {
		*target = cached
	}
}

// prefillDetails fills every details flag the user did not set from the cached record,
// so a save only changes what was typed.
func prefillDetails(cmd *cobra.Command, form *session.DetailsForm, current models.Record) {
	prefill(cmd, "project", &form.CurrentProject, current.String(models.KeyCurrentProject, models.KeyCurrentProjectCC))
	prefill(cmd, "availability", &form.Availability, current.String(models.KeyAvailability))
	prefill(cmd, "hours", &form.HoursAvailable, current.String(models.KeyHours, models.KeyHoursCC))
	prefill(cmd, "from", &form.FromDate, current.String(models.KeyFromDate, models.KeyFromDateCC))
	prefill(cmd, "to", &form.ToDate, current.String(models.KeyToDate, models.KeyToDateCC))

	if !cmd.Flags().Changed("skills") {
		form.Skills = cachedList(current, models.KeySkills, models.KeySkillsCC)
	}
	if !cmd.Flags().Changed("interests") {
		form.Interests = strings.Join(cachedList(current, models.KeyInterests), ", ")
	}
	if !cmd.Flags().Changed("previous") {
		form.PreviousProjects = strings.Join(cachedList(current, models.KeyPrevious, models.KeyPreviousCC), "\n")
	}
}

func cachedList(current models.Record, aliases ...string) []string {
	raw, ok := current.Lookup(aliases...)
	if !ok {
		return nil
	}
	return normalize.List(raw)
}

func printRecord(w io.Writer, rec models.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to print record: %w", err)
	}
	return nil
}

func printRows(w io.Writer, rows []directory.Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No employees match the filters.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROLE\tLOCATION\tAVAILABILITY\tHOURS\tFROM\tTO\tSKILLS\tUPDATED")
	for _, row := range rows {
		emp := row.Employee
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			emp.ID, emp.DisplayName(), emp.Role, emp.Location, emp.Status,
			row.Hours, row.From, row.To, strings.Join(emp.Skills, ", "), row.Age.Label)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to print directory: %w", err)
	}
	return nil
}
