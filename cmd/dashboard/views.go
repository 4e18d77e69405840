package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/allcures/dashboard/internal/dashboard"
	"github.com/allcures/dashboard/internal/domain/appointments"
	"github.com/allcures/dashboard/internal/domain/doctors"
	"github.com/allcures/dashboard/internal/domain/ledger"
	"github.com/allcures/dashboard/internal/domain/livemeetings"
	"github.com/allcures/dashboard/internal/domain/overview"
	"github.com/allcures/dashboard/internal/platform/session"
)

// viewEnv is what a one-shot view command needs once logged in.
type viewEnv struct {
	ctx       context.Context
	workspace *dashboard.Workspace
	out       io.Writer
}

// addCredentialFlags registers --email/--password. Blank flags fall back
// to DASHBOARD_EMAIL and DASHBOARD_PASSWORD.
func addCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().String("email", "", "Dashboard login email (default $DASHBOARD_EMAIL)")
	cmd.Flags().String("password", "", "Dashboard login password (default $DASHBOARD_PASSWORD)")
}

func credentials(cmd *cobra.Command) session.Credentials {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if email == "" {
		email = os.Getenv("DASHBOARD_EMAIL")
	}
	if password == "" {
		password = os.Getenv("DASHBOARD_PASSWORD")
	}
	return session.Credentials{Email: email, Password: password}
}

// withWorkspace logs in through a session gate and hands a fresh workspace
// to fn. The CLI keeps the server's rule: nothing is fetched before the
// gate is authenticated.
func withWorkspace(cmd *cobra.Command, fn func(env viewEnv) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Tables go to stdout, so logs go to stderr.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.WarnLevel)

	data, authClient, err := clients(cfg, logger)
	if err != nil {
		return err
	}
	return runView(cmd.Context(), credentials(cmd), session.NewRemoteAuthenticator(authClient), queriesFor(cfg, data), cmd.OutOrStdout(), logger, fn)
}

func runView(ctx context.Context, creds session.Credentials, auth session.Authenticator, q dashboard.Queries, out io.Writer, logger zerolog.Logger, fn func(env viewEnv) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	gate := session.NewGate(auth, logger)
	if err := gate.Login(ctx, creds); err != nil {
		if msg := gate.Status().Error; msg != "" {
			return errors.New(msg)
		}
		return err
	}
	defer gate.Logout()

	ws := dashboard.NewWorkspace(q, logger)
	defer ws.Close()
	return fn(viewEnv{ctx: ctx, workspace: ws, out: out})
}

func overviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Print appointment and doctor KPIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start-date")
			end, _ := cmd.Flags().GetString("end-date")
			return withWorkspace(cmd, func(env viewEnv) error {
				s := env.workspace.Overview
				s.Summary.Ensure(env.ctx)
				if start != "" || end != "" {
					s.Analytics.ApplyRange(env.ctx, start, end)
				} else {
					s.Analytics.Ensure(env.ctx)
				}
				return printOverview(env.out, s.Present())
			})
		},
	}
	addCredentialFlags(cmd)
	cmd.Flags().String("start-date", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().String("end-date", "", "Range end (YYYY-MM-DD)")
	return cmd
}

func appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "Print one page of appointments for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			var nav appointments.Navigation
			if date, _ := cmd.Flags().GetString("date"); date != "" {
				nav.Date = &date
			}
			if page, _ := cmd.Flags().GetInt("page"); page > 0 {
				nav.Page = &page
			}
			if cmd.Flags().Changed("status") {
				status, _ := cmd.Flags().GetInt("status")
				nav.Status = &status
			}
			if cmd.Flags().Changed("doc-id") {
				docID, _ := cmd.Flags().GetInt("doc-id")
				nav.DocID = &docID
			}
			return withWorkspace(cmd, func(env viewEnv) error {
				env.workspace.Appointments.List.Navigate(env.ctx, nav)
				return printAppointments(env.out, env.workspace.Appointments.List.Present())
			})
		},
	}
	addCredentialFlags(cmd)
	cmd.Flags().String("date", "", "Appointment date (YYYY-MM-DD, default today)")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("status", 0, "Status code filter")
	cmd.Flags().Int("doc-id", 0, "Doctor id filter")
	return cmd
}

func doctorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "Print one page of the doctor directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			medType, _ := cmd.Flags().GetString("med-type")
			medTypeID, err := doctors.ParseMedicineType(medType)
			if err != nil {
				return err
			}
			page, _ := cmd.Flags().GetInt("page")
			return withWorkspace(cmd, func(env viewEnv) error {
				env.workspace.Doctors.List.Navigate(env.ctx, doctors.Navigation{Page: &page, MedTypeID: &medTypeID})
				return printDoctors(env.out, env.workspace.Doctors.List.Present())
			})
		},
	}
	addCredentialFlags(cmd)
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().String("med-type", "all", "Medicine type name or id")
	return cmd
}

func liveMeetingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live-meetings",
		Short: "Print the live meeting event feed, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(env viewEnv) error {
				env.workspace.LiveMeetings.Refresh(env.ctx)
				return printLiveMeetings(env.out, env.workspace.LiveMeetings.Present())
			})
		},
	}
	addCredentialFlags(cmd)
	return cmd
}

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Print the transaction ledger and revenue history",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := ledger.Load()
			if err != nil {
				return err
			}
			return withWorkspace(cmd, func(env viewEnv) error {
				return printLedger(env.out, l)
			})
		},
	}
	addCredentialFlags(cmd)
	return cmd
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func row(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func printOverview(out io.Writer, p overview.Presentation) error {
	fmt.Fprintf(out, "Range: %s\n", p.RangeLabel)
	if p.Summary.Error != "" {
		fmt.Fprintln(out, p.Summary.Error)
	}
	if p.Analytics.Error != "" {
		fmt.Fprintln(out, p.Analytics.Error)
	}

	w := table(out)
	row(w, "METRIC", "VALUE", "NOTE")
	for _, m := range append(p.Highlights, p.Metrics...) {
		row(w, m.Label, m.Value, m.Hint)
	}
	row(w, "", "", "")
	row(w, "STATUS", "COUNT", "SHARE")
	for _, s := range p.StatusMix {
		row(w, s.Label, s.Count, s.Percentage)
	}
	row(w, "", "", "")
	row(w, "MEDICINE TYPE", "SIGNED", "")
	for _, b := range p.Coverage.Breakdown {
		row(w, b.MedicineType, b.Total, "")
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if p.Coverage.Empty != "" {
		fmt.Fprintln(out, p.Coverage.Empty)
	}
	return nil
}

func printAppointments(out io.Writer, p appointments.ListPresentation) error {
	if p.Error != "" {
		fmt.Fprintln(out, p.Error)
	}
	w := table(out)
	row(w, "ID", "DOCTOR", "PATIENT", "DATE", "TIME", "FEE", "PAYMENT", "STATUS")
	for _, r := range p.Rows {
		row(w, fmt.Sprint(r.ID), r.Doctor, r.Patient, r.Date, r.Time, r.Fee, r.Payment, r.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%s)\n", p.Pager.Label, p.Date)
	return nil
}

func printDoctors(out io.Writer, p doctors.ListPresentation) error {
	if p.Error != "" {
		fmt.Fprintln(out, p.Error)
	}
	w := table(out)
	row(w, "ID", "NAME", "SPECIALTY", "LOCATION", "AVAILABILITY")
	for _, r := range p.Rows {
		row(w, r.ID, r.Name, r.Specialty, r.Location, r.Availability)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s, medicine type %s\n", p.Pager.Label, p.MedicineType)
	return nil
}

func printLiveMeetings(out io.Writer, p livemeetings.Presentation) error {
	switch {
	case p.Error != "":
		fmt.Fprintln(out, p.Error)
	case p.Empty != "":
		fmt.Fprintln(out, p.Empty)
		return nil
	}
	w := table(out)
	row(w, "ID", "EVENT", "ROLE", "PARTICIPANT", "MEETING", "DATE", "TIME", "DURATION", "INFO")
	for _, r := range p.Rows {
		row(w, r.ID, r.Event, r.Role, r.Participant, r.Meeting, r.Date, r.Time, r.Duration, r.Info)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if p.LastUpdated != "" {
		fmt.Fprintln(out, p.LastUpdated)
	}
	return nil
}

func printLedger(out io.Writer, l *ledger.Ledger) error {
	w := table(out)
	row(w, "ID", "REFERENCE", "PATIENT", "METHOD", "PROCESSED", "AMOUNT", "STATUS")
	for _, t := range l.TransactionRows() {
		row(w, t.ID, t.Reference, t.Patient, t.Method, t.Processed, t.Amount, t.Status)
	}
	row(w, "", "", "", "", "", "", "")

	rev := l.RevenuePresentation()
	row(w, "MONTH", "REVENUE", "CHANGE")
	for _, r := range rev.History {
		row(w, r.Month, r.Revenue, r.Change)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Current revenue %s, best month %s, latest change %s, conversion %s\n",
		rev.CurrentRevenue, rev.BestMonth, rev.LatestChange, rev.ConversionRate)
	return nil
}
