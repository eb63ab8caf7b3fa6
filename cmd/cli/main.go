package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/infrastructure/auth"
	"github.com/iho/caseledger/internal/infrastructure/logger"
	"github.com/iho/caseledger/internal/infrastructure/postgres"
)

type rootOptions struct {
	baseURL string
	token   string
	timeout time.Duration
}

func (o *rootOptions) client() *apiClient {
	return newAPIClient(o.baseURL, o.token, o.timeout)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "caseledger-cli",
		Short:         "caseledger CLI tool",
		Long:          `A command line interface for the caseledger API and database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("CASELEDGER_URL", "http://localhost:8080"), "Base URL of the caseledger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("CASELEDGER_TOKEN"), "Bearer token for the API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(
		reportCmd(opts),
		caseCmd(opts),
		backfillCmd(opts),
		migrateCmd(),
		tokenCmd(),
	)

	return rootCmd
}

func reportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Period reports",
	}

	var bestEffort bool
	cmd.PersistentFlags().BoolVar(&bestEffort, "best-effort", false, "Skip cases with invalid stored data")

	withBestEffort := func(q url.Values) url.Values {
		if bestEffort {
			q.Set("bestEffort", "1")
		}
		return q
	}

	monthly := &cobra.Command{
		Use:   "monthly YEAR MONTH",
		Short: "Monthly cash flow, distribution and closing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := yearMonthQuery(args)
			if err != nil {
				return err
			}
			return opts.client().getJSON(cmd.OutOrStdout(), http.MethodGet, "/api/v1/reports/monthly", withBestEffort(q))
		},
	}

	daily := &cobra.Command{
		Use:   "daily [YYYY-MM-DD]",
		Short: "Daily report, today when no date is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if len(args) == 1 {
				q.Set("date", args[0])
			}
			return opts.client().getJSON(cmd.OutOrStdout(), http.MethodGet, "/api/v1/reports/daily", withBestEffort(q))
		},
	}

	pending := &cobra.Command{
		Use:   "pending YEAR MONTH",
		Short: "Cases still owing A or B at the end of the month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := yearMonthQuery(args)
			if err != nil {
				return err
			}
			return opts.client().getJSON(cmd.OutOrStdout(), http.MethodGet, "/api/v1/reports/pending", withBestEffort(q))
		},
	}

	var output string
	export := &cobra.Command{
		Use:   "export YEAR MONTH",
		Short: "Download the monthly report as a spreadsheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := yearMonthQuery(args)
			if err != nil {
				return err
			}
			body, _, err := opts.client().do(http.MethodGet, "/api/v1/reports/monthly/export", withBestEffort(q))
			if err != nil {
				return err
			}
			target := output
			if target == "" {
				month, _ := strconv.Atoi(q.Get("month"))
				target = fmt.Sprintf("report-monthly-%s-%02d.xlsx", q.Get("year"), month)
			}
			if err := os.WriteFile(target, body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", target, len(body))
			return nil
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "Output file")

	cmd.AddCommand(monthly, daily, pending, export)
	return cmd
}

func caseCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Case operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "summary ID",
		Short: "Show a case with its allocation and per-payment waterfall",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.client().getJSON(cmd.OutOrStdout(), http.MethodGet, "/api/v1/cases/"+url.PathEscape(args[0])+"/summary", nil)
		},
	})

	return cmd
}

func backfillCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Data maintenance",
	}

	var dryRun bool
	legacy := &cobra.Command{
		Use:   "legacy-manual",
		Short: "Mark cases that rely on the fixed-amount fallback as manual",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if dryRun {
				q.Set("dryRun", "1")
			}
			return opts.client().getJSON(cmd.OutOrStdout(), http.MethodPost, "/api/v1/admin/backfill/legacy-manual", q)
		},
	}
	legacy.Flags().BoolVar(&dryRun, "dry-run", false, "Report the cases without changing them")

	cmd.AddCommand(legacy)
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	cmd.PersistentFlags().StringVar(&path, "path", envOr("MIGRATIONS_PATH", "migrations"), "Migrations directory")

	migrator := func() (*postgres.Migrator, error) {
		if databaseURL == "" {
			return nil, fmt.Errorf("--database-url or DATABASE_URL is required")
		}
		log := logger.NewWithWriter(logger.Config{Level: "info", Format: "console"}, os.Stderr)
		return postgres.NewMigrator(databaseURL, path, log), nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				return m.Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				return m.Down()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"version": version, "dirty": dirty})
			},
		},
	)

	return cmd
}

func tokenCmd() *cobra.Command {
	var secret, role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token SUBJECT",
		Short: "Issue an API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(args[0], domain.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleViewer), "admin, operator or viewer")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func yearMonthQuery(args []string) (url.Values, error) {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid year %q", args[0])
	}
	month, err := strconv.Atoi(args[1])
	if err != nil || month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %q", args[1])
	}
	return url.Values{
		"year":  {strconv.Itoa(year)},
		"month": {strconv.Itoa(month)},
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
