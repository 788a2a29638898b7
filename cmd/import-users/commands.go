package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mohammadpnp/csv-user-import/internal/auth"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	"github.com/mohammadpnp/csv-user-import/internal/bootstrap"
	"github.com/mohammadpnp/csv-user-import/internal/config"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/file"
	"github.com/mohammadpnp/csv-user-import/internal/interfaces/notice"
	"github.com/mohammadpnp/csv-user-import/internal/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

type importOptions struct {
	file  string
	roles []string
}

type tokenOptions struct {
	subject string
	ttl     time.Duration
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "import-users",
		Short:         "Import user accounts from a CSV file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", ".", "Directory containing an optional config.yaml")

	cmd.AddCommand(newRunCmd(&opts), newTokenCmd(&opts))
	return cmd
}

func newRunCmd(root *rootOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create one account per CSV row (first name, last name, email)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			return runImport(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "CSV path, relative to import.base_dir, or s3://bucket/key (required)")
	cmd.Flags().StringArrayVar(&opts.roles, "role", nil, "Role to grant, repeatable: anonymous, administrator (required)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func newTokenCmd(root *rootOptions) *cobra.Command {
	var opts tokenOptions

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an administrator bearer token signed with auth.jwt_secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			return printToken(cmd.OutOrStdout(), cfg.Auth.JWTSecret, opts)
		},
	}

	cmd.Flags().StringVar(&opts.subject, "subject", "cli", "Token subject")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", time.Hour, "Token validity")

	return cmd
}

func runImport(cmd *cobra.Command, cfg *config.Config, opts importOptions) error {
	ctx := cmd.Context()
	logger := logging.SetupWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer stores.Close()

	importLock, closeLock, err := bootstrap.NewImportLock(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("import lock: %w", err)
	}
	defer closeLock()

	source, err := bootstrap.NewSources(ctx, cfg, false)
	if err != nil {
		return err
	}

	rc, err := source.Open(ctx, opts.file)
	if err != nil {
		return err
	}

	importUsers := bootstrap.NewImportUseCase(cfg, stores.DB, stores.Pool, importLock)
	out, err := importUsers.Execute(ctx, app.ImportUsersFromCSVInput{
		FileName: file.FileName(opts.file),
		Source:   rc,
		Roles:    rolesFromFlags(opts.roles),
	})
	if err != nil && !errors.Is(err, app.ErrReadImportSource) {
		if errors.Is(err, domain.ErrNoRolesSelected) {
			return errors.New(notice.RolesRequired)
		}
		return err
	}

	writeReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), out)
	return err
}

// writeReport prints the summary notice to out and one line per failed row
// to errOut.
func writeReport(out, errOut io.Writer, result app.ImportUsersFromCSVOutput) {
	for _, line := range notice.Failures(result.Summary.Failures) {
		fmt.Fprintln(errOut, line)
	}
	fmt.Fprintln(out, notice.Imported(result.ImportedCount()))
	if result.RunID != "" {
		fmt.Fprintf(out, "run: %s (processed %d, skipped %d, failed %d)\n",
			result.RunID,
			result.Summary.ProcessedCount,
			result.Summary.SkippedCount,
			result.Summary.FailedCount,
		)
	}
}

func printToken(w io.Writer, secret string, opts tokenOptions) error {
	if secret == "" {
		return errors.New("auth.jwt_secret is not set")
	}
	token, err := auth.IssueToken(opts.subject, []domain.RoleID{domain.RoleAdministrator, domain.RoleAuthenticated}, []byte(secret), opts.ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

func rolesFromFlags(values []string) []domain.RoleID {
	roles := make([]domain.RoleID, 0, len(values))
	for _, v := range values {
		roles = append(roles, domain.RoleID(v))
	}
	return roles
}
