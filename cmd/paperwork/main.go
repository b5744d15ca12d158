package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/paperwork/paperwork/internal/config"
	"github.com/paperwork/paperwork/internal/domain/decision"
	"github.com/paperwork/paperwork/internal/domain/export"
	"github.com/paperwork/paperwork/internal/platform/assethost"
	"github.com/paperwork/paperwork/internal/platform/db"
	"github.com/paperwork/paperwork/internal/platform/middleware"
	"github.com/paperwork/paperwork/internal/platform/store"
	"github.com/paperwork/paperwork/internal/platform/telemetry"
	"github.com/paperwork/paperwork/pkg/pagination"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "paperwork",
		Short:        "Offline formpack exports",
		SilenceUsage: true,
	}
	root.AddCommand(decideCmd())
	root.AddCommand(recordsCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(assetsCmd())
	root.AddCommand(migrateCmd())
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ---------------------------------------------------------------------------
// decide
// ---------------------------------------------------------------------------

func decideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Resolve the doctor-letter questionnaire to a case",
		RunE: func(cmd *cobra.Command, args []string) error {
			answers := decision.Answers{}
			for _, k := range decision.QuestionKeys {
				if v, _ := cmd.Flags().GetString(k); v != "" {
					answers[k] = v
				}
			}
			return writeJSON(cmd.OutOrStdout(), decision.Resolve(answers))
		},
	}
	for _, k := range decision.QuestionKeys {
		cmd.Flags().String(k, "", "answer to "+k)
	}
	return cmd
}

// ---------------------------------------------------------------------------
// records
// ---------------------------------------------------------------------------

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage stored records",
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.exporter.ImportJSON(cmd.Context(), raw)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported record %s (%s).\n", rec.ID, rec.FormpackID)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records",
		RunE: func(cmd *cobra.Command, args []string) error {
			formpackID, _ := cmd.Flags().GetString("formpack")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			page := pagination.New(limit, offset)
			records, total, err := a.records.ListRecords(cmd.Context(), store.ListFilter{FormpackID: formpackID, Page: page})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-36s %-16s %-6s %-20s %s\n", "ID", "FORMPACK", "LOCALE", "UPDATED", "TITLE")
			for _, r := range records {
				fmt.Fprintf(out, "%-36s %-16s %-6s %-20s %s\n",
					r.ID, r.FormpackID, r.Locale, r.UpdatedAt.Format("2006-01-02 15:04:05"), r.Title)
			}
			resp := pagination.NewResponse(nil, total, page)
			fmt.Fprintf(out, "%d of %d record(s)", len(records), total)
			if resp.HasMore {
				fmt.Fprintf(out, ", next page: --offset %d", page.NextOffset())
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	listCmd.Flags().String("formpack", "", "Only records of this formpack")
	listCmd.Flags().Int("limit", pagination.DefaultLimit, "Page size")
	listCmd.Flags().Int("offset", 0, "Records to skip")

	cmd.AddCommand(importCmd, listCmd)
	return cmd
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "export json|docx|pdf",
		Short:     "Export a record into OUTPUT_DIR",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{export.FormatJSON, export.FormatDocx, export.FormatPdf},
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, _ := cmd.Flags().GetString("record")
			if recordID == "" {
				return fmt.Errorf("--record is required")
			}
			opts := export.Options{}
			opts.TemplateID, _ = cmd.Flags().GetString("template")
			opts.Locale, _ = cmd.Flags().GetString("locale")

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := runExport(cmd.Context(), a.exporter, args[0], recordID, opts)
			if err != nil {
				return err
			}
			path, err := writeArtefact(a.cfg.OutputDir, res)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().String("record", "", "Record id")
	cmd.Flags().String("template", export.DefaultTemplate, "DOCX template variant (a4 or wallet)")
	cmd.Flags().String("locale", "", "Export locale, defaults to the record's")
	return cmd
}

func runExport(ctx context.Context, svc *export.Service, format, recordID string, opts export.Options) (*export.Result, error) {
	switch format {
	case export.FormatJSON:
		return svc.ExportJSON(ctx, recordID, opts)
	case export.FormatDocx:
		res, err := svc.ExportDocx(ctx, recordID, opts)
		if err != nil {
			return nil, err
		}
		return &res.Result, nil
	case export.FormatPdf:
		return svc.ExportPdf(ctx, recordID, opts)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// writeArtefact writes res into dir. DOCX and PDF artefacts are JSON
// renderer inputs, so they get a ".json" suffix after their document name.
func writeArtefact(dir string, res *export.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := res.Filename
	if filepath.Ext(name) != ".json" {
		name += ".json"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, res.Body, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ---------------------------------------------------------------------------
// assets
// ---------------------------------------------------------------------------

func assetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Formpack asset tooling",
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve formpack assets over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			withStore, _ := cmd.Flags().GetBool("store")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			cache := middleware.DefaultCacheConfig()
			cache.MaxAge = cfg.AssetMaxAge
			limits := middleware.DefaultRateLimitConfig()
			limits.RequestsPerSecond = cfg.AssetRateLimit
			limits.BurstSize = int(2 * cfg.AssetRateLimit)
			hostCfg := assethost.Config{
				FS:        assetFS(cfg),
				Cache:     cache,
				RateLimit: limits,
				Logger:    logger,
				Telemetry: telemetry.NewProvider(telemetry.Config{ServiceName: cfg.AppID}, prometheus.NewRegistry()),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if withStore {
				conn, release, err := openConn(ctx, cfg)
				if err != nil {
					return err
				}
				defer release()
				hostCfg.DB = conn
			}
			return assethost.New(hostCfg).Run(ctx, ":"+cfg.AssetHostPort)
		},
	}
	serveCmd.Flags().Bool("store", false, "Report the record database on /health/db")
	cmd.AddCommand(serveCmd)
	return cmd
}

// ---------------------------------------------------------------------------
// migrate
// ---------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect and apply store migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *db.Migrator) error {
				count, err := m.Up(cmd.Context())
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *db.Migrator) error {
				statuses, err := m.Status(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					status, appliedAt := "pending", ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	})
	return cmd
}

// openConn opens the configured SQL backend. The memory store has none.
func openConn(ctx context.Context, cfg *config.Config) (*sqlx.DB, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath, db.WithMkdirAll())
		if err != nil {
			return nil, nil, err
		}
		return conn, func() { _ = conn.Close() }, nil
	case config.StorePostgres:
		conn, closePool, err := db.OpenPostgres(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}
		return conn, func() {
			_ = conn.Close()
			closePool()
		}, nil
	}
	return nil, nil, fmt.Errorf("STORE_DRIVER %q has no database", cfg.StoreDriver)
}

func withMigrator(ctx context.Context, fn func(*db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	conn, release, err := openConn(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	fsys, err := store.Migrations(conn.DriverName())
	if err != nil {
		return err
	}
	return fn(db.NewMigrator(conn, fsys))
}
