package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"leadscore/internal/config"
	"leadscore/internal/leads"
	"leadscore/internal/report"
	"leadscore/internal/sink"
	"leadscore/internal/source"
)

func main() {
	config.LoadDotEnv()
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	overrides  config.Config
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "leadscore",
		Short:         "Clean, deduplicate and score buyer leads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "JSON config file (vocabulary, column pairs, paths)")
	pf.StringVar(&opts.overrides.Input, "input", "", "Input JSON or JSON Lines file")
	pf.IntVar(&opts.overrides.Limit, "limit", 0, "Optional limit for testing (0 = all rows)")
	pf.StringVar(&opts.overrides.LogLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newScoreCmd(opts), newProfileCmd(opts))
	return root
}

func newScoreCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Run the full pipeline and write CSV, SQLite and optionally Postgres outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve()
			if err != nil {
				return err
			}
			return runScore(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.overrides.OutDir, "out-dir", "", "Output directory")
	f.StringVar(&opts.overrides.CSVPath, "csv", "", "CSV output path (default <out-dir>/cleaned_and_scored_buyer_leads.csv)")
	f.StringVar(&opts.overrides.SQLitePath, "sqlite", "", "SQLite output path")
	f.StringVar(&opts.overrides.ProfilePath, "profile", "", "Profile markdown output path")
	f.StringVar(&opts.overrides.PostgresDSN, "postgres", "", "Postgres DSN; when set the table is also written there")
	f.StringVar(&opts.overrides.Table, "table", "", "SQL table name")
	f.BoolVar(&opts.overrides.SkipSQLite, "no-sqlite", false, "Do not write the SQLite database")
	f.BoolVar(&opts.overrides.SkipProfile, "no-profile", false, "Do not write the profile report")
	return cmd
}

func newProfileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Run the pipeline and print the profile report without writing outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve()
			if err != nil {
				return err
			}
			in, err := process(cfg, cfg.Logger())
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), report.Build(in))
			return err
		},
	}
}

// resolve layers config file, environment and flags, in increasing precedence.
func (o *options) resolve() (config.Config, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	f := o.overrides
	if f.OutDir != "" && f.OutDir != cfg.OutDir {
		cfg.OutDir = f.OutDir
		cfg.CSVPath, cfg.SQLitePath, cfg.ProfilePath = "", "", ""
		cfg.ApplyDefaults()
	}
	setString(&cfg.Input, f.Input)
	setString(&cfg.CSVPath, f.CSVPath)
	setString(&cfg.SQLitePath, f.SQLitePath)
	setString(&cfg.ProfilePath, f.ProfilePath)
	setString(&cfg.PostgresDSN, f.PostgresDSN)
	setString(&cfg.Table, f.Table)
	setString(&cfg.LogLevel, f.LogLevel)
	if f.Limit > 0 {
		cfg.Limit = f.Limit
	}
	cfg.SkipSQLite = cfg.SkipSQLite || f.SkipSQLite
	cfg.SkipProfile = cfg.SkipProfile || f.SkipProfile
	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func process(cfg config.Config, logger *slog.Logger) (report.Input, error) {
	ds, st, err := source.LoadFile(cfg.Input, source.Options{Limit: cfg.Limit, Logger: logger})
	if err != nil {
		return report.Input{}, fmt.Errorf("load input: %w", err)
	}
	logger.Info("input loaded", "path", cfg.Input, "rows", ds.Len(), "invalid", st.InvalidRows, "repaired", st.RepairedRows)

	p := leads.Pipeline{Pairs: cfg.Pairs, Targets: cfg.Targets, Logger: logger}
	scored, rep := p.Run(ds)
	return report.Input{Load: st, Run: rep, Scored: scored}, nil
}

func runScore(ctx context.Context, out io.Writer, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger()
	in, err := process(cfg, logger)
	if err != nil {
		return err
	}

	if err := sink.WriteCSV(cfg.CSVPath, in.Scored); err != nil {
		return err
	}
	if !cfg.SkipSQLite {
		if err := sink.WriteSQLite(cfg.SQLitePath, cfg.Table, in.Scored); err != nil {
			return fmt.Errorf("write sqlite: %w", err)
		}
	}
	if cfg.PostgresDSN != "" {
		if err := sink.WritePostgres(ctx, cfg.PostgresDSN, cfg.Table, in.Scored, logger); err != nil {
			return fmt.Errorf("write postgres: %w", err)
		}
	}
	if !cfg.SkipProfile {
		if err := report.Write(cfg.ProfilePath, in); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Rows read: %d\n", in.Load.SourceRows)
	fmt.Fprintf(out, "Rows written (cleaned): %d\n", in.Scored.Len())
	fmt.Fprintf(out, "Duplicates dropped: %d\n", in.Run.DroppedRows)
	fmt.Fprintf(out, "Columns written: %d\n", len(in.Scored.Columns))
	fmt.Fprintf(out, "CSV: %s\n", cfg.CSVPath)
	if !cfg.SkipSQLite {
		fmt.Fprintf(out, "SQLite: %s\n", cfg.SQLitePath)
	}
	if cfg.PostgresDSN != "" {
		fmt.Fprintf(out, "Postgres table: %s\n", cfg.Table)
	}
	if !cfg.SkipProfile {
		fmt.Fprintf(out, "Profile: %s\n", cfg.ProfilePath)
	}
	return nil
}
