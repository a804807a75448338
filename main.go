package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tinuva/kodi-repo/internal/adapters/gitcli"
	"github.com/tinuva/kodi-repo/internal/buildinfo"
	"github.com/tinuva/kodi-repo/internal/config"
	"github.com/tinuva/kodi-repo/internal/diagnostics"
	"github.com/tinuva/kodi-repo/internal/domain"
	"github.com/tinuva/kodi-repo/internal/index"
	"github.com/tinuva/kodi-repo/internal/reconcile"
)

func main() {
	logLevel := parseLogLevel(os.Getenv("KODI_REPO_LOG_LEVEL"))
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if err := newRootCmd(logger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	logger *slog.Logger
	root   string
}

// services wires the release pipeline for the configured repository root.
// Every verb that touches git goes through here so a missing git binary
// fails up front with one clear message.
func (a *app) services() (*reconcile.Reconciler, *index.Builder, *gitcli.Client, error) {
	if report := diagnostics.DetectDependencies(); !report.AllRequiredPresent {
		return nil, nil, nil, errors.New("git binary not found on PATH")
	}

	cfg, err := config.Load(a.root)
	if err != nil {
		return nil, nil, nil, err
	}

	git := gitcli.New()
	rec := reconcile.New(a.root, git, cfg, a.logger)
	idx := &index.Builder{Root: a.root, Logger: a.logger}
	return rec, idx, git, nil
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	a := &app{logger: logger}

	cmd := &cobra.Command{
		Use:   "kodi-repo",
		Short: "Release manager for a Kodi addon repository",
		Long: `kodi-repo maintains a repository of Kodi addons, each wrapping an
upstream source checkout. It bumps addon versions, pulls upstream
commits, rewrites manifests with changelogs, packages zip archives and
keeps the repository-wide addons.xml index and its checksum current.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&a.root, "root", "C", ".", "repository root directory")

	cmd.AddCommand(
		newUpdateCmd(a),
		newRevertCmd(a),
		newPushCmd(a),
		newInitCmd(a),
		newDoctorCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <addon|xml|all> [version] [commit]",
		Short: "Release an addon and refresh the repository index",
		Long: `Release one addon against the latest upstream commit, or pin a
specific version and commit. "update xml" only rebuilds the index;
"update all" releases every addon best-effort.`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, idx, _, err := a.services()
			if err != nil {
				return err
			}

			target := domain.ReleaseTarget{}
			if len(args) > 1 && !strings.EqualFold(args[1], "auto") {
				target.Version = strings.TrimSpace(args[1])
			}
			if len(args) > 2 && !strings.EqualFold(args[2], "head") {
				target.Commit = strings.TrimSpace(args[2])
			}

			switch addon := strings.ToLower(args[0]); addon {
			case "xml":
				return idx.Rebuild()
			case "all":
				if _, err := rec.UpdateAll(cmd.Context()); err != nil {
					return err
				}
				return idx.Rebuild()
			default:
				if _, err := rec.Update(cmd.Context(), addon, target); err != nil {
					return err
				}
				return idx.Rebuild()
			}
		},
	}
}

func newRevertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "revert <addon>",
		Short: "Discard local changes to an addon and restore its checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, idx, _, err := a.services()
			if err != nil {
				return err
			}
			if err := rec.Revert(cmd.Context(), args[0]); err != nil {
				return err
			}
			return idx.Rebuild()
		},
	}
}

func newPushCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Commit and force-push the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, git, err := a.services()
			if err != nil {
				return err
			}
			if err := git.Commit(cmd.Context(), a.root, "Update"); err != nil {
				return err
			}
			if err := git.Push(cmd.Context(), a.root, "origin", true); err != nil {
				return err
			}
			a.logger.Info("pushed", slog.String("remote", "origin"))
			return nil
		},
	}
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize every embedded addon checkout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, git, err := a.services()
			if err != nil {
				return err
			}
			if err := git.InitSubtree(cmd.Context(), a.root, "", true); err != nil {
				return err
			}
			a.logger.Info("checkouts_initialized")
			return nil
		},
	}
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report external dependency status as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := struct {
				Version      string                       `json:"version"`
				Dependencies diagnostics.DependencyReport `json:"dependencies"`
			}{
				Version:      buildinfo.Version,
				Dependencies: diagnostics.DetectDependencies(),
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(out)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Version)
		},
	}
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		fmt.Fprintf(os.Stderr, "invalid KODI_REPO_LOG_LEVEL=%q; defaulting to info\n", raw)
		return slog.LevelInfo
	}
}
