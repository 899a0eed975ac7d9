/* Copyright 2025, the ovirt-apply authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// ovirt-apply reads a manifest of desired resources and converges an oVirt
// engine to it, one resource at a time, in file order.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/virtops/ovirt-apply/pkg/client"
	"github.com/virtops/ovirt-apply/pkg/config"
	"github.com/virtops/ovirt-apply/pkg/reconcile"
	"github.com/virtops/ovirt-apply/pkg/resources"

	// Register the resource kinds.
	_ "github.com/virtops/ovirt-apply/pkg/resources/cluster"
	_ "github.com/virtops/ovirt-apply/pkg/resources/datacenter"
	_ "github.com/virtops/ovirt-apply/pkg/resources/group"
	_ "github.com/virtops/ovirt-apply/pkg/resources/host"
	_ "github.com/virtops/ovirt-apply/pkg/resources/network"
	_ "github.com/virtops/ovirt-apply/pkg/resources/snapshot"
	_ "github.com/virtops/ovirt-apply/pkg/resources/storagedomain"
	_ "github.com/virtops/ovirt-apply/pkg/resources/user"
	_ "github.com/virtops/ovirt-apply/pkg/resources/vmpool"
)

var version = "dev"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ovirt-apply",
		Short:        "Converge an oVirt engine to a declared set of resources",
		SilenceUsage: true,
	}
	root.AddCommand(newApplyCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ovirt-apply version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ovirt-apply version %s\n", version)
		},
	}
}

type applyFlags struct {
	manifestPath string
	configPath   string
	check        bool
	noWait       bool
	timeout      time.Duration
}

func newApplyCmd() *cobra.Command {
	var flags applyFlags

	cmd := &cobra.Command{
		Use:   "apply -f resources.yaml",
		Short: "Apply a manifest of desired resources",
		Long: `Apply reads a YAML manifest of {kind, state, spec} documents and issues
the minimal engine calls to converge each resource. Resources already in
the desired state are left untouched and reported as unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.manifestPath, "filename", "f", "", "Manifest file to apply")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "config.yaml", "Path to configuration file")
	cmd.Flags().BoolVar(&flags.check, "check", false, "Report what would change without mutating anything")
	cmd.Flags().BoolVar(&flags.noWait, "no-wait", false, "Do not wait for resources to converge")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Per-resource convergence timeout (overrides config)")
	_ = cmd.MarkFlagRequired("filename")

	return cmd
}

func runApply(cmd *cobra.Command, flags applyFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	setupLogging(cfg.Log)

	manifest, err := os.Open(flags.manifestPath)
	if err != nil {
		return err
	}
	defer manifest.Close()

	docs, err := resources.ParseManifest(manifest)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flags.manifestPath, err)
	}
	if len(docs) == 0 {
		log.Warn().Str("manifest", flags.manifestPath).Msg("Manifest contains no resources")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cl, err := client.New(client.Options{
		URL:      cfg.Engine.URL,
		Username: cfg.Engine.Username,
		Password: cfg.Engine.Password,
		Token:    cfg.Engine.Token,
		Insecure: cfg.Engine.Insecure,
		CAFile:   cfg.Engine.CAFile,
		Timeout:  cfg.Engine.Timeout.Duration(),
		Log:      log.Logger,
	})
	if err != nil {
		return fmt.Errorf("engine client: %w", err)
	}
	if err := cl.Authenticate(ctx); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	// Release the session on every exit path. The token stays valid.
	defer func() {
		if err := cl.Close(context.WithoutCancel(ctx), false); err != nil {
			log.Warn().Err(err).Msg("Closing engine session failed")
		}
	}()

	opts := reconcile.Options{
		CheckMode:    flags.check,
		Wait:         !flags.noWait && !cfg.Run.NoWait,
		Timeout:      cfg.Run.Timeout.Duration(),
		PollInterval: cfg.Run.PollInterval.Duration(),
	}
	if flags.timeout > 0 {
		opts.Timeout = flags.timeout
	}

	changed := 0
	for i, doc := range docs {
		docLog := log.With().Int("doc", i+1).Str("kind", doc.Kind).Str("state", doc.State).Logger()
		outcome, err := resources.Apply(docLog.WithContext(ctx), cl, doc.Kind, doc.Spec, doc.State, opts)
		if err != nil {
			docLog.Error().Err(err).Msg("Apply failed")
			return fmt.Errorf("document %d (%s): %w", i+1, doc.Kind, err)
		}
		if outcome.Changed {
			changed++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tchanged=%v\tid=%s\n", doc.Kind, outcome.Changed, outcome.ID)
	}

	log.Info().Int("resources", len(docs)).Int("changed", changed).Bool("check", flags.check).Msg("Apply finished")
	return nil
}

func setupLogging(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.JSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !cfg.Colors,
		})
	}

	switch cfg.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
