package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cells/internal/logging"
	"github.com/aretw0/cells/pkg/blueprint"
	"github.com/aretw0/cells/pkg/organism"
	"github.com/aretw0/cells/pkg/registry"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cells",
		Short:         "cells runs trees of typed, stateful organisms",
		Long:          `cells sequences attribute declarations, inspects blueprint trees and serves an organism membrane over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Persistent flags (available to all commands)
	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(newVersionCmd(), newSequenceCmd(), newInspectCmd(), newServeCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loggerFor(cmd *cobra.Command) (*slog.Logger, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// grow loads a blueprint and brings its whole tree to life.
func grow(path string, opts ...organism.Option) (*organism.Organism, *organism.Membrane, error) {
	bp, err := blueprint.Load(path)
	if err != nil {
		return nil, nil, err
	}
	o, err := bp.Build(registry.Builtin(), opts...)
	if err != nil {
		return nil, nil, err
	}
	api, err := o.Genesis()
	if err != nil {
		return nil, nil, err
	}
	return o, api, nil
}
