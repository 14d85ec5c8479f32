// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command jldoc indexes the Julia declarations of a source tree and
// resolves documentation cross-references against them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "jldoc",
		Short:         "Julia declaration index and cross-reference resolver",
		Long:          "jldoc scans Julia sources for modules, types and functions, registers them by scope, and resolves partially-qualified references the way documentation roles write them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().String("root", ".", "Julia source directory")
	rootCmd.PersistentFlags().String("db", "", "SQLite snapshot database (empty = no persistence)")
	rootCmd.PersistentFlags().StringP("format", "f", formatText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().Int("concurrency", 0, "Parallel file scans (0 = number of CPUs)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	// Bind flags to viper.
	for _, name := range []string{"root", "db", "format", "concurrency", "log-level", "log-json"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Env vars: JLDOC_ROOT, JLDOC_DB, etc.
	viper.SetEnvPrefix("JLDOC")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".jldoc")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newOutlineCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newBuildsCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print jldoc version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jldoc %s\n", version)
		},
	}
}
