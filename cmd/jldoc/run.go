// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/petar-djukic/go-jldoc/internal/logging"
	"github.com/petar-djukic/go-jldoc/internal/sigparse"
	"github.com/petar-djukic/go-jldoc/pkg/jldoc"
	"github.com/petar-djukic/go-jldoc/pkg/types"
)

// openProject builds a Project from the bound flags, env and config file.
func openProject() (*jldoc.Project, *zap.Logger, error) {
	log, err := logging.New(os.Stderr, viper.GetString("log-level"), viper.GetBool("log-json"))
	if err != nil {
		return nil, nil, err
	}
	p, err := jldoc.New(jldoc.Config{
		Root:        viper.GetString("root"),
		DBPath:      viper.GetString("db"),
		Concurrency: viper.GetInt("concurrency"),
		Logger:      log,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "initialization failed")
	}
	return p, log, nil
}

// load fills the registry, from the newest saved build when fromDB is set
// and by scanning the sources otherwise.
func load(ctx context.Context, p *jldoc.Project, fromDB bool) error {
	if fromDB {
		_, err := p.Restore(ctx, "")
		return err
	}
	_, err := p.Build(ctx)
	return err
}

func format() string { return viper.GetString("format") }

// newIndexCmd creates the "index" command.
func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Scan the sources and register their declarations",
		Long:  "Index scans every .jl file under the root, registers its declarations and, with --db, saves the result as a new build.",
		Args:  cobra.NoArgs,
		RunE:  runIndex,
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	p, _, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := p.Build(cmd.Context())
	if err != nil {
		return err
	}
	return printOutput(cmd.OutOrStdout(), format(), res, func(w io.Writer) error {
		fmt.Fprintf(w, "%d documents, %d entries\n", res.Documents, res.Entries)
		if res.BuildID != "" {
			fmt.Fprintf(w, "build %s\n", res.BuildID)
		}
		for _, d := range res.Diagnostics {
			fmt.Fprintf(w, "warning: %s\n", d.Error())
		}
		return nil
	})
}

// newResolveCmd creates the "resolve" command.
func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve ROLE...",
		Short: "Resolve cross-reference roles",
		Long:  "Resolve looks up each role as it would be written in a docstring inside --scope, for example \"~..area(s::Shape)\" or \"the area <Shapes.area>\".",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runResolve,
	}
	cmd.Flags().StringP("kind", "k", "function", "Role kind: module, abstract, type or function")
	cmd.Flags().StringP("scope", "s", "", "Dotted scope the role is written in")
	cmd.Flags().Bool("from-db", false, "Resolve against the newest saved build instead of scanning")
	cmd.Flags().Bool("strict", false, "Fail when a role is unresolved")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	scopeText, _ := cmd.Flags().GetString("scope")
	fromDB, _ := cmd.Flags().GetBool("from-db")
	strict, _ := cmd.Flags().GetBool("strict")

	p, _, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()
	if err := load(cmd.Context(), p, fromDB); err != nil {
		return err
	}

	scope := types.ParseScope(scopeText)
	var results []jldoc.Resolution
	unresolved := 0
	for _, text := range args {
		res, err := p.Resolve(kind, scope, text)
		if err != nil {
			return err
		}
		if res.Status == jldoc.Unresolved {
			unresolved++
		}
		results = append(results, res)
	}

	err = printOutput(cmd.OutOrStdout(), format(), results, func(w io.Writer) error {
		for _, r := range results {
			target := "-"
			if r.Entry != nil {
				target = r.Entry.Anchor
			}
			fmt.Fprintf(w, "%-10s %s -> %s\n", r.Status, r.Role.Target, target)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if strict && unresolved > 0 {
		return errors.Newf("%d unresolved reference(s)", unresolved)
	}
	return nil
}

// newOutlineCmd creates the "outline" command.
func newOutlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outline [DOCUMENT]",
		Short: "List the declarations of a document",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runOutline,
	}
}

func runOutline(cmd *cobra.Command, args []string) error {
	p, _, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()
	if _, err := p.Build(cmd.Context()); err != nil {
		return err
	}

	doc := ""
	if len(args) == 1 {
		doc = args[0]
	}
	items, err := p.Outline(doc)
	if err != nil {
		return err
	}
	return printOutput(cmd.OutOrStdout(), format(), items, func(w io.Writer) error {
		last := ""
		for _, it := range items {
			if it.Document != last {
				fmt.Fprintf(w, "%s\n", it.Document)
				last = it.Document
			}
			line := strings.Repeat("  ", it.Depth+1) + it.Header
			if it.Summary != "" {
				line += "  # " + it.Summary
			}
			fmt.Fprintln(w, line)
		}
		return nil
	})
}

// newParseCmd creates the "parse" command.
func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse HEADER",
		Short: "Parse one declaration header and print its structure",
		Long:  "Parse runs the signature parser on a single header such as \"f(x::Int; y=2)::Int\" and prints the parsed record; with --select it also lists the indexed declarations the header matches as a pattern.",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	cmd.Flags().StringP("kind", "k", "function", "Header kind: module, abstract, type or function")
	cmd.Flags().Bool("select", false, "Match the parsed header against the indexed sources")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	if sel, _ := cmd.Flags().GetBool("select"); sel {
		return runSelect(cmd, kind, args[0])
	}

	decl, err := sigparse.Parse(kind, args[0])
	if err != nil {
		return err
	}
	return printOutput(cmd.OutOrStdout(), format(), decl, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, sigparse.FormatDeclaration(decl))
		return err
	})
}

func runSelect(cmd *cobra.Command, kind types.Kind, pattern string) error {
	p, _, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()
	if _, err := p.Build(cmd.Context()); err != nil {
		return err
	}

	decls, err := p.Select(kind, pattern)
	if err != nil {
		return err
	}
	return printOutput(cmd.OutOrStdout(), format(), decls, func(w io.Writer) error {
		for _, d := range decls {
			fmt.Fprintln(w, sigparse.FormatDeclaration(d))
		}
		return nil
	})
}

// newBuildsCmd creates the "builds" command.
func newBuildsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "builds",
		Short: "List the builds saved in the snapshot database",
		Args:  cobra.NoArgs,
		RunE:  runBuilds,
	}
}

func runBuilds(cmd *cobra.Command, args []string) error {
	p, _, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	builds, err := p.Builds(cmd.Context())
	if err != nil {
		return err
	}
	return printOutput(cmd.OutOrStdout(), format(), builds, func(w io.Writer) error {
		for _, b := range builds {
			fmt.Fprintf(w, "%s  %s  %5d entries  %s\n",
				b.ID, b.CreatedAt.Format("2006-01-02 15:04:05"), b.Entries, b.Root)
		}
		return nil
	})
}

// newWatchCmd creates the "watch" command.
func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Index the sources and keep the index current as files change",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, log, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	res, err := p.Build(ctx)
	if err != nil {
		return err
	}
	log.Info("initial build",
		zap.Int("documents", res.Documents),
		zap.Int("entries", res.Entries))
	fmt.Fprintf(cmd.OutOrStdout(), "watching %s (%d entries), press Ctrl-C to stop\n", p.Root(), res.Entries)
	return p.Watch(ctx)
}

func kindFlag(cmd *cobra.Command) (types.Kind, error) {
	s, _ := cmd.Flags().GetString("kind")
	return types.ParseKind(s)
}
