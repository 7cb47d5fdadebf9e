package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lin871229/lottery-app-v4/internal/district"
	"github.com/lin871229/lottery-app-v4/internal/draw"
	"github.com/lin871229/lottery-app-v4/internal/draw/service"
	drawstore "github.com/lin871229/lottery-app-v4/internal/draw/store"
	"github.com/lin871229/lottery-app-v4/internal/export"
	rosterstore "github.com/lin871229/lottery-app-v4/internal/roster/store"
)

type drawOptions struct {
	picks    []string
	seed     uint64
	exportTo string
	timezone string
}

func newDrawCmd(root *rootOptions) *cobra.Command {
	opts := &drawOptions{}
	cmd := &cobra.Command{
		Use:   "draw FILE",
		Short: "Run one or more draws against a roster in a single session",
		Long: `Loads FILE, then runs each --pick in order within one session, so an
organization drawn for a category is never drawn again for that category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraw(cmd, root, opts, args[0])
		},
	}
	cmd.Flags().StringArrayVarP(&opts.picks, "pick", "p", nil, "CATEGORY:DISTRICT[:COUNT], repeatable")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed the draw for a reproducible result (0 draws randomly)")
	cmd.Flags().StringVarP(&opts.exportTo, "export", "o", "", "write the history to an .xlsx or .csv file")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "Asia/Taipei", "timezone for printed and exported times")
	return cmd
}

func runDraw(cmd *cobra.Command, root *rootOptions, opts *drawOptions, path string) error {
	picks, err := parsePicks(opts.picks)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", opts.timezone, err)
	}
	var format export.Format
	if opts.exportTo != "" {
		format, err = export.ParseFormat(strings.TrimPrefix(filepath.Ext(opts.exportTo), "."))
		if err != nil {
			return err
		}
	}

	svcOpts, err := root.serviceOptions()
	if err != nil {
		return err
	}
	svcOpts = append(svcOpts, service.WithLocation(loc))
	if opts.seed != 0 {
		svcOpts = append(svcOpts, service.WithRandom(draw.NewSeeded(opts.seed)))
	}
	svc := service.New(drawstore.New(), rosterstore.New(), district.Kaohsiung(), svcOpts...)

	ctx := cmd.Context()
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	summary, err := svc.LoadRoster(ctx, filepath.Base(path), f, "")
	f.Close()
	if err != nil {
		return err
	}
	session, err := svc.CreateSession(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, p := range picks {
		result, err := svc.Draw(ctx, session.ID, service.DrawRequest{
			RosterID: summary.ID,
			Category: string(p.Category),
			District: p.District,
			Count:    p.Count,
		})
		var insufficient *draw.InsufficientPoolError
		switch {
		case errors.As(err, &insufficient):
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", p.Category.Label(), p.District, insufficient)
			continue
		case err != nil:
			return err
		}

		fmt.Fprintf(out, "%s %s (%s)\n", p.Category.Label(), p.District, result.DrawnAt.In(loc).Format(export.TimeLayout))
		for i, org := range result.Organizations {
			fmt.Fprintf(out, "  %d. %s\n", i+1, org.Name)
		}
	}

	if opts.exportTo != "" {
		var buf bytes.Buffer
		if err := svc.Export(ctx, &buf, session.ID, format, ""); err != nil {
			return err
		}
		if err := os.WriteFile(opts.exportTo, buf.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "exported to %s\n", opts.exportTo)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d draws could not be filled", failed, len(picks))
	}
	return nil
}
