package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lin871229/lottery-app-v4/internal/district"
	"github.com/lin871229/lottery-app-v4/internal/draw/service"
	drawstore "github.com/lin871229/lottery-app-v4/internal/draw/store"
	"github.com/lin871229/lottery-app-v4/internal/roster"
	rosterstore "github.com/lin871229/lottery-app-v4/internal/roster/store"
	id "github.com/lin871229/lottery-app-v4/pkg/domain"
)

func newRosterCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Work with roster files",
	}

	var showOrgs bool
	inspect := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Normalize a roster and report its organizations and warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcOpts, err := opts.serviceOptions()
			if err != nil {
				return err
			}
			svc := service.New(drawstore.New(), rosterstore.New(), district.Kaohsiung(), svcOpts...)

			result, err := parseFile(cmd, svc, args[0])
			if err != nil {
				return err
			}
			printRoster(cmd, result, showOrgs)
			return nil
		},
	}
	inspect.Flags().BoolVar(&showOrgs, "orgs", false, "list each organization with its eligible districts")
	cmd.AddCommand(inspect)
	return cmd
}

func parseFile(cmd *cobra.Command, svc *service.Service, path string) (*roster.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return svc.ParseRoster(cmd.Context(), filepath.Base(path), f, "")
}

func printRoster(cmd *cobra.Command, result *roster.Result, showOrgs bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "layout: %s\n", result.Layout)
	if result.Sheet != "" {
		fmt.Fprintf(out, "sheet: %s\n", result.Sheet)
	}
	fmt.Fprintf(out, "organizations: %d\n", result.Len())

	labels := make([]string, 0, len(result.Categories))
	for _, c := range result.Categories {
		labels = append(labels, c.Label())
	}
	fmt.Fprintf(out, "categories: %s\n", strings.Join(labels, ", "))

	if showOrgs {
		for _, org := range result.Organizations() {
			fmt.Fprintf(out, "- %s (row %d)\n", org.Name, org.Row)
			for _, c := range id.Categories() {
				if districts := org.Districts(c); len(districts) > 0 {
					fmt.Fprintf(out, "    %s: %s\n", c.Label(), strings.Join(districts, "、"))
				}
			}
		}
	}

	fmt.Fprintf(out, "warnings: %d\n", len(result.Warnings))
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "  %s\n", w.String())
	}
}
