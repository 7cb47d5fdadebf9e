package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lin871229/lottery-app-v4/internal/district"
)

func newDistrictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "districts",
		Short: "List the recognized districts in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range district.Kaohsiung().All() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
