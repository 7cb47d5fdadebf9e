// Command lottery draws service providers from a roster file without running the HTTP server.
//
// Usage:
//
//	lottery districts
//	lottery roster inspect 名冊.xlsx --layout legacy
//	lottery draw 名冊.xlsx --pick transport:左營區:2 --pick 居家喘息:鳳山區 --export result.xlsx
package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lin871229/lottery-app-v4/internal/draw/service"
	"github.com/lin871229/lottery-app-v4/internal/platform/logger"
	"github.com/lin871229/lottery-app-v4/internal/roster/layouts"
)

type rootOptions struct {
	layout     string
	layoutFile string
	verbose    bool
	log        *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "lottery",
		Short:         "Draw long-term-care service providers by category and district",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !opts.verbose {
				return nil
			}
			l, err := logger.New("debug", true)
			if err != nil {
				return err
			}
			opts.log = l
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.layout, "layout", layouts.Default, "built-in roster layout")
	root.PersistentFlags().StringVar(&opts.layoutFile, "layout-file", "", "YAML roster layout; overrides --layout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine activity to stderr")

	root.AddCommand(
		newDistrictsCmd(),
		newRosterCmd(opts),
		newDrawCmd(opts),
	)
	return root
}

// serviceOptions resolves the roster layout flags into service options.
func (o *rootOptions) serviceOptions() ([]service.Option, error) {
	layout, err := layouts.Load(o.layout)
	if o.layoutFile != "" {
		layout, err = layouts.LoadFile(o.layoutFile)
	}
	if err != nil {
		return nil, err
	}
	return []service.Option{
		service.WithLogger(o.log),
		service.WithDefaultLayout(layout),
	}, nil
}
