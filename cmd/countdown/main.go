// Command countdown prints 1..N on one line, pausing between values.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tpalab/regeval/countdown"
	"github.com/tpalab/regeval/pkg/errors"
)

func main() {
	if err := newRootCmd(time.Sleep).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "countdown:", err)
		os.Exit(1)
	}
}

func newRootCmd(sleep func(time.Duration)) *cobra.Command {
	return &cobra.Command{
		Use:           "countdown N",
		Short:         "Print the integers 1..N on a single line",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		// N may be negative, so "-2" must not be read as a flag.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrapf(err, "parse N %q", args[0])
			}
			e := countdown.NewEmitter(cmd.OutOrStdout())
			e.Sleep = sleep
			return e.Run(n)
		},
	}
}
