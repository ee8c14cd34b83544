package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	onesecmail "github.com/onesecmail/client-go"
)

func newGenCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "gen [count]",
		Short: "Generate random mailbox addresses",
		Long: `Ask the provider for random mailbox addresses, one per line.

Count defaults to 1 and must be between 1 and 500.`,
		Example: `  onesecmail gen
  onesecmail gen 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if cmdGen(args, stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
}

func cmdGen(args []string, stdout, stderr io.Writer) int {
	s := openSession(stderr, "onesecmail gen")
	if s == nil {
		return 1
	}
	defer s.close()
	return doGen(s.ctx, s.client, args, stdout, stderr)
}

// doGen prints count generated addresses. Accepts an injected client for
// testability.
func doGen(ctx context.Context, client *onesecmail.Client, args []string, stdout, stderr io.Writer) int {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(stderr, "onesecmail gen: invalid count %q\n", args[0]) //nolint:errcheck // best-effort stderr
			return 1
		}
		count = n
	}

	addresses, err := client.GenRandomMailbox(ctx, count)
	if err != nil {
		fmt.Fprintf(stderr, "onesecmail gen: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	for _, a := range addresses {
		fmt.Fprintln(stdout, a) //nolint:errcheck // best-effort stdout
	}
	return 0
}
