package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	onesecmail "github.com/onesecmail/client-go"
)

func newClearCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <address>",
		Short: "Delete every message in a mailbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if cmdClear(args[0], stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
}

func cmdClear(address string, stdout, stderr io.Writer) int {
	s := openSession(stderr, "onesecmail clear")
	if s == nil {
		return 1
	}
	defer s.close()
	return doClear(s.ctx, s.client, address, stdout, stderr)
}

func doClear(ctx context.Context, client *onesecmail.Client, address string, stdout, stderr io.Writer) int {
	mailbox, err := client.OpenMailbox(ctx, address)
	if err != nil {
		fmt.Fprintf(stderr, "onesecmail clear: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	if err := mailbox.ClearMessages(ctx); err != nil {
		fmt.Fprintf(stderr, "onesecmail clear: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	fmt.Fprintf(stdout, "Cleared %s\n", mailbox.EmailAddress()) //nolint:errcheck // best-effort stdout
	return 0
}
