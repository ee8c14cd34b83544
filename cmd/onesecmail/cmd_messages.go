package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	onesecmail "github.com/onesecmail/client-go"
)

func newMessagesCmd(stdout, stderr io.Writer) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "messages <address>",
		Short: "List the messages in a mailbox",
		Long: `List the messages in a mailbox, oldest first.

The address must be on a domain the provider serves and must not use a
reserved login such as admin or postmaster.`,
		Example: `  onesecmail messages abc123@1secmail.com
  onesecmail messages abc123@1secmail.com --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if cmdMessages(args[0], asJSON, stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the messages as JSON")
	return cmd
}

func cmdMessages(address string, asJSON bool, stdout, stderr io.Writer) int {
	s := openSession(stderr, "onesecmail messages")
	if s == nil {
		return 1
	}
	defer s.close()
	return doMessages(s.ctx, s.client, address, asJSON, stdout, stderr)
}

func doMessages(ctx context.Context, client *onesecmail.Client, address string, asJSON bool, stdout, stderr io.Writer) int {
	mailbox, err := client.OpenMailbox(ctx, address)
	if err != nil {
		fmt.Fprintf(stderr, "onesecmail messages: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	msgs, err := mailbox.GetMessages(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "onesecmail messages: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	sortByID(msgs)

	if asJSON {
		data := make([]onesecmail.ShortMessageData, 0, len(msgs))
		for _, m := range msgs {
			data = append(data, m.Serialize())
		}
		if err := writeJSON(stdout, data); err != nil {
			fmt.Fprintf(stderr, "onesecmail messages: %v\n", err) //nolint:errcheck // best-effort stderr
			return 1
		}
		return 0
	}

	if len(msgs) == 0 {
		fmt.Fprintf(stdout, "No messages for %s\n", mailbox.EmailAddress()) //nolint:errcheck // best-effort stdout
		return 0
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFROM\tSUBJECT\tDATE") //nolint:errcheck // best-effort stdout
	for _, m := range msgs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", m.ID, m.From, m.Subject, m.Date) //nolint:errcheck // best-effort stdout
	}
	tw.Flush() //nolint:errcheck // best-effort stdout
	return 0
}

func sortByID(msgs []*onesecmail.ShortMessage) {
	slices.SortFunc(msgs, func(a, b *onesecmail.ShortMessage) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
