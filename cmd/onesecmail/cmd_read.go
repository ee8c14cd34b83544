package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	onesecmail "github.com/onesecmail/client-go"
)

func newReadCmd(stdout, stderr io.Writer) *cobra.Command {
	var asJSON, html bool
	cmd := &cobra.Command{
		Use:   "read <address> <id>",
		Short: "Print a message",
		Long: `Print the headers, attachment list and body of a message.

The text body is printed unless --html is given. Messages without a
text body fall back to the raw body.`,
		Example: `  onesecmail read abc123@1secmail.com 639
  onesecmail read abc123@1secmail.com 639 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if cmdRead(args, readOptions{json: asJSON, html: html}, stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the message as JSON")
	cmd.Flags().BoolVar(&html, "html", false, "print the HTML body")
	return cmd
}

type readOptions struct {
	json bool
	html bool
}

func cmdRead(args []string, opts readOptions, stdout, stderr io.Writer) int {
	s := openSession(stderr, "onesecmail read")
	if s == nil {
		return 1
	}
	defer s.close()
	return doRead(s.ctx, s.client, args, opts, stdout, stderr)
}

func doRead(ctx context.Context, client *onesecmail.Client, args []string, opts readOptions, stdout, stderr io.Writer) int {
	msg, code := fetchMessage(ctx, client, args, "onesecmail read", stderr)
	if msg == nil {
		return code
	}

	if opts.json {
		if err := writeJSON(stdout, msg.Serialize()); err != nil {
			fmt.Fprintf(stderr, "onesecmail read: %v\n", err) //nolint:errcheck // best-effort stderr
			return 1
		}
		return 0
	}

	fmt.Fprintf(stdout, "ID:      %d\n", msg.ID)      //nolint:errcheck // best-effort stdout
	fmt.Fprintf(stdout, "From:    %s\n", msg.From)    //nolint:errcheck // best-effort stdout
	fmt.Fprintf(stdout, "Subject: %s\n", msg.Subject) //nolint:errcheck // best-effort stdout
	fmt.Fprintf(stdout, "Date:    %s\n", msg.Date)    //nolint:errcheck // best-effort stdout
	for _, a := range msg.Attachments {
		fmt.Fprintf(stdout, "Attach:  %s (%s, %d bytes)\n", a.Filename, a.ContentType, a.Size) //nolint:errcheck // best-effort stdout
	}
	fmt.Fprintln(stdout) //nolint:errcheck // best-effort stdout

	body := msg.TextBody
	switch {
	case opts.html:
		body = msg.HTMLBody
	case body == "":
		body = msg.Body
	}
	fmt.Fprintln(stdout, body) //nolint:errcheck // best-effort stdout
	return 0
}

// fetchMessage opens the mailbox in args[0] and reads message args[1].
// On failure it reports to stderr and returns a nil message.
func fetchMessage(ctx context.Context, client *onesecmail.Client, args []string, name string, stderr io.Writer) (*onesecmail.Message, int) {
	id, err := parseMessageID(args[1])
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err) //nolint:errcheck // best-effort stderr
		return nil, 1
	}
	mailbox, err := client.OpenMailbox(ctx, args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err) //nolint:errcheck // best-effort stderr
		return nil, 1
	}

	msg, err := mailbox.ReadMessage(ctx, id)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err) //nolint:errcheck // best-effort stderr
		return nil, 1
	}
	return msg, 0
}
