package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	onesecmail "github.com/onesecmail/client-go"
)

type watchOptions struct {
	interval time.Duration
	count    int
}

func newWatchCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch <address>",
		Short: "Print messages as they arrive",
		Long: `Poll a mailbox and print each message once, in arrival order.

Messages already in the mailbox are printed by the first poll. Failed
polls are reported on stderr and polling continues. Stops on interrupt,
or after --count messages.`,
		Example: `  onesecmail watch abc123@1secmail.com
  onesecmail watch abc123@1secmail.com --interval 2s --count 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if cmdWatch(args[0], opts, stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&opts.interval, "interval", onesecmail.DefaultPollInterval, "time between polls (minimum 1s)")
	cmd.Flags().IntVar(&opts.count, "count", 0, "exit after this many messages (0 for no limit)")
	return cmd
}

func cmdWatch(address string, opts watchOptions, stdout, stderr io.Writer) int {
	s := openSession(stderr, "onesecmail watch")
	if s == nil {
		return 1
	}
	defer s.close()
	return doWatch(s.ctx, s.client, address, opts, stdout, stderr)
}

// doWatch prints messages until ctx ends or opts.count messages were seen.
// Poll errors are forwarded to this goroutine so all output is written
// from one place.
func doWatch(ctx context.Context, client *onesecmail.Client, address string, opts watchOptions, stdout, stderr io.Writer) int {
	mailbox, err := client.OpenMailbox(ctx, address)
	if err != nil {
		fmt.Fprintf(stderr, "onesecmail watch: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 1)
	sub := mailbox.OnError(func(err error) {
		select {
		case errs <- err:
		case <-ctx.Done():
		}
	})
	defer sub.Unsubscribe()
	msgs := mailbox.Watch(ctx)

	if _, err := mailbox.StartPolling(opts.interval); err != nil {
		fmt.Fprintf(stderr, "onesecmail watch: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	defer mailbox.StopPolling()

	out := newMessageStyles(stdout)
	errOut := newMessageStyles(stderr)
	fmt.Fprintln(stdout, out.header.Render("Watching "+mailbox.EmailAddress()+" every "+opts.interval.String())) //nolint:errcheck // best-effort stdout

	seen := 0
	for {
		select {
		case <-ctx.Done():
			return 0
		case msg := <-msgs:
			fmt.Fprintln(stdout, out.line(msg.ID, msg.From, msg.Subject, msg.Date)) //nolint:errcheck // best-effort stdout
			seen++
			if opts.count > 0 && seen >= opts.count {
				return 0
			}
		case err := <-errs:
			fmt.Fprintln(stderr, errOut.err.Render("poll failed: "+err.Error())) //nolint:errcheck // best-effort stderr
		}
	}
}
