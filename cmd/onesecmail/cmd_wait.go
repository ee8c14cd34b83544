package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	onesecmail "github.com/onesecmail/client-go"
)

type waitFlags struct {
	subject      string
	subjectRegex string
	from         string
	fromRegex    string
	within       time.Duration
	interval     time.Duration
}

func newWaitCmd(stdout, stderr io.Writer) *cobra.Command {
	var f waitFlags
	cmd := &cobra.Command{
		Use:   "wait <address>",
		Short: "Wait for a matching message",
		Long: `Wait until a message matching the filters is in the mailbox and print
it. Messages already in the mailbox count. Exits 1 if nothing matches
within --within.`,
		Example: `  onesecmail wait abc123@1secmail.com --subject-regex 'verify|confirm'
  onesecmail wait abc123@1secmail.com --from noreply@example.com --within 2m`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if cmdWait(args[0], f, stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.subject, "subject", "", "exact subject")
	fl.StringVar(&f.subjectRegex, "subject-regex", "", "subject regular expression")
	fl.StringVar(&f.from, "from", "", "exact sender")
	fl.StringVar(&f.fromRegex, "from-regex", "", "sender regular expression")
	fl.DurationVar(&f.within, "within", time.Minute, "how long to wait")
	fl.DurationVar(&f.interval, "interval", onesecmail.DefaultPollInterval, "time between polls (minimum 1s)")
	return cmd
}

// options converts the flags to wait options.
func (f waitFlags) options() ([]onesecmail.WaitOption, error) {
	opts := []onesecmail.WaitOption{
		onesecmail.WithWaitTimeout(f.within),
		onesecmail.WithPollInterval(f.interval),
	}
	if f.subject != "" {
		opts = append(opts, onesecmail.WithSubject(f.subject))
	}
	if f.from != "" {
		opts = append(opts, onesecmail.WithFrom(f.from))
	}
	if f.subjectRegex != "" {
		re, err := regexp.Compile(f.subjectRegex)
		if err != nil {
			return nil, fmt.Errorf("--subject-regex: %w", err)
		}
		opts = append(opts, onesecmail.WithSubjectRegex(re))
	}
	if f.fromRegex != "" {
		re, err := regexp.Compile(f.fromRegex)
		if err != nil {
			return nil, fmt.Errorf("--from-regex: %w", err)
		}
		opts = append(opts, onesecmail.WithFromRegex(re))
	}
	return opts, nil
}

func cmdWait(address string, f waitFlags, stdout, stderr io.Writer) int {
	s := openSession(stderr, "onesecmail wait")
	if s == nil {
		return 1
	}
	defer s.close()
	return doWait(s.ctx, s.client, address, f, stdout, stderr)
}

func doWait(ctx context.Context, client *onesecmail.Client, address string, f waitFlags, stdout, stderr io.Writer) int {
	opts, err := f.options()
	if err != nil {
		fmt.Fprintf(stderr, "onesecmail wait: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	mailbox, err := client.OpenMailbox(ctx, address)
	if err != nil {
		fmt.Fprintf(stderr, "onesecmail wait: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	msg, err := mailbox.WaitForMessage(ctx, opts...)
	if errors.Is(err, context.DeadlineExceeded) {
		fmt.Fprintf(stderr, "onesecmail wait: no matching message within %s\n", f.within) //nolint:errcheck // best-effort stderr
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "onesecmail wait: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	fmt.Fprintln(stdout, newMessageStyles(stdout).line(msg.ID, msg.From, msg.Subject, msg.Date)) //nolint:errcheck // best-effort stdout
	return 0
}
