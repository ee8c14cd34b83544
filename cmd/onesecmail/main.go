// onesecmail is a command-line client for the 1secmail disposable mail
// provider.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errExit is returned by RunE functions to signal a non-zero exit. The
// command has already written its own error to stderr.
var errExit = errors.New("exit")

// Persistent flag values. Zero values (and -1 for retries) mean "not set"
// so that file and environment settings apply.
var (
	configFlag     string
	baseURLFlag    string
	mailboxURLFlag string
	timeoutFlag    time.Duration
	retriesFlag    int
)

// run executes the CLI with the given args, writing output to stdout and
// errors to stderr. Returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errExit) {
			fmt.Fprintf(stderr, "onesecmail: %v\n", err) //nolint:errcheck // best-effort stderr
		}
		return 1
	}
	return 0
}

// newRootCmd creates the root cobra command with all subcommands.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "onesecmail",
		Short: "Disposable mailboxes from the command line",
		Long: `Generate 1secmail addresses, list and read their messages, download
attachments and watch a mailbox for new mail.

Settings are read from the config file, then .env and ONESECMAIL_*
environment variables, then flags.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			fmt.Fprintf(stderr, "onesecmail: unknown command %q\n", args[0]) //nolint:errcheck // best-effort stderr
			return errExit
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&configFlag, "config", "",
		"path to the config file (default: $HOME/.config/onesecmail/config.toml)")
	pf.StringVar(&baseURLFlag, "base-url", "", "provider API endpoint")
	pf.StringVar(&mailboxURLFlag, "mailbox-url", "", "endpoint accepting mailbox deletion forms")
	pf.DurationVar(&timeoutFlag, "timeout", 0, "per-attempt request timeout (default 10s)")
	pf.IntVar(&retriesFlag, "retries", -1, "retries per request (default 2)")
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(
		newGenCmd(stdout, stderr),
		newDomainsCmd(stdout, stderr),
		newMessagesCmd(stdout, stderr),
		newReadCmd(stdout, stderr),
		newDownloadCmd(stdout, stderr),
		newClearCmd(stdout, stderr),
		newWatchCmd(stdout, stderr),
		newWaitCmd(stdout, stderr),
		newSchemaCmd(stdout, stderr),
		newVersionCmd(stdout),
	)
	return root
}
