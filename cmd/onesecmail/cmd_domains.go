package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	onesecmail "github.com/onesecmail/client-go"
)

func newDomainsCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List the domains the provider serves",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if cmdDomains(stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
}

func cmdDomains(stdout, stderr io.Writer) int {
	s := openSession(stderr, "onesecmail domains")
	if s == nil {
		return 1
	}
	defer s.close()
	return doDomains(s.ctx, s.client, stdout, stderr)
}

func doDomains(ctx context.Context, client *onesecmail.Client, stdout, stderr io.Writer) int {
	domains, err := client.GetDomainList(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "onesecmail domains: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	for _, d := range domains {
		fmt.Fprintln(stdout, d) //nolint:errcheck // best-effort stdout
	}
	return 0
}
