package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/onesecmail/client-go/internal/api"
)

func newSchemaCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [type]",
		Short: "Print the JSON Schema of the provider's objects",
		Long: `Print the JSON Schema of the objects the provider returns. Responses
that do not match these schemas are rejected.

Without a type, all schemas are printed keyed by type name.`,
		Example: `  onesecmail schema
  onesecmail schema Message`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if doSchema(args, stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
}

func doSchema(args []string, stdout, stderr io.Writer) int {
	schemas := api.Schemas()

	var v any = schemas
	if len(args) == 1 {
		s, ok := schemas[args[0]]
		if !ok {
			names := make([]string, 0, len(schemas))
			for name := range schemas {
				names = append(names, name)
			}
			slices.Sort(names)
			fmt.Fprintf(stderr, "onesecmail schema: unknown type %q (want one of %s)\n", //nolint:errcheck // best-effort stderr
				args[0], strings.Join(names, ", "))
			return 1
		}
		v = s
	}

	if err := writeJSON(stdout, v); err != nil {
		fmt.Fprintf(stderr, "onesecmail schema: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	return 0
}
