package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	onesecmail "github.com/onesecmail/client-go"
	"github.com/onesecmail/client-go/internal/digest"
)

func newDownloadCmd(stdout, stderr io.Writer) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download <address> <id> <filename>",
		Short: "Save a message attachment",
		Long: `Download an attachment of a message and save it to disk.

The file is written to --output, or to the attachment's base name in the
current directory. The BLAKE2b-256 digest of the saved bytes is printed.`,
		Example: `  onesecmail download abc123@1secmail.com 639 report.pdf
  onesecmail download abc123@1secmail.com 639 report.pdf -o /tmp/r.pdf`,
		Args: cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			if cmdDownload(args, output, stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "path to write the file to")
	return cmd
}

func cmdDownload(args []string, output string, stdout, stderr io.Writer) int {
	s := openSession(stderr, "onesecmail download")
	if s == nil {
		return 1
	}
	defer s.close()
	return doDownload(s.ctx, s.client, args, output, stdout, stderr)
}

func doDownload(ctx context.Context, client *onesecmail.Client, args []string, output string, stdout, stderr io.Writer) int {
	msg, code := fetchMessage(ctx, client, args[:2], "onesecmail download", stderr)
	if msg == nil {
		return code
	}

	filename := args[2]
	var att *onesecmail.Attachment
	for _, a := range msg.Attachments {
		if a.Filename == filename {
			att = a
			break
		}
	}
	if att == nil {
		fmt.Fprintf(stderr, "onesecmail download: %s: %v\n", filename, onesecmail.ErrAttachmentNotFound) //nolint:errcheck // best-effort stderr
		return 1
	}

	data, err := att.Download(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "onesecmail download: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	if output == "" {
		output = filepath.Base(filename)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		fmt.Fprintf(stderr, "onesecmail download: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	fmt.Fprintf(stdout, "Saved %s (%d bytes, %s)\n", output, len(data), digest.Of(data)) //nolint:errcheck // best-effort stdout
	return 0
}
