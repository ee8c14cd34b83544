package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	onesecmail "github.com/onesecmail/client-go"
	"github.com/onesecmail/client-go/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// session is what a command needs to talk to the provider.
type session struct {
	ctx       context.Context
	client    *onesecmail.Client
	telemetry *telemetry.Provider
	stop      context.CancelFunc
}

// openSession loads the config, installs telemetry and creates a client.
// On failure it writes the error to stderr prefixed with name and returns
// nil.
func openSession(stderr io.Writer, name string) *session {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err) //nolint:errcheck // best-effort stderr
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	tp, err := telemetry.Init(ctx, cfg.Telemetry.otel())
	if err != nil {
		stop()
		fmt.Fprintf(stderr, "%s: telemetry: %v\n", name, err) //nolint:errcheck // best-effort stderr
		return nil
	}

	client, err := newClient(cfg)
	if err != nil {
		stop()
		_ = tp.Shutdown(context.Background())
		fmt.Fprintf(stderr, "%s: %v\n", name, err) //nolint:errcheck // best-effort stderr
		return nil
	}
	return &session{ctx: ctx, client: client, telemetry: tp, stop: stop}
}

// newClient builds a client from the resolved settings.
func newClient(cfg *cliConfig) (*onesecmail.Client, error) {
	var opts []onesecmail.Option
	if cfg.BaseURL != "" {
		opts = append(opts, onesecmail.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MailboxURL != "" {
		opts = append(opts, onesecmail.WithMailboxURL(cfg.MailboxURL))
	}
	if cfg.Timeout != 0 {
		opts = append(opts, onesecmail.WithTimeout(cfg.Timeout))
	}
	if cfg.Retries != nil {
		opts = append(opts, onesecmail.WithRetries(*cfg.Retries))
	}
	return onesecmail.New(opts...)
}

func (s *session) close() {
	s.client.Close() //nolint:errcheck // Close never fails
	s.stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.telemetry.Shutdown(ctx)
}
