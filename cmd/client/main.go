package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/medsync/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewClientLogger("medsync-client", "")

	root := newRootCmd(os.Stdout, log)
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func versionString() string {
	v, d, c := buildVersion, buildDate, buildCommit
	if v == "" {
		v = "N/A"
	}
	if d == "" {
		d = "N/A"
	}
	if c == "" {
		c = "N/A"
	}
	return fmt.Sprintf("%s (built %s, commit %s)", v, d, c)
}
