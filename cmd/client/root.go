package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/medsync/internal/client"
	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/notify"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	server     string
	dsn        string
	keysPath   string
	passphrase string
	timeout    time.Duration

	root   *cobra.Command
	notify *notify.Notifier
	out    io.Writer
	logger *logger.Logger
}

func newRootCmd(out io.Writer, log *logger.Logger) *cobra.Command {
	c := &cli{notify: notify.New(out), out: out, logger: log}

	c.root = &cobra.Command{
		Use:   "medsync",
		Short: "Offline-first encrypted record sync client",
		Long: `medsync queues record mutations locally, encrypts and signs them,
and delivers them to the ingest server whenever it is reachable.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := c.root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "path to a JSON or YAML config file")
	pf.StringVarP(&c.server, "server", "s", "", "ingest server base URL")
	pf.StringVar(&c.dsn, "db", "", "outbox SQLite file")
	pf.StringVarP(&c.keysPath, "keys", "k", "", "key ring file")
	pf.StringVarP(&c.passphrase, "passphrase", "p", "", "key ring passphrase (or APP_KEYS_PASSPHRASE)")
	pf.DurationVar(&c.timeout, "timeout", 0, "per-request timeout")

	c.root.AddCommand(
		c.keysCmd(),
		c.enqueueCmd(),
		c.syncCmd(),
		c.queueCmd(),
		c.runCmd(),
		c.fetchCmd(),
	)

	return c.root
}

// overrides collects the persistent flags the user actually set, so that
// unset flags never mask environment values.
func (c *cli) overrides() *config.StructuredConfig {
	o := &config.StructuredConfig{}
	pf := c.root.PersistentFlags()

	if pf.Changed("config") {
		o.FilePath = c.configPath
	}
	if pf.Changed("server") {
		o.Adapter.HTTPAddress = c.server
	}
	if pf.Changed("db") {
		o.Storage.DB.DSN = c.dsn
	}
	if pf.Changed("keys") {
		o.App.KeysPath = c.keysPath
	}
	if pf.Changed("passphrase") {
		o.App.KeysPassphrase = c.passphrase
	}
	if pf.Changed("timeout") {
		o.Adapter.RequestTimeout = c.timeout
	}

	return o
}

func (c *cli) config() (*config.ClientConfig, error) {
	return config.GetClientConfig(c.overrides())
}

// withApp builds a client app for the duration of fn.
func (c *cli) withApp(ctx context.Context, opts client.Options, fn func(app *client.App) error) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	app, err := client.NewApp(ctx, cfg, opts, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			c.logger.Warn().Err(cerr).Msg("close client")
		}
	}()

	return fn(app)
}

// fail shows err to the user and hands it back to cobra.
func (c *cli) fail(title string, err error) error {
	c.notify.Failure(title, err)
	return err
}
