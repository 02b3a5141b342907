package main

import (
	"github.com/spf13/cobra"

	"github.com/MKhiriev/medsync/internal/client"
)

func (c *cli) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Deliver the outbox now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), client.Options{UnlockKeys: true}, func(app *client.App) error {
				return c.reportCycle(app.SyncNow(cmd.Context()))
			})
		},
	}
}

func (c *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sync daemon until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), client.Options{UnlockKeys: true}, func(app *client.App) error {
				c.notify.Info("Sync daemon running", "press Ctrl+C to stop")
				if err := app.Run(cmd.Context()); err != nil {
					return c.fail("Sync daemon stopped", err)
				}
				c.notify.Info("Sync daemon stopped")
				return nil
			})
		},
	}
}

func (c *cli) fetchCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print a stored record view from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), client.Options{}, func(app *client.App) error {
				body, err := app.Fetch(cmd.Context(), id)
				if err != nil {
					return c.fail("Fetch failed", err)
				}
				_, err = c.out.Write(append(body, '\n'))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "record id")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
