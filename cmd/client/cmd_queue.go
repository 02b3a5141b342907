package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/medsync/internal/client"
	"github.com/MKhiriev/medsync/internal/service"
)

func (c *cli) enqueueCmd() *cobra.Command {
	var (
		recordType string
		data       string
		syncAfter  bool
	)

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a record mutation for the next sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := client.Options{UnlockKeys: syncAfter}
			return c.withApp(cmd.Context(), opts, func(app *client.App) error {
				id, err := app.Services().QueueService.Enqueue(cmd.Context(), recordType, json.RawMessage(data))
				if err != nil {
					return c.fail("Enqueue failed", err)
				}
				c.notify.Success("Mutation queued", "queue id "+strconv.FormatInt(id, 10), "type "+recordType)

				if !syncAfter {
					return nil
				}
				return c.reportCycle(app.SyncNow(cmd.Context()))
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&recordType, "type", "t", "", "record type")
	f.StringVarP(&data, "data", "d", "", "record data as a JSON document")
	f.BoolVar(&syncAfter, "sync", false, "sync right after queueing")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func (c *cli) queueCmd() *cobra.Command {
	queue := &cobra.Command{
		Use:   "queue",
		Short: "Inspect or reset the local outbox",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show how many mutations wait for delivery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), client.Options{}, func(app *client.App) error {
				st, err := app.Services().QueueService.Status(cmd.Context())
				if err != nil {
					return c.fail("Queue unavailable", err)
				}
				c.notify.Info("Outbox", fmt.Sprintf("%d pending", st.Pending))
				return nil
			})
		},
	}

	var yes bool
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Discard every pending mutation without sending it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return c.fail("Purge refused", fmt.Errorf("pending mutations are lost for good; pass --yes to confirm"))
			}
			return c.withApp(cmd.Context(), client.Options{}, func(app *client.App) error {
				n, err := app.Services().QueueService.Purge(cmd.Context())
				if err != nil {
					return c.fail("Purge failed", err)
				}
				c.notify.Success("Outbox purged", fmt.Sprintf("%d removed", n))
				return nil
			})
		},
	}
	purge.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the purge")

	queue.AddCommand(status, purge)
	return queue
}

// reportCycle renders the result of a sync cycle.
func (c *cli) reportCycle(res service.CycleResult, err error) error {
	if err != nil {
		return c.fail("Sync failed", err)
	}

	switch res.Outcome {
	case service.OutcomeSkipped:
		c.notify.Info("Sync skipped", string(res.Skip))
	default:
		c.notify.Success("Sync complete", fmt.Sprintf("%d of %d sent", res.Sent, res.Drained))
	}
	return nil
}
