package main

import (
	"github.com/spf13/cobra"

	"github.com/MKhiriev/medsync/internal/client"
)

func (c *cli) keysCmd() *cobra.Command {
	keys := &cobra.Command{
		Use:   "keys",
		Short: "Manage the local key ring",
	}

	var overwrite bool
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Create a new key ring protected by the passphrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config()
			if err != nil {
				return c.fail("Key generation failed", err)
			}
			if err = client.GenerateKeys(cfg.App.KeysPath, cfg.App.KeysPassphrase, overwrite); err != nil {
				return c.fail("Key generation failed", err)
			}
			c.notify.Success("Key ring created", cfg.App.KeysPath,
				"Share the output of `medsync keys export-public` with the server operator.")
			return nil
		},
	}
	generate.Flags().BoolVar(&overwrite, "force", false, "replace an existing key ring")

	export := &cobra.Command{
		Use:   "export-public",
		Short: "Print the PEM public key used by the server to verify signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config()
			if err != nil {
				return c.fail("Export failed", err)
			}
			if err = client.ExportPublicKey(cfg.App.KeysPath, cfg.App.KeysPassphrase, c.out); err != nil {
				return c.fail("Export failed", err)
			}
			return nil
		},
	}

	keys.AddCommand(generate, export)
	return keys
}
