package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSnapshotCmd(root *rootFlags) *cobra.Command {
	var windowID string

	cmd := &cobra.Command{
		Use:   "snapshot <domain>",
		Short: "Look up the archived snapshot for one domain and window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			window, err := cfg.Window(windowID)
			if err != nil {
				return err
			}

			log, _, err := newRunLogger(cfg, false)
			if err != nil {
				return err
			}

			index, _, err := newArchiveClients(cfg, log)
			if err != nil {
				return err
			}

			snap, err := index.FindSnapshot(cmd.Context(), args[0], window.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Timestamp: %s\n", snap.Timestamp)
			fmt.Fprintf(out, "Original:  %s\n", snap.URL)
			fmt.Fprintf(out, "Archive:   %s\n", snap.ArchiveURL)

			return nil
		},
	}

	cmd.Flags().StringVarP(&windowID, "window", "w", "pre_ira", "analysis window id")

	return cmd
}
