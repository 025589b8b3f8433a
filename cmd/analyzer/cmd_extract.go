package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExtractCmd(root *rootFlags) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "extract <archive-url>",
		Short: "Fetch one archived capture and print its extracted text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			log, _, err := newRunLogger(cfg, false)
			if err != nil {
				return err
			}

			_, extractor, err := newArchiveClients(cfg, log)
			if err != nil {
				return err
			}

			content, err := extractor.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Words: %d\n", content.WordCount)

			if !quiet {
				fmt.Fprintln(out, content.Text)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the word count")

	return cmd
}
