// analyzer compares archived corporate web messaging before and after the Inflation
// Reduction Act.
//
// Usage:
//
//	analyzer run --csv <export.csv> [--sample N] [--output <file>] [--report <file>]
//	analyzer snapshot <domain> --window <id>
//	analyzer extract <archive-url>
//	analyzer config init [file]
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "analyzer",
		Short: "Corporate messaging change analysis across archived website snapshots",
		Long: "analyzer looks up one archived page per company in a before and an after window,\n" +
			"extracts its text, and asks a language model to characterize the change.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadEnv(flags.envFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML configuration file (defaults when empty)")
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file with API credentials (ignored when absent)")
	pf.StringVar(&flags.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newSnapshotCmd(flags))
	root.AddCommand(newExtractCmd(flags))
	root.AddCommand(newConfigCmd())

	return root
}

// loadEnv reads path into the environment without overriding variables already set.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
