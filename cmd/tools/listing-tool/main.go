// cmd/tools/listing-tool/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	format     string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "listing-tool",
		Short: "Query, validate and load listing seed files",
		Long: `listing-tool works with listing seed files (JSON or YAML).

query and validate run offline against a file. import, export and reindex
talk to the document store configured for the worker manager.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (defaults to the worker manager lookup)")
	root.PersistentFlags().StringVar(&opts.format, "format", "table", "Output format: table or json")

	root.AddCommand(
		newQueryCommand(opts),
		newValidateCommand(opts),
		newImportCommand(opts),
		newExportCommand(opts),
		newReindexCommand(opts),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
