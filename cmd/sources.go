package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered deal sources",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	reg := buildRegistry(buildLogger())
	for _, name := range reg.Sources() {
		marker := "  "
		if name == cfg.DefaultSource {
			marker = "* "
		}
		fmt.Fprintf(os.Stdout, "%s%s\n", marker, name)
	}
	return nil
}
