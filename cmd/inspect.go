package cmd

import (
	"conductorsync/internal/conductor"
	"conductorsync/internal/formatting"

	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var (
		format string
		color  bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the DNAs, instances and interfaces of a conductor config",
		Long: `Parses a conductor configuration (a file, or stdin when no file is given)
and prints its DNAs, instances and interface attachments.

Output formats:
  table  Rich tables (default)
  json   Structured summary as JSON
  yaml   Structured summary as YAML`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := formatting.ParseFormat(format)
			if err != nil {
				return err
			}

			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			cfg, err := conductor.Parse(string(data))
			if err != nil {
				return err
			}

			formatter := formatting.NewFormatter(formatting.Options{Format: outputFormat, Color: color})
			return formatter.FormatConfiguration(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(formatting.FormatTable), "Output format: table, json or yaml")
	cmd.Flags().BoolVar(&color, "color", false, "Color table headers")

	return cmd
}
