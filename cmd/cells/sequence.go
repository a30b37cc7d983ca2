package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cells/internal/presentation/tui"
	"github.com/aretw0/cells/pkg/sequence"
)

func newSequenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence <file.yaml>",
		Short: "Normalize a raw attribute declaration",
		Long:  `Reads a YAML declaration bundle and prints the classified attributes, or their JSON form with --json.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := sequence.FromYAML(data)
			if err != nil {
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if !asJSON {
				tui.PrintAttributes(cmd.OutOrStdout(), d)
				return nil
			}
			out, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return fmt.Errorf("encode dna: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().Bool("json", false, "Print the sequenced dna as JSON")
	return cmd
}
