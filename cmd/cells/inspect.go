package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cells/internal/presentation/graph"
	"github.com/aretw0/cells/internal/presentation/tui"
	"github.com/aretw0/cells/pkg/organism"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <blueprint.yaml>",
		Short: "Display the organism tree of a blueprint",
		Long:  `Builds the blueprint and prints each organism's attributes, a Mermaid diagram (--mermaid) or a rendered Markdown document (--markdown).`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := grow(args[0])
			if err != nil {
				return err
			}
			defer root.Apoptosis()

			out := cmd.OutOrStdout()
			mermaid, _ := cmd.Flags().GetBool("mermaid")
			markdown, _ := cmd.Flags().GetBool("markdown")
			switch {
			case mermaid:
				highlight, _ := cmd.Flags().GetStringSlice("highlight")
				fmt.Fprint(out, graph.GenerateMermaid(root, &graph.Overlay{Highlight: highlight}))
			case markdown:
				raw, _ := cmd.Flags().GetBool("raw")
				doc := graph.GenerateMarkdown(root)
				if !raw {
					render, err := tui.NewRenderer(100)
					if err != nil {
						return err
					}
					if doc, err = render(doc); err != nil {
						return err
					}
				}
				fmt.Fprint(out, doc)
			default:
				printTree(cmd, root, "")
			}
			return nil
		},
	}
	cmd.Flags().Bool("mermaid", false, "Print a Mermaid diagram")
	cmd.Flags().StringSlice("highlight", nil, "Organisms to highlight in the diagram")
	cmd.Flags().Bool("markdown", false, "Print a Markdown document")
	cmd.Flags().Bool("raw", false, "Do not render the Markdown document")
	return cmd
}

func printTree(cmd *cobra.Command, o *organism.Organism, path string) {
	label := o.Name()
	if path != "" {
		label = path + " (" + o.Name() + ")"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]\n", label, o.Stage())
	tui.PrintAttributes(cmd.OutOrStdout(), o.Dna())
	for _, slot := range o.Slots() {
		child, _ := o.Child(slot)
		next := slot
		if path != "" {
			next = path + "/" + slot
		}
		printTree(cmd, child, next)
	}
}
