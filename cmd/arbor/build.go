package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/plan"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [plan]",
		Short: "Replay a plan file and print the rendered tree",
		Long: `Reads a YAML or JSON plan, replays its steps onto a fresh tree and prints
the graph description. Failed insertions are reported on stderr; their nodes
stay in the tree unattached.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" && len(args) > 0 {
				file = args[0]
			}
			if file == "" {
				return errors.New("a plan file is required (use --file or pass it as an argument)")
			}

			p, err := plan.Load(file)
			if err != nil {
				return err
			}
			return runPlan(cmd, p)
		},
	}

	addRenderFlags(cmd)
	cmd.Flags().StringP("file", "f", "", "Plan file (.yaml, .yml or .json)")
	cmd.Flags().Bool("stop-on-error", false, "Stop at the first failed insertion and exit non-zero")
	return cmd
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", string(tree.FormatDOT), "Output format: dot or mermaid")
	cmd.Flags().Bool("pretty", false, "Render a markdown summary (only when stdout is a terminal)")
	cmd.Flags().String("style", "auto", "Glamour style used by --pretty")
}

// runPlan replays p onto a new tree and writes the result to the command output.
func runPlan(cmd *cobra.Command, p *plan.Plan) error {
	_, logger, err := settings(cmd)
	if err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := tree.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	mode := plan.ContinueOnError
	if stop, _ := cmd.Flags().GetBool("stop-on-error"); stop {
		mode = plan.StopOnError
	}

	b := arbor.Create(tree.WithName(p.Name), tree.WithLogger(logger))
	report, err := plan.Apply(cmd.Context(), b, p, mode)
	if report == nil {
		return err
	}

	out, err := b.RenderAs(format)
	if err != nil {
		return err
	}

	var failures []string
	for _, f := range report.Failed {
		failures = append(failures, f.Err.Error())
		fmt.Fprintln(cmd.ErrOrStderr(), f.Err)
	}

	pretty, _ := cmd.Flags().GetBool("pretty")
	if pretty && isTerminal(cmd.OutOrStdout()) {
		style, _ := cmd.Flags().GetString("style")
		if err := printPretty(cmd.OutOrStdout(), style, tui.Stats{
			Name:     p.Name,
			Nodes:    b.NodeCount(),
			Edges:    b.EdgeCount(),
			Failures: failures,
		}, string(format), out); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), out)
		fmt.Fprintf(cmd.OutOrStdout(), "%d nodes in this tree\n", b.NodeCount())
	}

	if mode == plan.StopOnError && len(report.Failed) > 0 {
		return fmt.Errorf("stopped after step %d", report.Failed[0].Step)
	}
	return nil
}

func printPretty(w io.Writer, style string, stats tui.Stats, lang, rendered string) error {
	render, err := tui.NewRenderer(style)
	if err != nil {
		return err
	}
	md, err := render(tui.Summary(stats, lang, rendered))
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	fmt.Fprint(w, md)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && tui.IsTerminal(f)
}
