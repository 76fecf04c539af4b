package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	app "rental-inspector/internal/application"
)

var analyzeFlags struct {
	before string
	after  string
	out    string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a before/after photo pair and export the PDF report",
	Example: `  inspector analyze --before pickup.jpg --after return.jpg --out report.pdf
  INSPECTOR_DETECTOR_URL=http://detector:8000 inspector analyze --before a.jpg --after b.jpg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)

		before, after, err := readPair(analyzeFlags.before, analyzeFlags.after)
		if err != nil {
			return err
		}

		svc, err := newInspectionService(true)
		if err != nil {
			return err
		}

		progress := newSteps(cmd.ErrOrStderr(), 3, "Detecting damage")
		analysis, err := svc.AnalyzePair(ctx, before, after)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		progress.done("Rendering report")

		return exportAnalysis(cmd, svc, analysis, analyzeFlags.out, progress)
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.before, "before", "", "photo taken before the rental")
	f.StringVar(&analyzeFlags.after, "after", "", "photo taken after the rental")
	f.StringVarP(&analyzeFlags.out, "out", "o", "inspection-report.pdf", "output PDF path")
	_ = analyzeCmd.MarkFlagRequired("before")
	_ = analyzeCmd.MarkFlagRequired("after")
}

// exportAnalysis печатает отчёт и записывает PDF, собранный из того же
// экземпляра отчёта.
func exportAnalysis(cmd *cobra.Command, svc *app.InspectionService, analysis *app.Analysis, out string, progress *steps) error {
	doc, err := svc.ExportAnalysis(commandContext(cmd), analysis)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	progress.done("Writing PDF")

	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	progress.done("Done")

	w := cmd.OutOrStdout()
	fmt.Fprint(w, RenderReport(analysis.Report))
	fmt.Fprintln(w, SuccessStyle.Render("Report written to "+out))
	return nil
}
