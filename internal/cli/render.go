package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rental-inspector/internal/infrastructure/detector"
)

var renderFlags struct {
	annotations string
	before      string
	after       string
	out         string
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Build the report from a saved detector response",
	Long: `Render builds the report from a detector response saved as JSON, without
contacting the detector service. The photos are used for the damage previews.`,
	Example: `  inspector render --annotations result.json --before a.jpg --after b.jpg --out report.pdf`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)

		raw, err := os.ReadFile(renderFlags.annotations)
		if err != nil {
			return fmt.Errorf("read annotations: %w", err)
		}
		detection, err := detector.Parse(raw, viper.GetBool("strict_severity"))
		if err != nil {
			return err
		}

		before, after, err := readPair(renderFlags.before, renderFlags.after)
		if err != nil {
			return err
		}

		svc, err := newInspectionService(false)
		if err != nil {
			return err
		}

		progress := newSteps(cmd.ErrOrStderr(), 3, "Rendering report")
		analysis, err := svc.BuildAnalysis(ctx, detection, before, after)
		if err != nil {
			return err
		}
		progress.done("Exporting PDF")

		return exportAnalysis(cmd, svc, analysis, renderFlags.out, progress)
	},
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderFlags.annotations, "annotations", "", "detector response JSON")
	f.StringVar(&renderFlags.before, "before", "", "photo taken before the rental")
	f.StringVar(&renderFlags.after, "after", "", "photo taken after the rental")
	f.StringVarP(&renderFlags.out, "out", "o", "inspection-report.pdf", "output PDF path")
	_ = renderCmd.MarkFlagRequired("annotations")
	_ = renderCmd.MarkFlagRequired("before")
	_ = renderCmd.MarkFlagRequired("after")
}
