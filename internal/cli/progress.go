package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// steps показывает ход экспорта по шагам.
type steps struct {
	bar *progressbar.ProgressBar
}

func newSteps(w io.Writer, total int, description string) *steps {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]%s[reset]", description)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
	return &steps{bar: bar}
}

func (s *steps) done(description string) {
	s.bar.Describe(fmt.Sprintf("[cyan][bold]%s[reset]", description))
	if err := s.bar.Add(1); err != nil {
		log.Warn().Err(err).Msg("failed to update progress bar")
	}
}
