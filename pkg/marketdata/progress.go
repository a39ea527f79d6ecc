package marketdata

import (
	"io"

	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
)

// progressSteps is the resolution of the rendered bar.
const progressSteps = 1000

// NewProgressReporter renders download progress as a terminal bar on w.
// Providers report in their own units, so the bar tracks the ratio only.
func NewProgressReporter(w io.Writer, description string) provider.OnDownloadProgress {
	bar := progressbar.NewOptions(progressSteps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)

	return func(current float64, total float64, message string) {
		if total <= 0 {
			return
		}

		step := int(current / total * progressSteps)
		step = max(0, min(step, progressSteps))

		bar.Describe(message)
		_ = bar.Set(step)
	}
}
