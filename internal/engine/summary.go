package engine

import "github.com/khushveer007/courseget/internal/logger"

// Failure identifies one asset that exhausted its retries.
type Failure struct {
	Path  string
	Error string
}

// Summary aggregates the outcome of one run. A run that attempted every
// asset is considered complete even when individual assets failed; failed
// assets are listed for manual follow-up and retried on the next invocation.
type Summary struct {
	Succeeded    int
	Failed       int
	Skipped      int
	Uploaded     int
	UploadFailed int
	Failures     []Failure
}

// Print writes the terminal summary to the console.
func (s *Summary) Print() {
	logger.Header("Run summary")
	logger.Success("Downloaded: %d", s.Succeeded)
	logger.Info("Skipped (already present): %d", s.Skipped)

	if s.Uploaded > 0 || s.UploadFailed > 0 {
		logger.Info("Archived: %d (failed: %d)", s.Uploaded, s.UploadFailed)
	}

	if s.Failed == 0 {
		logger.Success("Failed: 0")
		return
	}

	logger.Error("Failed: %d", s.Failed)

	for _, f := range s.Failures {
		logger.Error("  %s: %s", f.Path, f.Error)
	}

	logger.Info("Re-run without -reset to retry failed assets.")
}
