package services

import (
	"log/slog"
	"strings"
)

// LogReporter writes outcome summaries to a structured logger. It is the
// default Reporter; the CLI layers a stdout printer on top of it.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter over the given logger
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Notice(msg string) {
	r.logger.Info(msg)
}

func (r *LogReporter) Warning(msg string) {
	r.logger.Warn(msg)
}

func (r *LogReporter) SyncSummary(result *SyncResult) {
	if result == nil {
		return
	}
	if result.Empty() {
		r.logger.Info("sync complete, nothing to do")
		return
	}
	r.logger.Info("sync complete",
		"created_in_gmail", strings.Join(result.CreatedInGmail, ", "),
		"added_to_sheet", strings.Join(result.AddedToSheet, ", "),
		"failures", len(result.Failures))
	for _, f := range result.Failures {
		r.logger.Warn("sync failure", "label", f.Name, "error", f.Err)
	}
}
