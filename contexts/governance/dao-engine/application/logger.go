package application

import "log/slog"

// ModuleName tags every log line and event emitted by this context.
const ModuleName = "governance/dao-engine"

// ResolveLogger guarantees a non-nil logger for application/worker code paths.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
