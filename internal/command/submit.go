package command

import (
	"fmt"
	"log/slog"
)

// Submit accepts a payload command. Nothing is dispatched yet, the call always succeeds.
func Submit(logger *slog.Logger, cmd string) string {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("sending payload command", slog.String("command", cmd))
	submittedMetric.Inc()

	return fmt.Sprintf("Command '%s' sent successfully", cmd)
}
