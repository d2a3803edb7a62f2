//nolint:gochecknoglobals
package log

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mchub",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "The latency of the HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	httpRequestsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mchub",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of the HTTP requests.",
	}, []string{"route", "method", "code"})
)

// NewFiberLogger logs every request; successful ones only at debug level.
func NewFiberLogger(logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("logger", "http"))

	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		wt := time.Since(start)

		status := c.Response().StatusCode()
		if chainErr != nil {
			if e, ok := chainErr.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		httpRequestsDuration.WithLabelValues(route).Observe(wt.Seconds())
		httpRequestsCount.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()

		msg := fmt.Sprintf("%d %s %s", status, c.Method(), c.Path())
		attrs := []any{
			slog.String("client", c.IP()+":"+c.Port()),
			slog.Int64("ms", wt.Milliseconds()),
		}

		if chainErr != nil {
			attrs = append(attrs, slog.Any("error", chainErr))
		}

		switch {
		case status < 400:
			logger.Debug(msg, attrs...)
		case status < 500:
			logger.Info(msg, attrs...)
		default:
			logger.Warn(msg, attrs...)
		}

		return chainErr
	}
}
