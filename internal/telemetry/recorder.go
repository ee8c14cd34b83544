// Package telemetry records API calls and mailbox watch activity as
// OpenTelemetry metrics and log events.
//
// Recording goes through the global MeterProvider and LoggerProvider, which
// are no-ops until Init (or the host application) installs real ones.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterRecorderName = "github.com/onesecmail/client-go"
	loggerName        = "onesecmail"
)

// Tick outcomes.
const (
	StatusOK        = "ok"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// recorderInstruments holds all lazy-initialized OTel metric instruments.
type recorderInstruments struct {
	apiRequestTotal     metric.Int64Counter
	apiAttemptTotal     metric.Int64Counter
	pollTickTotal       metric.Int64Counter
	pollMessageTotal    metric.Int64Counter
	watchLifecycleTotal metric.Int64Counter

	apiDurationHist  metric.Float64Histogram
	pollDurationHist metric.Float64Histogram
}

var (
	instOnce sync.Once
	inst     recorderInstruments
)

// initInstruments registers the instruments against the current global
// MeterProvider. Called lazily on first use.
func initInstruments() {
	instOnce.Do(func() {
		m := otel.GetMeterProvider().Meter(meterRecorderName)

		inst.apiRequestTotal, _ = m.Int64Counter("onesecmail.api.requests.total",
			metric.WithDescription("Total provider API calls"),
		)
		inst.apiAttemptTotal, _ = m.Int64Counter("onesecmail.api.attempts.total",
			metric.WithDescription("Total HTTP attempts including retries"),
		)
		inst.pollTickTotal, _ = m.Int64Counter("onesecmail.poll.ticks.total",
			metric.WithDescription("Total mailbox polling ticks"),
		)
		inst.pollMessageTotal, _ = m.Int64Counter("onesecmail.poll.messages.total",
			metric.WithDescription("Total new messages emitted by mailbox watches"),
		)
		inst.watchLifecycleTotal, _ = m.Int64Counter("onesecmail.watch.lifecycle.total",
			metric.WithDescription("Total mailbox watch start/stop transitions"),
		)

		inst.apiDurationHist, _ = m.Float64Histogram("onesecmail.api.duration_ms",
			metric.WithDescription("Provider API call latency in milliseconds, retries included"),
			metric.WithUnit("ms"),
		)
		inst.pollDurationHist, _ = m.Float64Histogram("onesecmail.poll.duration_ms",
			metric.WithDescription("Polling tick latency in milliseconds"),
			metric.WithUnit("ms"),
		)
	})
}

// statusStr returns "ok" or "error" depending on whether err is nil.
func statusStr(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// emit sends an OTel log event with the given body and key-value attributes.
func emit(ctx context.Context, body string, sev otellog.Severity, attrs ...otellog.KeyValue) {
	logger := global.GetLoggerProvider().Logger(loggerName)
	var r otellog.Record
	r.SetTimestamp(time.Now())
	r.SetBody(otellog.StringValue(body))
	r.SetSeverity(sev)
	r.AddAttributes(attrs...)
	logger.Emit(ctx, r)
}

// errKV returns a log KeyValue with the error message, or empty string if nil.
func errKV(err error) otellog.KeyValue {
	if err != nil {
		return otellog.String("error", err.Error())
	}
	return otellog.String("error", "")
}

// severity returns SeverityInfo on success, SeverityError on failure.
func severity(err error) otellog.Severity {
	if err != nil {
		return otellog.SeverityError
	}
	return otellog.SeverityInfo
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// RecordAPIRequest records one API Client call (metrics + log event).
// attempts counts every HTTP attempt made, retries included; statusCode is
// zero when no response was received.
func RecordAPIRequest(ctx context.Context, action string, attempts, statusCode int, elapsed time.Duration, err error) {
	initInstruments()
	status := statusStr(err)
	attrs := metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", status),
	)
	inst.apiRequestTotal.Add(ctx, 1, attrs)
	inst.apiAttemptTotal.Add(ctx, int64(attempts), attrs)
	inst.apiDurationHist.Record(ctx, millis(elapsed), attrs)
	emit(ctx, "api.request", severity(err),
		otellog.String("action", action),
		otellog.Int("attempts", attempts),
		otellog.Int("http_status", statusCode),
		otellog.Float64("duration_ms", millis(elapsed)),
		otellog.String("status", status),
		errKV(err),
	)
}

// RecordPollTick records the outcome of one polling tick. status is one of
// StatusOK, StatusError or StatusCancelled.
func RecordPollTick(ctx context.Context, watchID, mailbox, status string, newMessages int, elapsed time.Duration, err error) {
	initInstruments()
	attrs := metric.WithAttributes(
		attribute.String("mailbox", mailbox),
		attribute.String("status", status),
	)
	inst.pollTickTotal.Add(ctx, 1, attrs)
	inst.pollDurationHist.Record(ctx, millis(elapsed), attrs)
	if newMessages > 0 {
		inst.pollMessageTotal.Add(ctx, int64(newMessages),
			metric.WithAttributes(attribute.String("mailbox", mailbox)),
		)
	}
	sev := severity(err)
	if status == StatusCancelled {
		sev = otellog.SeverityDebug
	}
	emit(ctx, "poll.tick", sev,
		otellog.String("watch_id", watchID),
		otellog.String("mailbox", mailbox),
		otellog.String("status", status),
		otellog.Int("new_messages", newMessages),
		otellog.Float64("duration_ms", millis(elapsed)),
		errKV(err),
	)
}

// RecordWatchLifecycle records a watch transition ("start" or "stop").
func RecordWatchLifecycle(ctx context.Context, watchID, mailbox, event string, interval time.Duration) {
	initInstruments()
	inst.watchLifecycleTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("mailbox", mailbox),
			attribute.String("event", event),
		),
	)
	emit(ctx, "watch."+event, otellog.SeverityInfo,
		otellog.String("watch_id", watchID),
		otellog.String("mailbox", mailbox),
		otellog.String("interval", interval.String()),
	)
}
