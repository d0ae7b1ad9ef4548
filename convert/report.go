package convert

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/instance"
	"github.com/google/uuid"
)

// Report is a structured failure event handed to a Reporter. Message
// formatting for humans belongs to the receiver.
type Report struct {
	ID           string            `json:"id"`
	Kind         Kind              `json:"kind"`
	Shape        elements.Shape    `json:"shape"`
	BeanName     string            `json:"bean_name"`
	DeclaredType string            `json:"declared_type,omitempty"`
	Expected     instance.Category `json:"expected,omitempty"`
	Operation    string            `json:"operation"`
	Error        string            `json:"error"`
	Timestamp    time.Time         `json:"timestamp"`
}

// NewReport builds the report for a projection error.
func NewReport(err *ProjectionError) Report {
	return Report{
		ID:           uuid.New().String(),
		Kind:         err.Kind,
		Shape:        err.Shape,
		BeanName:     err.Shape.BeanName(),
		DeclaredType: err.DeclaredType,
		Expected:     err.Expected,
		Operation:    err.Operation,
		Error:        err.Error(),
		Timestamp:    time.Now().UTC(),
	}
}

// Reporter receives failure reports. Reports are fire-and-forget: the
// converter never inspects the outcome of delivery.
type Reporter interface {
	Report(Report)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Report)

// Report calls f(r).
func (f ReporterFunc) Report(r Report) { f(r) }

// MultiReporter fans a report out to several reporters in order.
type MultiReporter []Reporter

// Report delivers r to every reporter.
func (m MultiReporter) Report(r Report) {
	for _, rep := range m {
		if rep != nil {
			rep.Report(r)
		}
	}
}

// Discard drops every report.
var Discard Reporter = ReporterFunc(func(Report) {})

// LogReporter writes reports to a structured logger. Programming defects
// (construction and invalid bean class) log at error level, data problems
// at warn.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a LogReporter. A nil logger uses slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// Report logs r.
func (l *LogReporter) Report(r Report) {
	level := slog.LevelWarn
	if r.Kind == KindBeanConstruction || r.Kind == KindInvalidBeanClass {
		level = slog.LevelError
	}
	l.logger.Log(context.Background(), level, "Projection failure",
		slog.String("id", r.ID),
		slog.String("kind", string(r.Kind)),
		slog.String("bean", r.BeanName),
		slog.String("declared_type", r.DeclaredType),
		slog.String("expected", string(r.Expected)),
		slog.String("operation", r.Operation),
		slog.String("error", r.Error))
}
