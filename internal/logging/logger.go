package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

var (
	log     = newLogger(os.Stdout)
	service string
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Configure sets the level and the service name stamped on every entry.
// Unknown levels leave the logger at info.
func Configure(level, serviceName string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
	service = serviceName
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(out io.Writer) {
	log.SetOutput(out)
}

// Logger returns the base entry carrying the service name.
func Logger() *logrus.Entry {
	return log.WithField("service.name", service)
}

// WithContext returns a logger with trace context fields (trace_id, span_id) if available
func WithContext(ctx context.Context) *logrus.Entry {
	entry := Logger()

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		entry = entry.WithFields(logrus.Fields{
			"trace_id":    spanCtx.TraceID().String(),
			"span_id":     spanCtx.SpanID().String(),
			"trace_flags": spanCtx.TraceFlags().String(),
		})
	}

	return entry
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	WithContext(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	WithContext(ctx).Errorf(format, args...)
}
