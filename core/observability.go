package core

import (
	"context"
	"maps"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Observer couples a logger with a metrics recorder for operation-level
// telemetry. The zero value discards everything.
type Observer struct {
	Logger  Logger
	Metrics MetricsRecorder
	// Prefix namespaces metric names, e.g. "payzcore.transport".
	Prefix string
}

func (o Observer) ObserveOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	elapsed := time.Since(startedAt)

	contextFields := cloneMap(fields)
	contextFields["event_type"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = elapsed.Milliseconds()
	if err != nil {
		contextFields["error"] = err.Error()
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	for _, key := range []string{"method", "status_code", "error_kind", "event"} {
		if value, ok := fields[key]; ok {
			if text := strings.TrimSpace(toTagValue(value)); text != "" {
				tags[key] = text
			}
		}
	}

	o.IncCounter(ctx, operation+".total", 1, tags)
	o.ObserveHistogram(ctx, operation+".duration_ms", float64(elapsed.Milliseconds()), tags)

	if err != nil {
		o.Log(ctx, "error", operation+" failed", contextFields)
		return
	}
	o.Log(ctx, "debug", operation+" succeeded", contextFields)
}

func (o Observer) Log(ctx context.Context, level string, message string, fields map[string]any) {
	if o.Logger == nil {
		return
	}
	logger := o.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneMap(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	case "debug":
		logger.Debug(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (o Observer) IncCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if o.Metrics == nil {
		return
	}
	o.Metrics.IncCounter(ctx, o.metricName(name), value, cloneMap(tags))
}

func (o Observer) ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if o.Metrics == nil {
		return
	}
	o.Metrics.ObserveHistogram(ctx, o.metricName(name), value, cloneMap(tags))
}

func (o Observer) metricName(name string) string {
	name = strings.TrimSpace(name)
	prefix := strings.Trim(strings.TrimSpace(o.Prefix), ".")
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func toTagValue(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case ErrorKind:
		return string(typed)
	case EventType:
		return string(typed)
	default:
		return ""
	}
}

// cloneMap copies m so sinks never alias caller maps. nil becomes empty.
func cloneMap[V any](m map[string]V) map[string]V {
	if copied := maps.Clone(m); copied != nil {
		return copied
	}
	return map[string]V{}
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}
