package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// TestContextualLogger is a ContextualLogger implementation that captures
// contextual logging calls for testing.
type TestContextualLogger struct {
	debugRecords []ContextualLogRecord
	infoRecords  []ContextualLogRecord
	warnRecords  []ContextualLogRecord
	errorRecords []ContextualLogRecord
	mu           sync.Mutex
	recordCalls  bool
}

// ContextualLogRecord represents a recorded contextual log call.
type ContextualLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// NewTestContextualLogger creates a new TestContextualLogger instance.
func NewTestContextualLogger(recordCalls bool) *TestContextualLogger {
	return &TestContextualLogger{
		recordCalls: recordCalls,
	}
}

// DebugContext implements the ContextualLogger interface for testing.
func (l *TestContextualLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.record(&l.debugRecords, "debug", ctx, msg, args)
}

// InfoContext implements the ContextualLogger interface for testing.
func (l *TestContextualLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.record(&l.infoRecords, "info", ctx, msg, args)
}

// WarnContext implements the ContextualLogger interface for testing.
func (l *TestContextualLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.record(&l.warnRecords, "warn", ctx, msg, args)
}

// ErrorContext implements the ContextualLogger interface for testing.
func (l *TestContextualLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.record(&l.errorRecords, "error", ctx, msg, args)
}

func (l *TestContextualLogger) record(records *[]ContextualLogRecord, level string, ctx context.Context, msg string, args []any) {
	if !l.recordCalls {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	*records = append(*records, ContextualLogRecord{
		Level:   level,
		Message: msg,
		Args:    args,
		Context: ctx,
	})
}

// Reset clears all recorded log calls.
func (l *TestContextualLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugRecords = l.debugRecords[:0]
	l.infoRecords = l.infoRecords[:0]
	l.warnRecords = l.warnRecords[:0]
	l.errorRecords = l.errorRecords[:0]
}

// GetDebugRecords returns a copy of all debug log records.
func (l *TestContextualLogger) GetDebugRecords() []ContextualLogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]ContextualLogRecord(nil), l.debugRecords...)
}

// GetInfoRecords returns a copy of all info log records.
func (l *TestContextualLogger) GetInfoRecords() []ContextualLogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]ContextualLogRecord(nil), l.infoRecords...)
}

// GetWarnRecords returns a copy of all warn log records.
func (l *TestContextualLogger) GetWarnRecords() []ContextualLogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]ContextualLogRecord(nil), l.warnRecords...)
}

// GetErrorRecords returns a copy of all error log records.
func (l *TestContextualLogger) GetErrorRecords() []ContextualLogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]ContextualLogRecord(nil), l.errorRecords...)
}

// GetTotalRecordCount returns the total number of log records across all levels.
func (l *TestContextualLogger) GetTotalRecordCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.debugRecords) + len(l.infoRecords) + len(l.warnRecords) + len(l.errorRecords)
}

// HasDebugLog checks if a debug log with the specified message exists.
func (l *TestContextualLogger) HasDebugLog(message string) bool {
	return l.hasLog(&l.debugRecords, message)
}

// HasInfoLog checks if an info log with the specified message exists.
func (l *TestContextualLogger) HasInfoLog(message string) bool {
	return l.hasLog(&l.infoRecords, message)
}

// HasWarnLog checks if a warn log with the specified message exists.
func (l *TestContextualLogger) HasWarnLog(message string) bool {
	return l.hasLog(&l.warnRecords, message)
}

// HasErrorLog checks if an error log with the specified message exists.
func (l *TestContextualLogger) HasErrorLog(message string) bool {
	return l.hasLog(&l.errorRecords, message)
}

func (l *TestContextualLogger) hasLog(records *[]ContextualLogRecord, message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, record := range *records {
		if record.Message == message {
			return true
		}
	}

	return false
}

// HasLogWithArg checks if a log record at any level carries the given
// key/value pair in its args.
func (l *TestContextualLogger) HasLogWithArg(message, key string, value any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	all := make([]ContextualLogRecord, 0)
	all = append(all, l.debugRecords...)
	all = append(all, l.infoRecords...)
	all = append(all, l.warnRecords...)
	all = append(all, l.errorRecords...)

	for _, record := range all {
		if record.Message != message {
			continue
		}

		for i := 0; i+1 < len(record.Args); i += 2 {
			if record.Args[i] == key && record.Args[i+1] == value {
				return true
			}
		}
	}

	return false
}

// Compile-time check to ensure TestContextualLogger implements ContextualLogger interface.
var _ datalayer.ContextualLogger = (*TestContextualLogger)(nil)
