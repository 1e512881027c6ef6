package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// TracingCollectorSpy is a TracingCollector implementation that captures
// span lifecycle calls for testing.
type TracingCollectorSpy struct {
	startedSpans  []SpyStartedSpan
	finishedSpans []SpyFinishedSpan
	mu            sync.Mutex
}

// SpyStartedSpan represents a recorded StartSpan call.
type SpyStartedSpan struct {
	Name  string
	Attrs map[string]string
}

// SpyFinishedSpan represents a recorded FinishSpan call.
type SpyFinishedSpan struct {
	Name   string
	Status string
	Attrs  map[string]string
}

type spySpanContext struct {
	name       string
	attributes map[string]string
}

func (s *spySpanContext) SetStatus(_ string) {}

func (s *spySpanContext) AddAttribute(key, value string) {
	s.attributes[key] = value
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

// StartSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, datalayer.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startedSpans = append(s.startedSpans, SpyStartedSpan{Name: name, Attrs: copyLabels(attrs)})

	return ctx, &spySpanContext{name: name, attributes: copyLabels(attrs)}
}

// FinishSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) FinishSpan(span datalayer.SpanContext, status string, attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := ""
	if spy, ok := span.(*spySpanContext); ok {
		name = spy.name
	}

	s.finishedSpans = append(s.finishedSpans, SpyFinishedSpan{Name: name, Status: status, Attrs: copyLabels(attrs)})
}

// GetStartedSpans returns a copy of all recorded StartSpan calls.
func (s *TracingCollectorSpy) GetStartedSpans() []SpyStartedSpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyStartedSpan(nil), s.startedSpans...)
}

// GetFinishedSpans returns a copy of all recorded FinishSpan calls.
func (s *TracingCollectorSpy) GetFinishedSpans() []SpyFinishedSpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyFinishedSpan(nil), s.finishedSpans...)
}

// HasFinishedSpanWithStatus checks if a span with the given name finished with the given status.
func (s *TracingCollectorSpy) HasFinishedSpanWithStatus(name, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, span := range s.finishedSpans {
		if span.Name == name && span.Status == status {
			return true
		}
	}

	return false
}

// Reset clears all recorded spans.
func (s *TracingCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startedSpans = s.startedSpans[:0]
	s.finishedSpans = s.finishedSpans[:0]
}

// Compile-time check to ensure TracingCollectorSpy implements TracingCollector interface.
var _ datalayer.TracingCollector = (*TracingCollectorSpy)(nil)
