/*
Copyright © 2026 Parsefence Authors.

Released under MIT license.
*/

package limits

import (
	"sync"

	"github.com/parsefence/go-parsefence/log"
)

type warningKey struct {
	parserID string
	property string
}

// WarningTracker emits a warning about a property or feature that a particular
// parser implementation does not support, at most once per (parser, property)
// pair for the tracker's lifetime. One tracker is typically shared by all
// parser instances of a process; it is safe for concurrent use, and concurrent
// calls for the same pair produce exactly one emitted warning.
type WarningTracker struct {
	logger  log.FieldLogger
	metrics MetricsCollector

	mu   sync.Mutex
	seen map[warningKey]struct{}
}

// NewWarningTracker returns an initialized WarningTracker that emits warnings
// through the given logger.
func NewWarningTracker(logger log.FieldLogger) *WarningTracker {
	return NewWarningTrackerWithMetrics(logger, disabledMetricsCollector)
}

// NewWarningTrackerWithMetrics returns an initialized WarningTracker that also
// counts emitted warnings in the given metrics collector.
func NewWarningTrackerWithMetrics(logger log.FieldLogger, mc MetricsCollector) *WarningTracker {
	return &WarningTracker{
		logger:  logger,
		metrics: mc,
		seen:    make(map[warningKey]struct{}),
	}
}

// Warn emits a warning that the parser identified by parserID does not support
// the given property, unless the same (parserID, property) pair has already
// been warned about. It reports whether the warning was actually emitted.
func (t *WarningTracker) Warn(parserID, property string, err error) bool {
	if !t.addIfAbsent(warningKey{parserID: parserID, property: property}) {
		return false
	}
	t.logger.Warn("parser does not support property",
		log.String("parser", parserID),
		log.String("property", property),
		log.Error(err),
	)
	t.metrics.IncWarningEmitted()
	return true
}

func (t *WarningTracker) addIfAbsent(key warningKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[key]; ok {
		return false
	}
	t.seen[key] = struct{}{}
	return true
}
