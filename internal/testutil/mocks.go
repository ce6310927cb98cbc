package testutil

import (
	"rucd/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns the number of recorded entries at the given level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu         sync.Mutex
	Data       map[string][]byte
	ClearCalls int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.ClearCalls++
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu                  sync.Mutex
	RemindersScheduled  map[string]int
	RemindersCancelled  map[string]int
	RemindersFired      map[string]int
	RemindersSuppressed map[string]int
	AttentionCounts     []int
	PersistenceCalls    int
	CacheHits           int
	CacheMisses         int
	Requests            int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		RemindersScheduled:  make(map[string]int),
		RemindersCancelled:  make(map[string]int),
		RemindersFired:      make(map[string]int),
		RemindersSuppressed: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceCalls++
}

func (m *MockMetrics) IncRemindersScheduled(category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemindersScheduled[category]++
}

func (m *MockMetrics) IncRemindersCancelled(category string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemindersCancelled[category] += count
}

func (m *MockMetrics) IncRemindersFired(category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemindersFired[category]++
}

func (m *MockMetrics) IncRemindersSuppressed(category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemindersSuppressed[category]++
}

func (m *MockMetrics) SetAttentionCount(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AttentionCounts = append(m.AttentionCounts, count)
}

// Scheduled returns the recorded scheduled count for a category.
func (m *MockMetrics) Scheduled(category string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RemindersScheduled[category]
}

// Suppressed returns the recorded suppressed count for a category.
func (m *MockMetrics) Suppressed(category string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RemindersSuppressed[category]
}
