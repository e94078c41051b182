package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sessionstate/internal/providers"
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

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
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

// Has reports whether a message at level contains substr.
func (m *MockLogger) Has(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(e.Message(), substr) {
			return true
		}
	}
	return false
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
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

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
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

func (m *MockCompressor) Close() { m.Closed = true }

// MockBlobStore implements interfaces.BlobStoreInterface with injectable behavior.
type MockBlobStore struct {
	ReadFn  func(ctx context.Context) ([]byte, error)
	WriteFn func(ctx context.Context, data []byte) error
}

func (m *MockBlobStore) Read(ctx context.Context) ([]byte, error) {
	if m.ReadFn != nil {
		return m.ReadFn(ctx)
	}
	return nil, nil
}

func (m *MockBlobStore) Write(ctx context.Context, data []byte) error {
	if m.WriteFn != nil {
		return m.WriteFn(ctx, data)
	}
	return nil
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu          sync.Mutex
	Requests    int
	CacheHits   int
	CacheMisses int
	Loads       map[string]int
	Migrations  map[uint]int
	SaveErrors  int
	BlobBytes   int
	Durations   map[string]int
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

func (m *MockMetrics) ObservePersistenceDuration(op string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Durations == nil {
		m.Durations = make(map[string]int)
	}
	m.Durations[op]++
}

func (m *MockMetrics) IncStateLoads(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Loads == nil {
		m.Loads = make(map[string]int)
	}
	m.Loads[outcome]++
}

func (m *MockMetrics) IncMigrations(fromVersion uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Migrations == nil {
		m.Migrations = make(map[uint]int)
	}
	m.Migrations[fromVersion]++
}

func (m *MockMetrics) IncSaveErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveErrors++
}

func (m *MockMetrics) SetBlobBytes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BlobBytes = n
}
