package factory

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/blazeboard/internal/dependencies/mocks"
	"github.com/mcoot/blazeboard/internal/metrics"
	"github.com/mcoot/blazeboard/internal/services/match"
	"github.com/mcoot/blazeboard/internal/storage"
	"github.com/mcoot/blazeboard/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App on in-memory storage with a mocked clock
func NewTestApp() *TestApp {
	app, err := NewTestAppWithStorage(memory.New(), match.DefaultConfig())
	if err != nil {
		// memory storage cannot fail to load
		panic(err)
	}
	return app
}

// NewTestAppWithStorage creates a test App over the given storage
func NewTestAppWithStorage(store storage.Storage, matchCfg match.Config) (*TestApp, error) {
	mockClock := mocks.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	matchCfg.PersistBackoff = 0

	app, err := newWithDependencies(
		context.Background(),
		store,
		mockClock,
		metrics.NewRecorder(),
		matchCfg,
		slog.New(slog.NewJSONHandler(io.Discard, nil)),
	)
	if err != nil {
		return nil, err
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}, nil
}
