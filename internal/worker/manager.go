package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Worker defines the common contract for background workers
type Worker interface {
	Start(ctx context.Context) error
	Stop()
	Name() string
}

// Manager manages the lifecycle of background workers
type Manager struct {
	workers []Worker
	started []Worker
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewManager creates a new worker manager
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger}
}

// Register adds a worker to be managed
func (m *Manager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = append(m.workers, w)
}

// StartAll starts workers in registration order. If one fails, the workers
// already started are stopped again.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.workers {
		if err := w.Start(ctx); err != nil {
			m.logger.Error("Failed to start worker",
				zap.String("name", w.Name()),
				zap.Error(err))
			m.stopStarted()
			return err
		}
		m.started = append(m.started, w)
		m.logger.Info("Worker started", zap.String("name", w.Name()))
	}
	return nil
}

// StopAll stops started workers in reverse order
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopStarted()
}

func (m *Manager) stopStarted() {
	for i := len(m.started) - 1; i >= 0; i-- {
		w := m.started[i]
		w.Stop()
		m.logger.Info("Worker stopped", zap.String("name", w.Name()))
	}
	m.started = nil
}

// Count returns the number of registered workers
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workers)
}
