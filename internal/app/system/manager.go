package system

import (
	"context"
	"fmt"
	"sync"
)

// Manager starts and stops registered services in registration order and
// reverse order respectively.
type Manager struct {
	mu       sync.Mutex
	services []Service
	names    map[string]bool
	started  bool
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{names: make(map[string]bool)}
}

// Register adds a service. Registration is rejected after Start and for
// duplicate names.
func (m *Manager) Register(svc Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return fmt.Errorf("cannot register %s: manager already started", svc.Name())
	}
	if m.names[svc.Name()] {
		return fmt.Errorf("service %s already registered", svc.Name())
	}
	m.names[svc.Name()] = true
	m.services = append(m.services, svc)
	return nil
}

// Start starts all services in order. On failure, already started services
// are stopped in reverse order before returning.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return fmt.Errorf("manager already started")
	}

	for i, svc := range m.services {
		if err := svc.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = m.services[j].Stop(ctx)
			}
			return fmt.Errorf("start %s: %w", svc.Name(), err)
		}
	}
	m.started = true
	return nil
}

// Stop stops all services in reverse order, collecting the first error.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return nil
	}

	var firstErr error
	for i := len(m.services) - 1; i >= 0; i-- {
		if err := m.services[i].Stop(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop %s: %w", m.services[i].Name(), err)
		}
	}
	m.started = false
	return firstErr
}
