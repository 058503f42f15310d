package mocks

import (
	"context"
	"sync"

	"github.com/acedergren/polisen-events-collector/internal/domain"
)

// MockObjectStore is a mock implementation of domain.ObjectStore for testing.
// Objects live in an in-memory map; puts are recorded in order.
type MockObjectStore struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	PutNames []string
	GetErr   error
	PutErr   error
	ListErr  error
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{Objects: make(map[string][]byte)}
}

func (m *MockObjectStore) Get(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	data, ok := m.Objects[name]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MockObjectStore) Put(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.Objects[name] = cp
	m.PutNames = append(m.PutNames, name)
	return nil
}

func (m *MockObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var names []string
	for name := range m.Objects {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			names = append(names, name)
		}
	}
	return names, nil
}

// MockEventFeed is a mock implementation of domain.EventFeed for testing.
type MockEventFeed struct {
	mu       sync.Mutex
	Events   []domain.Event
	FetchErr error
	Calls    int
}

func (m *MockEventFeed) Fetch(ctx context.Context) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Events, nil
}

// MockCredentialResolver is a mock implementation of domain.CredentialResolver
// for testing.
type MockCredentialResolver struct {
	mu         sync.Mutex
	Bundle     domain.Credentials
	ResolveErr error
	Calls      int
}

func (m *MockCredentialResolver) Resolve(ctx context.Context) (domain.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.ResolveErr != nil {
		return domain.Credentials{}, m.ResolveErr
	}
	return m.Bundle, nil
}
