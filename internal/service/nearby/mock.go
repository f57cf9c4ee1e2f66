package nearby

import (
	"sync"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// MockService is a drop-in broadcaster for development machines without a
// usable Bluetooth adapter. Broadcast loops back to the listener so the UI
// flow can be exercised end to end.
type MockService struct {
	mu      sync.Mutex
	onAlert func(domain.NearbyAlert)

	Broadcasts []domain.NearbyAlert
}

func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) Broadcast(alert domain.NearbyAlert) error {
	m.mu.Lock()
	m.Broadcasts = append(m.Broadcasts, alert)
	cb := m.onAlert
	m.mu.Unlock()

	if cb != nil {
		cb(alert)
	}
	return nil
}

func (m *MockService) StopBroadcast() {}

func (m *MockService) Listen(onAlert func(domain.NearbyAlert)) error {
	m.mu.Lock()
	m.onAlert = onAlert
	m.mu.Unlock()
	return nil
}

func (m *MockService) StopListen() {
	m.mu.Lock()
	m.onAlert = nil
	m.mu.Unlock()
}
