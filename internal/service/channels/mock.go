package channels

import (
	"fmt"
	"sync"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// MockChannels logs every delivery instead of touching the OS. Used on
// development machines and wherever the platform handlers are absent.
type MockChannels struct {
	mu sync.Mutex

	Messages      []string
	Notifications []string
	Dialed        []string
	Broadcasts    []domain.NearbyAlert
}

func NewMockChannels() *MockChannels {
	return &MockChannels{}
}

func (m *MockChannels) ShareOrSMS(contact domain.Contact, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, message)
	fmt.Printf("[MOCK SMS] to %s (%s): %s\n", contact.Name, contact.Phone, message)
	return nil
}

func (m *MockChannels) ShowNotification(title, body string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, title+": "+body)
	fmt.Printf("[MOCK NOTIFY] %s: %s\n", title, body)
	return nil
}

func (m *MockChannels) Dial(number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dialed = append(m.Dialed, number)
	fmt.Printf("[MOCK DIAL] %s\n", number)
	return nil
}

func (m *MockChannels) BroadcastNearby(alert domain.NearbyAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Broadcasts = append(m.Broadcasts, alert)
	fmt.Printf("[MOCK BROADCAST] lat=%.5f lng=%.5f\n", alert.Latitude, alert.Longitude)
	return nil
}
