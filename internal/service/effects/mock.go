package effects

import (
	"fmt"
	"sync"
)

// MockEffects records effect activity for development and tests.
type MockEffects struct {
	mu sync.Mutex

	Vibrations [][]int
	SirenOn    bool
	LockHeld   bool
}

func NewMockEffects() *MockEffects {
	return &MockEffects{}
}

func (m *MockEffects) Vibrate(patternMs []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Vibrations = append(m.Vibrations, patternMs)
	fmt.Println("[MOCK VIBRATE]", patternMs)
	return nil
}

func (m *MockEffects) PlaySiren() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SirenOn = true
	fmt.Println("[MOCK SIREN] on")
	return nil
}

func (m *MockEffects) StopSiren() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SirenOn = false
	fmt.Println("[MOCK SIREN] off")
}

func (m *MockEffects) AcquireScreenLock() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockHeld = true
	return nil
}

func (m *MockEffects) ReleaseScreenLock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockHeld = false
}
