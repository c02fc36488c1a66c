package mocks

import (
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

// MockSessionStorage is an in-memory domain.SessionStorage.
type MockSessionStorage struct {
	mu      sync.Mutex
	token   string
	user    *domain.User
	Device  string
	Cleared int
}

// NewMockSessionStorage returns a storage holding token and user. Pass "" and
// nil for an empty one.
func NewMockSessionStorage(token string, user *domain.User) *MockSessionStorage {
	return &MockSessionStorage{token: token, user: user, Device: "device-1"}
}

func (m *MockSessionStorage) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MockSessionStorage) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *MockSessionStorage) RemoveToken() { m.SetToken("") }

func (m *MockSessionStorage) CachedUser() (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return domain.User{}, false
	}
	return *m.user, true
}

func (m *MockSessionStorage) SetCachedUser(user domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &user
}

func (m *MockSessionStorage) RemoveCachedUser() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
}

func (m *MockSessionStorage) DeviceID() string { return m.Device }

func (m *MockSessionStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.user = nil
	m.Cleared++
}

func (m *MockSessionStorage) Close() error { return nil }

var _ domain.SessionStorage = (*MockSessionStorage)(nil)
