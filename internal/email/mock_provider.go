package email

import "sync"

// MockProvider складывает письма в память. Используется в dev и тестах.
type MockProvider struct {
	mu   sync.Mutex
	sent []Email
	Err  error
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Send(email *Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, *email)
	return nil
}

func (m *MockProvider) Validate() error { return nil }

func (m *MockProvider) Close() error { return nil }

// Sent возвращает копию отправленных писем
func (m *MockProvider) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Email, len(m.sent))
	copy(out, m.sent)
	return out
}
