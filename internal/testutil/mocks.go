package testutil

import (
	"context"

	"github.com/vigilops/costwatch/internal/domain/alert"
	"github.com/vigilops/costwatch/internal/inventory"
)

// MockSource is a mock implementation of inventory.Source
type MockSource struct {
	Snapshot *inventory.Snapshot
	Err      error
}

func (m *MockSource) Fetch(ctx context.Context) (*inventory.Snapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Snapshot == nil {
		return &inventory.Snapshot{}, nil
	}
	return m.Snapshot, nil
}

// MockRunner is a mock implementation of netstat.Runner
type MockRunner struct {
	Outputs map[string]string
	Errs    map[string]error
	Calls   []string
}

func (m *MockRunner) Run(ctx context.Context, instance string) (string, error) {
	m.Calls = append(m.Calls, instance)
	if err, ok := m.Errs[instance]; ok {
		return "", err
	}
	return m.Outputs[instance], nil
}

// MockNotifier is a mock implementation of notify.Notifier that
// captures every sent alert.
type MockNotifier struct {
	Sent    []alert.Alert
	SendErr error
}

func (m *MockNotifier) Send(ctx context.Context, a alert.Alert) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, a)
	return nil
}
