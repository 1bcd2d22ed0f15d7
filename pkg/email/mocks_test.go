package email_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/accesskit/pkg/email"
)

// MockSender is a mock implementation of email.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
