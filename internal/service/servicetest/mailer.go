// Package servicetest holds test doubles for the service package. Only test
// code imports it.
package servicetest

import (
	"bitwise74/mailverify/internal/model"
	"context"

	"github.com/stretchr/testify/mock"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationCode(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}
