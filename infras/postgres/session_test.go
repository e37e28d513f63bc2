package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"cnpgdemo/infras/postgres"
	"cnpgdemo/infras/postgres/mocks"
)

func TestWithSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	t.Run("releases after success", func(t *testing.T) {
		provider := mocks.NewMockProvider(ctrl)
		session := mocks.NewMockSession(ctrl)

		gomock.InOrder(
			provider.EXPECT().Acquire(ctx, postgres.RolePrimary).Return(session, nil),
			session.EXPECT().Release(),
		)

		called := false
		err := postgres.WithSession(ctx, provider, postgres.RolePrimary, func(postgres.Session) error {
			called = true

			return nil
		})

		assert.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("releases after error", func(t *testing.T) {
		provider := mocks.NewMockProvider(ctrl)
		session := mocks.NewMockSession(ctrl)
		fnErr := errors.New("not found")

		provider.EXPECT().Acquire(ctx, postgres.RoleReplica).Return(session, nil)
		session.EXPECT().Release()

		err := postgres.WithSession(ctx, provider, postgres.RoleReplica, func(postgres.Session) error {
			return fnErr
		})

		assert.ErrorIs(t, err, fnErr)
	})

	t.Run("releases after panic", func(t *testing.T) {
		provider := mocks.NewMockProvider(ctrl)
		session := mocks.NewMockSession(ctrl)

		provider.EXPECT().Acquire(ctx, postgres.RolePrimary).Return(session, nil)
		session.EXPECT().Release()

		assert.Panics(t, func() {
			_ = postgres.WithSession(ctx, provider, postgres.RolePrimary, func(postgres.Session) error {
				panic("boom")
			})
		})
	})

	t.Run("acquire failure skips fn", func(t *testing.T) {
		provider := mocks.NewMockProvider(ctrl)
		acquireErr := errors.New("pool exhausted")

		provider.EXPECT().Acquire(ctx, postgres.RolePrimary).Return(nil, acquireErr)

		err := postgres.WithSession(ctx, provider, postgres.RolePrimary, func(postgres.Session) error {
			t.Fatal("fn must not run without a session")

			return nil
		})

		assert.ErrorIs(t, err, acquireErr)
	})
}
