package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingReloader struct{ calls int }

func (c *countingReloader) Reload(context.Context) error {
	c.calls++
	return nil
}

func TestDriverService_SetStatusPermissions(t *testing.T) {
	repo := newMemDrivers(
		&model.Driver{ID: "d1", Name: "Alice", Status: model.DriverStatusAvailable},
		&model.Driver{ID: "d2", Name: "Bruno", Status: model.DriverStatusAvailable},
	)
	reload := &countingReloader{}
	s := NewDriverService(repo, reload, zap.NewNop())
	ctx := context.Background()

	self := planning.Actor{ID: 7, Capabilities: planning.Capabilities{Role: planning.RoleDriver, DriverID: "d1"}}
	require.NoError(t, s.SetStatus(ctx, self, "d1", model.DriverStatusOutOfOrder))
	assert.Equal(t, model.DriverStatusOutOfOrder, repo.drivers["d1"].Status)
	assert.Equal(t, 1, reload.calls)

	assert.ErrorIs(t, s.SetStatus(ctx, self, "d2", model.DriverStatusBusy), ErrForbidden)
	assert.ErrorIs(t, s.SetStatus(ctx, self, "d1", "EN_PAUSE"), ErrInvalidInput)

	dispatcher := planning.Actor{ID: 2, Capabilities: planning.Capabilities{Role: planning.RoleDispatcher}}
	assert.ErrorIs(t, s.SetStatus(ctx, dispatcher, "nope", model.DriverStatusBusy), planning.ErrDriverNotFound)
}

func TestDriverService_CreateAndBind(t *testing.T) {
	repo := newMemDrivers()
	s := NewDriverService(repo, nil, zap.NewNop())
	ctx := context.Background()
	admin := planning.Actor{ID: 1, Capabilities: planning.Capabilities{Role: planning.RoleAdmin}}

	_, err := s.Create(ctx, admin, "  ", "Tesla")
	assert.ErrorIs(t, err, ErrInvalidInput)

	d, err := s.Create(ctx, admin, " Éloïse ", " Tesla Model 3 ")
	require.NoError(t, err)
	assert.Equal(t, "Éloïse", d.Name)
	assert.Equal(t, model.DriverStatusAvailable, d.Status)

	require.NoError(t, s.BindTelegram(ctx, admin, d.ID, 555))
	bound, _ := repo.GetByTelegramID(ctx, 555)
	require.NotNil(t, bound)
	assert.Equal(t, d.ID, bound.ID)
}
