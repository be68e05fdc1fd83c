package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSettingsService_FallbackUntilStored(t *testing.T) {
	repo := &memSettings{}
	fallback := model.Settings{OpeningHour: 6, ClosingHour: 22, SlotCapacity: 2, ToleranceMinutes: 15, PickPolicy: model.PickPicker}
	s := NewSettingsService(repo, fallback, zap.NewNop())

	assert.Equal(t, fallback, s.Settings())
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, fallback, s.Settings())

	repo.stored = &model.Settings{OpeningHour: 7, ClosingHour: 20, SlotCapacity: 4, ToleranceMinutes: 30, PickPolicy: "bogus"}
	require.NoError(t, s.Refresh(context.Background()))

	got := s.Settings()
	assert.Equal(t, 7, got.OpeningHour)
	assert.Equal(t, 4, got.SlotCapacity)
	assert.Equal(t, model.PickEarliest, got.PickPolicy, "unknown policy normalized")
}

func TestSettingsService_RefreshErrorKeepsCurrent(t *testing.T) {
	repo := &memSettings{stored: &model.Settings{OpeningHour: 8, ClosingHour: 18, SlotCapacity: 1}}
	s := NewSettingsService(repo, model.DefaultSettings(), zap.NewNop())
	require.NoError(t, s.Refresh(context.Background()))

	repo.err = errors.New("connection refused")
	assert.Error(t, s.Refresh(context.Background()))
	assert.Equal(t, 8, s.Settings().OpeningHour)
}

func TestSettingsService_UpdateValidates(t *testing.T) {
	repo := &memSettings{}
	s := NewSettingsService(repo, model.DefaultSettings(), zap.NewNop())

	_, err := s.Update(context.Background(), model.Settings{OpeningHour: 20, ClosingHour: 8, SlotCapacity: 3})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Update(context.Background(), model.Settings{OpeningHour: 8, ClosingHour: 20, SlotCapacity: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	next, err := s.Update(context.Background(), model.Settings{OpeningHour: 8, ClosingHour: 20, SlotCapacity: 2, ToleranceMinutes: 10})
	require.NoError(t, err)
	assert.Equal(t, next, s.Settings())
	require.NotNil(t, repo.stored)
	assert.Equal(t, 2, repo.stored.SlotCapacity)
}
