package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reloader источник данных, который нужно периодически обновлять
type Reloader interface {
	Reload(ctx context.Context) error
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	planning Reloader
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(planning Reloader, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		planning: planning,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("reload_interval", s.interval))

	go s.runReloadTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	<-s.done
}

// runReloadTask периодически перечитывает курсы и водителей,
// чтобы изменения из других источников (CLI, другой диспетчер) попадали в реестр
func (s *Scheduler) runReloadTask(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reload(ctx)
		case <-s.stopChan:
			s.logger.Info("Reload task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Reload task cancelled")
			return
		}
	}
}

func (s *Scheduler) reload(ctx context.Context) {
	reloadCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	if err := s.planning.Reload(reloadCtx); err != nil {
		s.logger.Error("Failed to reload planning", zap.Error(err))
	}
}
