package handlers

import (
	"github.com/Freeeeeet/dispatch_bot/internal/controller/state"
	"github.com/Freeeeeet/dispatch_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService     *service.UserService
	planningService *service.PlanningService
	clientService   *service.ClientService
	driverService   *service.DriverService
	stateManager    *state.Manager
	logger          *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	planningService *service.PlanningService,
	clientService *service.ClientService,
	driverService *service.DriverService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:     userService,
		planningService: planningService,
		clientService:   clientService,
		driverService:   driverService,
		stateManager:    stateManager,
		logger:          logger,
	}
}
