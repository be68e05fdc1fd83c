package cli

import (
	"context"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/spf13/cobra"
)

// Planner операции планирования, доступные из консоли
type Planner interface {
	Board(day time.Time, actor planning.Actor) *planning.Board
	Today() time.Time
	Location() *time.Location
	Assign(ctx context.Context, actor planning.Actor, courseID string, driverID *string) (*model.Course, error)
	SetStatus(ctx context.Context, actor planning.Actor, courseID string, to model.CourseStatus, force bool) (*model.Course, error)
}

// App зависимости команд. Подключение к базе откладывается до запуска команды.
type App struct {
	Migrate func(ctx context.Context) (int64, error)
	Open    func(ctx context.Context) (Planner, error)
}

// operator консоль работает с правами администратора
var operator = planning.Actor{Capabilities: planning.Capabilities{Role: planning.RoleAdmin}}

// NewRootCmd создаёт команду dispatchctl со всеми подкомандами
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "dispatchctl",
		Short:         "Outil d'administration du planning VTC",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(app),
		newBoardCmd(app),
		newAssignCmd(app),
		newUnassignCmd(app),
		newStatusCmd(app),
	)

	return root
}
