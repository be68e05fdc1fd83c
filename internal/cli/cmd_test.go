package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanner struct {
	board *planning.Board

	boardDay   time.Time
	assigned   map[string]*string
	statusTo   model.CourseStatus
	statusWith bool
	err        error
}

func (f *fakePlanner) Board(day time.Time, actor planning.Actor) *planning.Board {
	f.boardDay = day
	b := *f.board
	b.Day = day
	return &b
}

func (f *fakePlanner) Today() time.Time { return f.board.Day }

func (f *fakePlanner) Location() *time.Location { return paris }

func (f *fakePlanner) Assign(ctx context.Context, actor planning.Actor, courseID string, driverID *string) (*model.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.assigned == nil {
		f.assigned = map[string]*string{}
	}
	f.assigned[courseID] = driverID
	c := *f.board.Course(courseID)
	c.DriverID = driverID
	return &c, nil
}

func (f *fakePlanner) SetStatus(ctx context.Context, actor planning.Actor, courseID string, to model.CourseStatus, force bool) (*model.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.statusTo, f.statusWith = to, force
	c := *f.board.Course(courseID)
	c.Status = to
	return &c, nil
}

func testApp(p *fakePlanner) *App {
	return &App{
		Migrate: func(ctx context.Context) (int64, error) { return 3, nil },
		Open:    func(ctx context.Context) (Planner, error) { return p, nil },
	}
}

func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestMigrateCmd(t *testing.T) {
	out, err := executeCmd(t, testApp(&fakePlanner{board: testBoard()}), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "version 3")
}

func TestBoardCmd_Today(t *testing.T) {
	p := &fakePlanner{board: testBoard()}

	out, err := executeCmd(t, testApp(p), "board")
	require.NoError(t, err)
	assert.Contains(t, out, "19/10/2026")
	assert.True(t, p.boardDay.Equal(p.board.Day))
}

func TestBoardCmd_Day(t *testing.T) {
	p := &fakePlanner{board: testBoard()}

	out, err := executeCmd(t, testApp(p), "board", "--day", "2026-10-20")
	require.NoError(t, err)
	assert.Contains(t, out, "20/10/2026")
	assert.Equal(t, 20, p.boardDay.Day())
	assert.Equal(t, paris, p.boardDay.Location())
}

func TestBoardCmd_InvalidDay(t *testing.T) {
	_, err := executeCmd(t, testApp(&fakePlanner{board: testBoard()}), "board", "--day", "20/10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestAssignCmd(t *testing.T) {
	p := &fakePlanner{board: testBoard()}

	out, err := executeCmd(t, testApp(p), "assign", "c1", "d1")
	require.NoError(t, err)
	assert.Contains(t, out, "Course assignée")
	require.NotNil(t, p.assigned["c1"])
	assert.Equal(t, "d1", *p.assigned["c1"])
}

func TestUnassignCmd(t *testing.T) {
	p := &fakePlanner{board: testBoard()}

	out, err := executeCmd(t, testApp(p), "unassign", "c2")
	require.NoError(t, err)
	assert.Contains(t, out, "Course désassignée")
	v, ok := p.assigned["c2"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestAssignCmd_Error(t *testing.T) {
	p := &fakePlanner{board: testBoard(), err: &planning.ValidationError{Code: planning.CodeDriverOutOfOrder, Message: "driver out of service"}}

	_, err := executeCmd(t, testApp(p), "assign", "c1", "d2")
	var verr *planning.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestAssignCmd_Args(t *testing.T) {
	_, err := executeCmd(t, testApp(&fakePlanner{board: testBoard()}), "assign", "c1")
	assert.Error(t, err)
}

func TestStatusCmd(t *testing.T) {
	p := &fakePlanner{board: testBoard()}

	out, err := executeCmd(t, testApp(p), "status", "c2", "termine", "--force")
	assert.Error(t, err, "unknown status")

	out, err = executeCmd(t, testApp(p), "status", "c2", "terminee", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "TERMINEE")
	assert.Equal(t, model.CourseStatusCompleted, p.statusTo)
	assert.True(t, p.statusWith)
}
