package planning

import (
	"testing"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestStatusAfterAssign(t *testing.T) {
	assert.Equal(t, model.CourseStatusAssigned, StatusAfterAssign(model.CourseStatusPending))
	assert.Equal(t, model.CourseStatusInProgress, StatusAfterAssign(model.CourseStatusInProgress))
	assert.Equal(t, model.CourseStatusAssigned, StatusAfterAssign(model.CourseStatusAssigned))
	assert.Equal(t, model.CourseStatusCompleted, StatusAfterAssign(model.CourseStatusCompleted))
}

func TestStatusAfterUnassign(t *testing.T) {
	assert.Equal(t, model.CourseStatusPending, StatusAfterUnassign(model.CourseStatusAssigned))
	assert.Equal(t, model.CourseStatusInProgress, StatusAfterUnassign(model.CourseStatusInProgress))
	assert.Equal(t, model.CourseStatusCompleted, StatusAfterUnassign(model.CourseStatusCompleted))
	assert.Equal(t, model.CourseStatusCanceled, StatusAfterUnassign(model.CourseStatusCanceled))
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, model.CourseStatusPending, InitialStatus(nil))
	assert.Equal(t, model.CourseStatusPending, InitialStatus(strPtr("")))
	assert.Equal(t, model.CourseStatusAssigned, InitialStatus(strPtr("d1")))
}

func TestCheckManualTransition(t *testing.T) {
	unassigned := &model.Course{Status: model.CourseStatusPending}
	previouslyAssigned := &model.Course{Status: model.CourseStatusPending, EverAssigned: true}
	withDriver := &model.Course{Status: model.CourseStatusAssigned, DriverID: strPtr("d1"), EverAssigned: true}
	done := &model.Course{Status: model.CourseStatusCompleted, DriverID: strPtr("d1"), EverAssigned: true}

	tests := []struct {
		name   string
		course *model.Course
		to     model.CourseStatus
		force  bool
		code   ValidationCode
	}{
		{"complete unassigned", unassigned, model.CourseStatusCompleted, false, CodeNeverAssigned},
		{"cancel unassigned", unassigned, model.CourseStatusCanceled, false, CodeNeverAssigned},
		{"cancel unassigned forced", unassigned, model.CourseStatusCanceled, true, ""},
		{"cancel previously assigned", previouslyAssigned, model.CourseStatusCanceled, false, ""},
		{"complete with driver", withDriver, model.CourseStatusCompleted, false, ""},
		{"start with driver", withDriver, model.CourseStatusInProgress, false, ""},
		{"start without driver", unassigned, model.CourseStatusInProgress, false, CodeInvalidStatus},
		{"pending with driver", withDriver, model.CourseStatusPending, false, CodeInvalidStatus},
		{"reopen terminal", done, model.CourseStatusInProgress, false, CodeTerminalCourse},
		{"reopen terminal forced", done, model.CourseStatusInProgress, true, ""},
		{"unknown status", withDriver, model.CourseStatus("PERDUE"), true, CodeInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckManualTransition(tt.course, tt.to, tt.force)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsValidation(err, tt.code), "got %v", err)
		})
	}
}

func TestDisplayStatus(t *testing.T) {
	now := at(14, 20)

	futureDone := &model.Course{ScheduledAt: at(18, 0), Status: model.CourseStatusCompleted, DriverID: strPtr("d1")}
	assert.Equal(t, model.CourseStatusAssigned, DisplayStatus(futureDone, now))
	assert.Equal(t, model.CourseStatusCompleted, futureDone.Status, "stored status untouched")

	futureDoneNoDriver := &model.Course{ScheduledAt: at(18, 0), Status: model.CourseStatusCompleted}
	assert.Equal(t, model.CourseStatusPending, DisplayStatus(futureDoneNoDriver, now))

	runningNow := &model.Course{ScheduledAt: at(14, 45), Status: model.CourseStatusAssigned, DriverID: strPtr("d1")}
	assert.Equal(t, model.CourseStatusInProgress, DisplayStatus(runningNow, now))
	assert.Equal(t, model.CourseStatusAssigned, runningNow.Status)

	later := &model.Course{ScheduledAt: at(15, 0), Status: model.CourseStatusAssigned, DriverID: strPtr("d1")}
	assert.Equal(t, model.CourseStatusAssigned, DisplayStatus(later, now))

	pastDone := &model.Course{ScheduledAt: at(9, 0), Status: model.CourseStatusCompleted}
	assert.Equal(t, model.CourseStatusCompleted, DisplayStatus(pastDone, now))

	assert.Equal(t, model.CourseStatusInProgress, DisplayStatus(runningNow, now.In(time.UTC)))
}
