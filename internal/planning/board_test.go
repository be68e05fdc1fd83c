package planning

import (
	"testing"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCompatible_Tolerance(t *testing.T) {
	course := &model.Course{ID: "c", ScheduledAt: at(14, 10)}

	tests := []struct {
		name      string
		hour      int
		tolerance int
		want      bool
	}{
		{"same hour", 14, 30, true},
		{"next hour too far", 15, 30, false},
		{"previous hour too far", 13, 30, false},
		{"wide tolerance reaches next hour", 15, 50, true},
		{"zero tolerance", 14, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCompatible(course, tt.hour, testDay, tt.tolerance))
		})
	}
}

func TestIsCompatible_BoundaryIsInclusive(t *testing.T) {
	assert.True(t, IsCompatible(&model.Course{ScheduledAt: at(13, 30)}, 14, testDay, 30))
	assert.False(t, IsCompatible(&model.Course{ScheduledAt: at(13, 29)}, 14, testDay, 30))
}

func TestIsCompatible_RequiresViewedDay(t *testing.T) {
	tomorrow := &model.Course{ScheduledAt: at(14, 0).AddDate(0, 0, 1)}
	assert.False(t, IsCompatible(tomorrow, 14, testDay, 30))
	assert.False(t, IsCompatible(nil, 14, testDay, 30))
}

func boardWith(courses ...*model.Course) *Board {
	return &Board{
		Day:      testDay,
		Settings: model.DefaultSettings(),
		Courses:  FilterByDay(courses, testDay),
		Drivers: []*model.Driver{
			{ID: "d1", Name: "Alice", Status: model.DriverStatusAvailable},
			{ID: "d2", Name: "Bruno", Status: model.DriverStatusAvailable},
		},
		Now: at(8, 0),
	}
}

func assigned(id string, scheduledHour, minute int, driverID string) *model.Course {
	return &model.Course{
		ID:          id,
		ScheduledAt: at(scheduledHour, minute),
		DriverID:    strPtr(driverID),
		Status:      model.CourseStatusAssigned,
	}
}

func TestBoard_CapacityCeiling(t *testing.T) {
	two := boardWith(assigned("a", 10, 0, "d1"), assigned("b", 10, 20, "d1"))
	assert.True(t, two.IsAvailable("d1", 10), "2 courses < capacity 3")

	three := boardWith(assigned("a", 10, 0, "d1"), assigned("b", 10, 20, "d1"), assigned("c", 10, 40, "d1"))
	assert.False(t, three.IsAvailable("d1", 10), "3 courses reach capacity")
	assert.True(t, three.IsAvailable("d1", 11), "other hours unaffected")
	assert.True(t, three.IsAvailable("d2", 10), "other drivers unaffected")
}

func TestBoard_CancelledCoursesDoNotCount(t *testing.T) {
	cancelled := assigned("c", 10, 40, "d1")
	cancelled.Status = model.CourseStatusCanceled

	b := boardWith(assigned("a", 10, 0, "d1"), assigned("b", 10, 20, "d1"), cancelled)
	assert.True(t, b.IsAvailable("d1", 10))
	assert.Len(t, b.CoursesAt("d1", 10), 2)
}

func TestBoard_CompatibleUnassigned(t *testing.T) {
	early := &model.Course{ID: "early", ScheduledAt: at(9, 50), Status: model.CourseStatusPending}
	late := &model.Course{ID: "late", ScheduledAt: at(10, 15), Status: model.CourseStatusPending}
	far := &model.Course{ID: "far", ScheduledAt: at(12, 0), Status: model.CourseStatusPending}
	cancelled := &model.Course{ID: "x", ScheduledAt: at(10, 0), Status: model.CourseStatusCanceled}
	placed := assigned("placed", 10, 0, "d1")

	b := boardWith(late, far, cancelled, placed, early)
	got := b.CompatibleUnassigned(10)

	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].ID)
	assert.Equal(t, "late", got[1].ID)
	assert.Empty(t, b.CompatibleUnassigned(15))
}

func TestBoard_RestrictForDriver(t *testing.T) {
	b := boardWith(
		assigned("mine", 9, 0, "d1"),
		assigned("theirs", 9, 0, "d2"),
		&model.Course{ID: "free", ScheduledAt: at(9, 0), Status: model.CourseStatusPending},
	)

	view := b.Restrict(Capabilities{Role: RoleDriver, DriverID: "d1"})
	require.Len(t, view.Courses, 1)
	assert.Equal(t, "mine", view.Courses[0].ID)
	require.Len(t, view.Drivers, 1)
	assert.Equal(t, "d1", view.Drivers[0].ID)
	assert.Len(t, b.Courses, 3, "original board untouched")

	assert.Same(t, b, b.Restrict(Capabilities{Role: RoleDispatcher}))
}

func TestBoard_FitsChecksCourseOwnHour(t *testing.T) {
	b := boardWith(
		assigned("a1", 13, 0, "d1"),
		assigned("a2", 13, 10, "d1"),
		assigned("a3", 13, 20, "d1"),
	)
	late := &model.Course{ID: "late", ScheduledAt: at(13, 45), Status: model.CourseStatusPending}
	onTime := &model.Course{ID: "onTime", ScheduledAt: at(14, 5), Status: model.CourseStatusPending}

	assert.True(t, b.IsAvailable("d1", 14))
	assert.False(t, b.Fits(late, "d1", 14), "hour 13 already holds capacity")
	assert.True(t, b.Fits(onTime, "d1", 14))
	assert.True(t, b.Fits(late, "d2", 14))
	assert.True(t, b.Fits(b.Course("a1"), "d1", 13), "course already there")

	b.Courses = append(b.Courses, late, onTime)
	placeable := b.Placeable("d1", 14)
	require.Len(t, placeable, 1)
	assert.Equal(t, "onTime", placeable[0].ID)
}
