package planning

import (
	"context"
	"testing"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drag(courseID string, kind SourceKind) *Gesture {
	g := &Gesture{}
	g.Start(testDay, DragSource{Kind: kind, CourseID: courseID})
	return g
}

func targetPtr(t DropTarget) *DropTarget { return &t }

func TestScenario_DragOntoSlotThenBackToUnassigned(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(9, 5), nil)
	e := newEngine(t, store, model.DefaultSettings())

	g := drag("c1", KindUnassignedItem)
	g.Hover(SlotTarget("d1", 9))
	out, err := e.controller.Drop(ctx, e.admin, g, targetPtr(SlotTarget("d1", 9)))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAssigned, out.Kind)
	assert.False(t, g.Active(), "gesture reset after drop")

	c := e.course(t, "c1")
	assert.True(t, c.IsAssignedTo("d1"))
	assert.Equal(t, model.CourseStatusAssigned, c.Status)
	assert.Equal(t, model.CourseStatusAssigned, store.stored("c1").Status)

	out, err = e.controller.Drop(ctx, e.admin, drag("c1", KindPlacedItem), targetPtr(UnassignedTarget()))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnassigned, out.Kind)

	c = e.course(t, "c1")
	assert.Nil(t, c.DriverID)
	assert.Equal(t, model.CourseStatusPending, c.Status)
	assert.True(t, c.EverAssigned)
	assert.Nil(t, store.stored("c1").DriverID)
}

func TestDrop_NoTargetIsNoop(t *testing.T) {
	store := newFakeStore()
	store.addCourse("c1", at(9, 5), nil)
	e := newEngine(t, store, model.DefaultSettings())

	g := drag("c1", KindUnassignedItem)
	out, err := e.controller.Drop(context.Background(), e.admin, g, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, out.Kind)
	assert.Empty(t, store.updates)
	assert.False(t, g.Active())
}

func TestDrop_ReassignmentRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addDriver("a", "Alice", model.DriverStatusAvailable)
	store.addDriver("b", "Bruno", model.DriverStatusAvailable)
	store.addCourse("c1", at(10, 0), strPtr("a"))
	e := newEngine(t, store, model.DefaultSettings())

	out, err := e.controller.Drop(ctx, e.admin, drag("c1", KindPlacedItem), targetPtr(SlotTarget("b", 10)))
	require.NoError(t, err)
	require.Equal(t, OutcomeNeedsConfirmation, out.Kind)
	require.NotNil(t, out.Reassignment)
	assert.Equal(t, "a", out.Reassignment.FromDriverID)
	assert.Equal(t, "b", out.Reassignment.ToDriverID)

	assert.True(t, e.course(t, "c1").IsAssignedTo("a"), "nothing changes before confirmation")
	assert.Empty(t, store.updates)

	out, err = e.controller.Confirm(ctx, e.admin, *out.Reassignment)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAssigned, out.Kind)
	assert.True(t, e.course(t, "c1").IsAssignedTo("b"))
	assert.Equal(t, model.CourseStatusAssigned, e.course(t, "c1").Status)
}

func TestConfirm_ConflictWhenCourseMovedMeanwhile(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addDriver("a", "Alice", model.DriverStatusAvailable)
	store.addDriver("b", "Bruno", model.DriverStatusAvailable)
	store.addDriver("c", "Chloé", model.DriverStatusAvailable)
	store.addCourse("c1", at(10, 0), strPtr("a"))
	e := newEngine(t, store, model.DefaultSettings())

	out, err := e.controller.Drop(ctx, e.admin, drag("c1", KindPlacedItem), targetPtr(SlotTarget("b", 10)))
	require.NoError(t, err)

	_, err = e.executor.Assign(ctx, "c1", strPtr("c"), CommandOptions{})
	require.NoError(t, err)

	_, err = e.controller.Confirm(ctx, e.admin, *out.Reassignment)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.True(t, e.course(t, "c1").IsAssignedTo("c"))
}

func TestDrop_SameDriverOtherHourIsNoop(t *testing.T) {
	store := newFakeStore()
	store.addDriver("a", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(10, 0), strPtr("a"))
	e := newEngine(t, store, model.DefaultSettings())

	out, err := e.controller.Drop(context.Background(), e.admin, drag("c1", KindPlacedItem), targetPtr(SlotTarget("a", 11)))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, out.Kind)
	assert.Empty(t, store.updates)
}

func TestDrop_UnassignedCourseOntoUnassignedIsNoop(t *testing.T) {
	store := newFakeStore()
	store.addCourse("c1", at(10, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())

	out, err := e.controller.Drop(context.Background(), e.admin, drag("c1", KindUnassignedItem), targetPtr(UnassignedTarget()))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, out.Kind)
	assert.Empty(t, store.updates)
}

func TestDrop_Validation(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(s *fakeStore)
		target DropTarget
		code   ValidationCode
	}{
		{
			name:   "incompatible hour",
			setup:  func(s *fakeStore) { s.addCourse("c1", at(14, 10), nil) },
			target: SlotTarget("d1", 15),
			code:   CodeIncompatibleSlot,
		},
		{
			name: "slot at capacity",
			setup: func(s *fakeStore) {
				s.addCourse("c1", at(9, 5), nil)
				s.addCourse("x1", at(9, 0), strPtr("d1"))
				s.addCourse("x2", at(9, 10), strPtr("d1"))
				s.addCourse("x3", at(9, 20), strPtr("d1"))
			},
			target: SlotTarget("d1", 9),
			code:   CodeSlotFull,
		},
		{
			name: "driver out of service",
			setup: func(s *fakeStore) {
				s.addCourse("c1", at(9, 5), nil)
				s.drivers[0].Status = model.DriverStatusOutOfOrder
			},
			target: SlotTarget("d1", 9),
			code:   CodeDriverOutOfOrder,
		},
		{
			name: "terminal course",
			setup: func(s *fakeStore) {
				c := s.addCourse("c1", at(9, 5), nil)
				c.Status = model.CourseStatusCanceled
			},
			target: SlotTarget("d1", 9),
			code:   CodeTerminalCourse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.addDriver("d1", "Alice", model.DriverStatusAvailable)
			tt.setup(store)
			e := newEngine(t, store, model.DefaultSettings())
			before := e.course(t, "c1")

			_, err := e.controller.Drop(context.Background(), e.admin, drag("c1", KindUnassignedItem), targetPtr(tt.target))
			assert.True(t, IsValidation(err, tt.code), "got %v", err)
			assert.Equal(t, before, e.course(t, "c1"))
			assert.Empty(t, store.updates)
		})
	}
}

func TestDrop_DriverRoleCannotAssign(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(9, 5), nil)
	e := newEngine(t, store, model.DefaultSettings())

	driver := Actor{Capabilities: Capabilities{Role: RoleDriver, DriverID: "d1"}, ID: 7}
	_, err := e.controller.Drop(context.Background(), driver, drag("c1", KindUnassignedItem), targetPtr(SlotTarget("d1", 9)))
	assert.True(t, IsValidation(err, CodeForbidden))
	assert.Nil(t, e.course(t, "c1").DriverID)
}

func TestClickSlot_PicksEarliestAndLeavesOther(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addDriver("d2", "Bruno", model.DriverStatusAvailable)
	store.addCourse("late", at(10, 20), nil)
	store.addCourse("early", at(9, 45), nil)
	e := newEngine(t, store, model.DefaultSettings())

	board := e.controller.Board(testDay, e.admin.Capabilities)
	require.Len(t, board.CompatibleUnassigned(10), 2)
	require.Len(t, board.Unassigned(), 2)

	out, err := e.controller.ClickSlot(ctx, e.admin, testDay, "d2", 10)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAssigned, out.Kind)
	assert.Equal(t, "early", out.Course.ID)

	board = e.controller.Board(testDay, e.admin.Capabilities)
	unassigned := board.Unassigned()
	require.Len(t, unassigned, 1)
	assert.Equal(t, "late", unassigned[0].ID)
	assert.True(t, e.course(t, "early").IsAssignedTo("d2"))
}

func TestClickSlot_SingleCandidateAssignsDirectly(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("only", at(16, 0), nil)
	settings := model.DefaultSettings()
	settings.PickPolicy = model.PickPicker
	e := newEngine(t, store, settings)

	out, err := e.controller.ClickSlot(context.Background(), e.admin, testDay, "d1", 16)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAssigned, out.Kind)
}

func TestClickSlot_PickerPolicyAsksToChoose(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("a", at(10, 0), nil)
	store.addCourse("b", at(10, 10), nil)
	settings := model.DefaultSettings()
	settings.PickPolicy = model.PickPicker
	e := newEngine(t, store, settings)

	out, err := e.controller.ClickSlot(ctx, e.admin, testDay, "d1", 10)
	require.NoError(t, err)
	require.Equal(t, OutcomeChoose, out.Kind)
	require.Len(t, out.Candidates, 2)
	assert.Empty(t, store.updates)

	out, err = e.controller.Pick(ctx, e.admin, testDay, "d1", 10, "b")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAssigned, out.Kind)
	assert.True(t, e.course(t, "b").IsAssignedTo("d1"))
	assert.Nil(t, e.course(t, "a").DriverID)

	_, err = e.controller.Pick(ctx, e.admin, testDay, "d1", 10, "b")
	assert.True(t, IsValidation(err, CodeIncompatibleSlot), "already taken")
}

func TestClickSlot_NoCompatibleCourse(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(18, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())

	_, err := e.controller.ClickSlot(context.Background(), e.admin, testDay, "d1", 10)
	assert.True(t, IsValidation(err, CodeNoCompatible))
}

func TestSetStatus_DriverCapabilities(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addDriver("d2", "Bruno", model.DriverStatusAvailable)
	store.addCourse("mine", at(9, 0), strPtr("d1"))
	store.addCourse("theirs", at(9, 0), strPtr("d2"))
	e := newEngine(t, store, model.DefaultSettings())

	driver := Actor{Capabilities: Capabilities{Role: RoleDriver, DriverID: "d1"}, ID: 7}

	c, err := e.controller.SetStatus(ctx, driver, "mine", model.CourseStatusInProgress, false)
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusInProgress, c.Status)

	_, err = e.controller.SetStatus(ctx, driver, "mine", model.CourseStatusCanceled, false)
	assert.True(t, IsValidation(err, CodeForbidden))

	_, err = e.controller.SetStatus(ctx, driver, "theirs", model.CourseStatusInProgress, false)
	assert.True(t, IsValidation(err, CodeForbidden))

	dispatcher := Actor{Capabilities: Capabilities{Role: RoleDispatcher}, ID: 8}
	_, err = e.controller.SetStatus(ctx, dispatcher, "theirs", model.CourseStatusCanceled, true)
	assert.True(t, IsValidation(err, CodeForbidden), "only admin may force")
}

func TestDrop_CapacityCountsCourseOwnHour(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(13, 0), strPtr("d1"))
	store.addCourse("c2", at(13, 10), strPtr("d1"))
	store.addCourse("c3", at(13, 20), strPtr("d1"))
	store.addCourse("c4", at(13, 45), nil)
	e := newEngine(t, store, model.DefaultSettings())

	// 13:45 совместим со слотом 14, но час 13 у Alice уже заполнен
	_, err := e.controller.Drop(ctx, e.admin, drag("c4", KindUnassignedItem), targetPtr(SlotTarget("d1", 14)))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeSlotFull, verr.Code)
	assert.Nil(t, e.course(t, "c4").DriverID)
	assert.Empty(t, store.updates)

	board := e.registry.Board(testDay, model.DefaultSettings(), at(8, 0))
	assert.Len(t, board.CoursesAt("d1", 13), 3)
}

func TestClickSlot_SkipsCourseWhoseHourIsFull(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(13, 0), strPtr("d1"))
	store.addCourse("c2", at(13, 10), strPtr("d1"))
	store.addCourse("c3", at(13, 20), strPtr("d1"))
	store.addCourse("early", at(13, 45), nil)
	store.addCourse("late", at(14, 10), nil)
	e := newEngine(t, store, model.DefaultSettings())

	out, err := e.controller.ClickSlot(ctx, e.admin, testDay, "d1", 14)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAssigned, out.Kind)
	assert.True(t, e.course(t, "late").IsAssignedTo("d1"))
	assert.Nil(t, e.course(t, "early").DriverID)
}

func TestClickSlot_OnlyOverflowingCandidate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(13, 0), strPtr("d1"))
	store.addCourse("c2", at(13, 10), strPtr("d1"))
	store.addCourse("c3", at(13, 20), strPtr("d1"))
	store.addCourse("c4", at(13, 45), nil)
	e := newEngine(t, store, model.DefaultSettings())

	_, err := e.controller.ClickSlot(ctx, e.admin, testDay, "d1", 14)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeSlotFull, verr.Code)
	assert.Nil(t, e.course(t, "c4").DriverID)
}
