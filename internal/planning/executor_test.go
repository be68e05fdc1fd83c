package planning

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_AssignFailureRollsBack(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(9, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())
	before := e.course(t, "c1")

	store.updateErr = errors.New("503 service unavailable")
	_, err := e.executor.Assign(context.Background(), "c1", strPtr("d1"), CommandOptions{})

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "assign", perr.Op)
	assert.Equal(t, before, e.course(t, "c1"), "optimistic change rolled back")
	assert.Empty(t, store.journal)
}

func TestExecutor_OptimisticStateVisibleDuringFlight(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(9, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())

	var seen *model.Course
	store.beforeUpdate = func(id string) {
		seen, _, _ = e.registry.Get(id)
	}

	_, err := e.executor.Assign(context.Background(), "c1", strPtr("d1"), CommandOptions{})
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.True(t, seen.IsAssignedTo("d1"))
	assert.Equal(t, model.CourseStatusAssigned, seen.Status)
}

func TestExecutor_FailureAfterReloadReconcilesWithServer(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(9, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())

	store.updateErr = errors.New("rejected")
	store.beforeUpdate = func(id string) {
		// пока запрос в полёте, кто-то другой назначил курс и реестр перезагрузился
		store.mu.Lock()
		store.courses[id].DriverID = strPtr("d1")
		store.courses[id].Status = model.CourseStatusInProgress
		store.mu.Unlock()
		require.NoError(t, e.registry.Reload(context.Background()))
	}

	_, err := e.executor.Assign(context.Background(), "c1", strPtr("d1"), CommandOptions{})
	require.Error(t, err)

	c := e.course(t, "c1")
	assert.Equal(t, model.CourseStatusInProgress, c.Status, "server state wins over stale rollback")
}

func TestExecutor_AssignOutOfServiceDriverIsBlocked(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusOutOfOrder)
	store.addCourse("c1", at(9, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())

	_, err := e.executor.Assign(context.Background(), "c1", strPtr("d1"), CommandOptions{Force: true})
	assert.True(t, IsValidation(err, CodeDriverOutOfOrder))
	assert.Empty(t, store.updates)
}

func TestExecutor_AssignUnknownIDs(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(9, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())

	_, err := e.executor.Assign(context.Background(), "nope", strPtr("d1"), CommandOptions{})
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = e.executor.Assign(context.Background(), "c1", strPtr("nope"), CommandOptions{})
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestExecutor_AssignKeepsInProgressStatus(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addDriver("d2", "Bruno", model.DriverStatusAvailable)
	c := store.addCourse("c1", at(9, 0), strPtr("d1"))
	c.Status = model.CourseStatusInProgress
	e := newEngine(t, store, model.DefaultSettings())

	updated, err := e.executor.Assign(context.Background(), "c1", strPtr("d2"), CommandOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusInProgress, updated.Status)

	updated, err = e.executor.Assign(context.Background(), "c1", nil, CommandOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusInProgress, updated.Status)
	assert.Nil(t, updated.DriverID)
}

func TestExecutor_TerminalCourseNeedsForce(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	c := store.addCourse("c1", at(9, 0), strPtr("d1"))
	c.Status = model.CourseStatusCompleted
	e := newEngine(t, store, model.DefaultSettings())

	_, err := e.executor.Assign(context.Background(), "c1", nil, CommandOptions{})
	assert.True(t, IsValidation(err, CodeTerminalCourse))

	updated, err := e.executor.Assign(context.Background(), "c1", nil, CommandOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusCompleted, updated.Status)
	assert.Nil(t, updated.DriverID)
}

func TestExecutor_JournalRecordsAssignments(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(9, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())
	ctx := context.Background()

	_, err := e.executor.Assign(ctx, "c1", strPtr("d1"), CommandOptions{ActorID: 42})
	require.NoError(t, err)
	_, err = e.executor.Assign(ctx, "c1", nil, CommandOptions{ActorID: 42})
	require.NoError(t, err)

	require.Len(t, store.journal, 2)
	assert.Nil(t, store.journal[0].FromDriverID)
	assert.Equal(t, "d1", *store.journal[0].ToDriverID)
	assert.Equal(t, model.CourseStatusAssigned, store.journal[0].Status)
	assert.Equal(t, int64(42), store.journal[0].ActorID)
	assert.Equal(t, "d1", *store.journal[1].FromDriverID)
	assert.Nil(t, store.journal[1].ToDriverID)
}

func TestExecutor_CreateDerivesStatus(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	e := newEngine(t, store, model.DefaultSettings())
	ctx := context.Background()

	pending, err := e.executor.Create(ctx, &model.Course{
		ClientID: "cl", Origin: "A", Destination: "B", ScheduledAt: at(11, 0),
		Status: model.CourseStatusCompleted,
	}, CommandOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, pending.ID)
	assert.Equal(t, model.CourseStatusPending, pending.Status)
	assert.NotNil(t, store.stored(pending.ID))

	withDriver, err := e.executor.Create(ctx, &model.Course{
		ClientID: "cl", Origin: "A", Destination: "B", ScheduledAt: at(11, 0), DriverID: strPtr("d1"),
	}, CommandOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusAssigned, withDriver.Status)
	assert.True(t, withDriver.EverAssigned)
}

func TestExecutor_CreateValidation(t *testing.T) {
	e := newEngine(t, newFakeStore(), model.DefaultSettings())

	_, err := e.executor.Create(context.Background(), &model.Course{ClientID: "cl", Destination: "B", ScheduledAt: at(11, 0)}, CommandOptions{})
	assert.True(t, IsValidation(err, CodeMissingField))
	assert.Empty(t, e.registry.Courses())
}

func TestExecutor_CreateFailureRemovesOptimisticCourse(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("duplicate key")
	e := newEngine(t, store, model.DefaultSettings())

	_, err := e.executor.Create(context.Background(), &model.Course{
		ClientID: "cl", Origin: "A", Destination: "B", ScheduledAt: at(11, 0),
	}, CommandOptions{})

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, e.registry.Courses())
}

func TestExecutor_DeleteFailureRestoresCourse(t *testing.T) {
	store := newFakeStore()
	store.addCourse("c1", at(9, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())

	store.deleteErr = errors.New("foreign key violation")
	err := e.executor.Delete(context.Background(), "c1", CommandOptions{})

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	e.course(t, "c1")

	store.deleteErr = nil
	require.NoError(t, e.executor.Delete(context.Background(), "c1", CommandOptions{}))
	_, _, ok := e.registry.Get("c1")
	assert.False(t, ok)
	assert.Nil(t, store.stored("c1"))
}

func TestExecutor_UpdateRejectsDriverAndStatusEdits(t *testing.T) {
	store := newFakeStore()
	store.addCourse("c1", at(9, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())

	status := model.CourseStatusCompleted
	_, err := e.executor.Update(context.Background(), "c1", model.CoursePatch{Status: &status}, CommandOptions{})
	assert.True(t, IsValidation(err, CodeInvalidStatus))

	notes := "Siège bébé"
	updated, err := e.executor.Update(context.Background(), "c1", model.CoursePatch{Notes: &notes}, CommandOptions{})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, notes, e.course(t, "c1").Notes)
}

func TestExecutor_SameCourseCommandsAreSerialized(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addDriver("d2", "Bruno", model.DriverStatusAvailable)
	store.addCourse("c1", at(9, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())

	var inFlight, maxInFlight int32
	store.beforeUpdate = func(string) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		driver := strPtr("d1")
		if i%2 == 1 {
			driver = strPtr("d2")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.executor.Assign(context.Background(), "c1", driver, CommandOptions{})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
	c := e.course(t, "c1")
	assert.Equal(t, store.stored("c1").DriverID, c.DriverID, "registry matches last server write")
	assert.Equal(t, model.CourseStatusAssigned, c.Status)
}

func TestExecutor_DifferentCoursesRunConcurrently(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(9, 0), nil)
	store.addCourse("c2", at(10, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())

	var arrived sync.WaitGroup
	arrived.Add(2)
	both := make(chan struct{})
	go func() {
		arrived.Wait()
		close(both)
	}()

	store.beforeUpdate = func(string) {
		arrived.Done()
		select {
		case <-both:
		case <-time.After(2 * time.Second):
		}
	}

	var wg sync.WaitGroup
	for _, id := range []string{"c1", "c2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := e.executor.Assign(context.Background(), id, strPtr("d1"), CommandOptions{})
			assert.NoError(t, err)
		}(id)
	}

	select {
	case <-both:
	case <-time.After(time.Second):
		t.Fatal("updates of different courses were serialized")
	}
	wg.Wait()
}

func TestKeyedMutex_FIFO(t *testing.T) {
	k := newKeyedMutex()
	unlock, err := k.Lock(context.Background(), "c1")
	require.NoError(t, err)

	var order []int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			release, err := k.Lock(context.Background(), "c1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			release()
		}(i)
		// ждём пока горутина встанет в очередь
		require.Eventually(t, func() bool {
			k.mu.Lock()
			defer k.mu.Unlock()
			return len(k.queues["c1"]) == i+1
		}, time.Second, time.Millisecond)
	}

	unlock()
	wg.Wait()
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Empty(t, k.queues)
}

func TestKeyedMutex_CancelledWaiterLeavesQueue(t *testing.T) {
	k := newKeyedMutex()
	unlock, err := k.Lock(context.Background(), "c1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	waitErr := make(chan error, 1)
	go func() {
		_, err := k.Lock(ctx, "c1")
		waitErr <- err
	}()
	require.Eventually(t, func() bool {
		k.mu.Lock()
		defer k.mu.Unlock()
		return len(k.queues["c1"]) == 2
	}, time.Second, time.Millisecond)

	acquired := make(chan func(), 1)
	go func() {
		release, err := k.Lock(context.Background(), "c1")
		if assert.NoError(t, err) {
			acquired <- release
		}
	}()
	require.Eventually(t, func() bool {
		k.mu.Lock()
		defer k.mu.Unlock()
		return len(k.queues["c1"]) == 3
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-waitErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled waiter is still blocked")
	}

	unlock()
	select {
	case release := <-acquired:
		release()
	case <-time.After(time.Second):
		t.Fatal("next waiter stuck behind the cancelled one")
	}
	assert.Empty(t, k.queues)
}

func TestExecutor_AssignHonoursContextWhileQueued(t *testing.T) {
	store := newFakeStore()
	store.addDriver("d1", "Alice", model.DriverStatusAvailable)
	store.addCourse("c1", at(9, 0), nil)
	e := newEngine(t, store, model.DefaultSettings())

	unlock, err := e.executor.locks.Lock(context.Background(), "c1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = e.executor.Assign(ctx, "c1", strPtr("d1"), CommandOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, store.updates)
	assert.Nil(t, e.course(t, "c1").DriverID)
}
