// internal/services/progress_service_test.go
package services

import (
	"testing"
	"time"
)

func TestTrackerLifecycle(t *testing.T) {
	svc := NewProgressService()
	tracker := svc.CreateTracker("task-1")

	if got, exists := svc.GetTracker("task-1"); !exists || got != tracker {
		t.Fatal("tracker not retrievable after creation")
	}
	if tracker.Status != "running" {
		t.Errorf("new tracker should be running, got %q", tracker.Status)
	}

	// Creating the same task id again reuses the tracker.
	if again := svc.CreateTracker("task-1"); again != tracker {
		t.Error("CreateTracker should reuse an existing tracker")
	}
}

func TestSubscriberReceivesUpdates(t *testing.T) {
	svc := NewProgressService()
	tracker := svc.CreateTracker("task-2")

	updates := tracker.Subscribe()
	defer tracker.Unsubscribe(updates)

	// Subscribe pushes the current state immediately.
	initial := <-updates
	if initial.Status != "running" {
		t.Errorf("initial push should carry running status, got %q", initial.Status)
	}

	tracker.UpdateProgress(40, "halfway there")

	update := <-updates
	if update.Progress != 40 || update.Message != "halfway there" {
		t.Errorf("unexpected update: %+v", update)
	}
}

func TestCompleteClosesDone(t *testing.T) {
	svc := NewProgressService()
	tracker := svc.CreateTracker("task-3")

	tracker.Complete("all done")

	select {
	case <-tracker.Done:
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Complete")
	}

	if tracker.Status != "completed" || tracker.Progress != 100 {
		t.Errorf("unexpected final state: %q at %d%%", tracker.Status, tracker.Progress)
	}

	// Terminal states are sticky.
	tracker.Fail("too late")
	if tracker.Status != "completed" {
		t.Errorf("Fail after Complete should be ignored, got %q", tracker.Status)
	}
}

func TestCancelSetsFlagWithoutFinishing(t *testing.T) {
	svc := NewProgressService()
	tracker := svc.CreateTracker("task-4")

	tracker.Cancel()

	if !tracker.IsCancelled() {
		t.Error("cancel flag not set")
	}
	if tracker.Status != "running" {
		t.Errorf("cancel is cooperative; status should stay running, got %q", tracker.Status)
	}

	// The worker observes the flag and finalizes.
	tracker.MarkCancelled("")

	if tracker.Status != "cancelled" {
		t.Errorf("expected cancelled status, got %q", tracker.Status)
	}
	select {
	case <-tracker.Done:
	case <-time.After(time.Second):
		t.Fatal("Done not closed after MarkCancelled")
	}
}

func TestProgressNeverRegresses(t *testing.T) {
	svc := NewProgressService()
	tracker := svc.CreateTracker("task-5")

	tracker.UpdateProgress(60, "")
	tracker.UpdateProgress(30, "stale update")

	if tracker.Progress != 60 {
		t.Errorf("progress regressed to %d", tracker.Progress)
	}
}

func TestCleanupCompletedTasks(t *testing.T) {
	svc := NewProgressService()
	done := svc.CreateTracker("done-task")
	done.Complete("")
	svc.CreateTracker("running-task")

	time.Sleep(10 * time.Millisecond)
	svc.CleanupCompletedTasks(time.Millisecond)

	if _, exists := svc.GetTracker("done-task"); exists {
		t.Error("finished tracker should be swept")
	}
	if _, exists := svc.GetTracker("running-task"); !exists {
		t.Error("running tracker must survive the sweep")
	}
}
