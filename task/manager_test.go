package task

import (
	"context"
	"errors"
	"testing"

	"newsclip-pipeline/types"
)

// recordedEvent captures one recorder callback for assertion.
type recordedEvent struct {
	kind    string
	id      string
	payload string
}

type fakeRecorder struct {
	events []recordedEvent
}

func (r *fakeRecorder) TaskCreated(_ context.Context, id, paramsJSON string) error {
	r.events = append(r.events, recordedEvent{"created", id, paramsJSON})
	return nil
}

func (r *fakeRecorder) TaskStarted(_ context.Context, id string) error {
	r.events = append(r.events, recordedEvent{"started", id, ""})
	return nil
}

func (r *fakeRecorder) TaskCompleted(_ context.Context, id, resultJSON string) error {
	r.events = append(r.events, recordedEvent{"completed", id, resultJSON})
	return nil
}

func (r *fakeRecorder) TaskFailed(_ context.Context, id, errorMsg string) error {
	r.events = append(r.events, recordedEvent{"failed", id, errorMsg})
	return nil
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	rec := &fakeRecorder{}
	m := NewManager(rec)

	params := types.VideoParams{Subject: "bitcoin"}.Normalized()
	if err := m.Create(ctx, "t1", params); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, ok := m.Get("t1")
	if !ok || got.State != StatePending || got.Progress != 0 {
		t.Fatalf("after create: %+v", got)
	}

	if err := m.Start(ctx, "t1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	got, _ = m.Get("t1")
	if got.State != StateProcessing {
		t.Fatalf("after start: %s", got.State)
	}

	if err := m.Complete(ctx, "t1", []string{"final-1.mp4"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	got, _ = m.Get("t1")
	if got.State != StateCompleted || got.Progress != 100 {
		t.Fatalf("after complete: state=%s progress=%v", got.State, got.Progress)
	}
	if len(got.Videos) != 1 || got.Videos[0] != "final-1.mp4" {
		t.Fatalf("videos = %v", got.Videos)
	}

	kinds := []string{"created", "started", "completed"}
	if len(rec.events) != len(kinds) {
		t.Fatalf("events = %+v", rec.events)
	}
	for i, k := range kinds {
		if rec.events[i].kind != k || rec.events[i].id != "t1" {
			t.Fatalf("events[%d] = %+v, want %s", i, rec.events[i], k)
		}
	}
}

func TestManagerFailPath(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)

	_ = m.Create(ctx, "t1", types.VideoParams{})
	_ = m.Start(ctx, "t1")
	if err := m.Fail(ctx, "t1", "audio synthesis failed"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	got, _ := m.Get("t1")
	if got.State != StateFailed || got.Error != "audio synthesis failed" {
		t.Fatalf("after fail: %+v", got)
	}
	if len(got.Videos) != 0 {
		t.Fatalf("failed task has videos: %v", got.Videos)
	}

	// Terminal states stay put.
	if err := m.Complete(ctx, "t1", []string{"x.mp4"}); err == nil {
		t.Fatal("Complete on failed task should error")
	}
	if err := m.Start(ctx, "t1"); err == nil {
		t.Fatal("Start on failed task should error")
	}
	got, _ = m.Get("t1")
	if got.State != StateFailed {
		t.Fatalf("state changed to %s after rejected transitions", got.State)
	}
}

func TestManagerDuplicateCreate(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)

	_ = m.Create(ctx, "t1", types.VideoParams{})
	err := m.Create(ctx, "t1", types.VideoParams{})
	if !errors.Is(err, ErrTaskExists) {
		t.Fatalf("err = %v, want ErrTaskExists", err)
	}
}

func TestManagerUnknownTask(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)

	if err := m.Start(ctx, "nope"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("Start: %v", err)
	}
	if err := m.SetProgress("nope", 10); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("SetProgress: %v", err)
	}
	if _, ok := m.Get("nope"); ok {
		t.Fatal("Get on unknown id succeeded")
	}
}

func TestManagerProgressMonotonicAndClamped(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)
	_ = m.Create(ctx, "t1", types.VideoParams{})
	_ = m.Start(ctx, "t1")

	_ = m.SetProgress("t1", 50)
	_ = m.SetProgress("t1", 30) // should not decrease
	got, _ := m.Get("t1")
	if got.Progress != 50 {
		t.Fatalf("progress = %v, want 50", got.Progress)
	}

	_ = m.SetProgress("t1", 150)
	got, _ = m.Get("t1")
	if got.Progress != 100 {
		t.Fatalf("progress = %v, want clamped 100", got.Progress)
	}
}

func TestManagerSkipStartRejected(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)
	_ = m.Create(ctx, "t1", types.VideoParams{})

	if err := m.Complete(ctx, "t1", []string{"x.mp4"}); err == nil {
		t.Fatal("Complete on pending task should error")
	}
	if err := m.Fail(ctx, "t1", "boom"); err == nil {
		t.Fatal("Fail on pending task should error")
	}
}
