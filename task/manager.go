package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"newsclip-pipeline/types"
)

// ErrTaskNotFound is returned for operations on unknown task IDs.
var ErrTaskNotFound = errors.New("task not found")

// ErrTaskExists is returned when creating a task with a duplicate ID.
var ErrTaskExists = errors.New("task already exists")

// Task is a snapshot of one task's lifecycle.
type Task struct {
	ID        string            `json:"id"`
	State     State             `json:"state"`
	Progress  float64           `json:"progress"`
	Params    types.VideoParams `json:"params"`
	Videos    []string          `json:"videos,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Recorder mirrors task lifecycle events into durable storage. All methods
// are best-effort from the manager's point of view.
type Recorder interface {
	TaskCreated(ctx context.Context, id, paramsJSON string) error
	TaskStarted(ctx context.Context, id string) error
	TaskCompleted(ctx context.Context, id, resultJSON string) error
	TaskFailed(ctx context.Context, id, errorMsg string) error
}

// Manager owns every task's state. It is the only component that may mark
// a task failed or advance its progress counter.
type Manager struct {
	mu       sync.RWMutex
	tasks    map[string]*Task
	recorder Recorder // optional
}

func NewManager(recorder Recorder) *Manager {
	return &Manager{tasks: make(map[string]*Task), recorder: recorder}
}

// Create registers a new task in pending state.
func (m *Manager) Create(ctx context.Context, id string, params types.VideoParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; ok {
		return fmt.Errorf("%w: %s", ErrTaskExists, id)
	}

	now := time.Now().UTC()
	m.tasks[id] = &Task{
		ID:        id,
		State:     StatePending,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if m.recorder != nil {
		paramsJSON, _ := json.Marshal(params)
		_ = m.recorder.TaskCreated(ctx, id, string(paramsJSON))
	}
	return nil
}

// Start moves a pending task into processing.
func (m *Manager) Start(ctx context.Context, id string) error {
	if err := m.transition(id, StateProcessing, nil, ""); err != nil {
		return err
	}
	if m.recorder != nil {
		_ = m.recorder.TaskStarted(ctx, id)
	}
	return nil
}

// Complete marks a processing task completed with its output paths.
func (m *Manager) Complete(ctx context.Context, id string, videos []string) error {
	if err := m.transition(id, StateCompleted, videos, ""); err != nil {
		return err
	}
	if m.recorder != nil {
		resultJSON, _ := json.Marshal(videos)
		_ = m.recorder.TaskCompleted(ctx, id, string(resultJSON))
	}
	return nil
}

// Fail marks a processing task failed with an explanatory message.
func (m *Manager) Fail(ctx context.Context, id, msg string) error {
	if err := m.transition(id, StateFailed, nil, msg); err != nil {
		return err
	}
	if m.recorder != nil {
		_ = m.recorder.TaskFailed(ctx, id, msg)
	}
	return nil
}

// SetProgress advances the task's progress counter. Progress is clamped to
// [0,100] and never moves backwards.
func (m *Manager) SetProgress(id string, pct float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct > t.Progress {
		t.Progress = pct
		t.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// Get returns a snapshot of the task.
func (m *Manager) Get(id string) (Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok {
		return Task{}, false
	}
	snapshot := *t
	snapshot.Videos = append([]string(nil), t.Videos...)
	return snapshot, true
}

func (m *Manager) transition(id string, to State, videos []string, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	next, err := Transition(t.State, to)
	if err != nil {
		return err
	}

	t.State = next
	t.UpdatedAt = time.Now().UTC()
	if videos != nil {
		t.Videos = videos
		t.Progress = 100
	}
	if errMsg != "" {
		t.Error = errMsg
	}
	return nil
}
