package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"newsclip-pipeline/task"
	"newsclip-pipeline/types"
)

// TypeGenerateVideo is the asynq task type for one video generation run.
const TypeGenerateVideo = "video:generate"

// GeneratePayload is the JSON payload of a queued generation task.
type GeneratePayload struct {
	TaskID string            `json:"task_id"`
	Params types.VideoParams `json:"params"`
}

// Client enqueues video generation tasks.
type Client struct {
	client  *asynq.Client
	manager *task.Manager
	queue   string
}

func NewClient(redisOpt asynq.RedisClientOpt, manager *task.Manager, queueName string) *Client {
	if queueName == "" {
		queueName = "default"
	}
	return &Client{
		client:  asynq.NewClient(redisOpt),
		manager: manager,
		queue:   queueName,
	}
}

// Enqueue registers the task with the manager and pushes it onto the
// queue. The worker picks it up and drives the runner.
func (c *Client) Enqueue(ctx context.Context, taskID string, params types.VideoParams) error {
	if err := c.manager.Create(ctx, taskID, params); err != nil {
		return err
	}

	payload, err := json.Marshal(GeneratePayload{TaskID: taskID, Params: params})
	if err != nil {
		return err
	}

	t := asynq.NewTask(TypeGenerateVideo, payload)
	info, err := c.client.EnqueueContext(ctx, t, asynq.Queue(c.queue), asynq.MaxRetry(0))
	if err != nil {
		return fmt.Errorf("enqueue task %s: %w", taskID, err)
	}
	log.Printf("[queue] enqueued %s as %s on %q", taskID, info.ID, info.Queue)
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Worker consumes generation tasks and runs the pipeline for each.
type Worker struct {
	server *asynq.Server
	runner *task.Runner
}

func NewWorker(redisOpt asynq.RedisClientOpt, runner *task.Runner, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = 2
	}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{"default": 1},
	})
	return &Worker{server: server, runner: runner}
}

// Run blocks processing tasks until Shutdown.
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeGenerateVideo, w.handleGenerate)
	return w.server.Run(mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleGenerate(ctx context.Context, t *asynq.Task) error {
	var payload GeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	// Task state transitions belong to the runner's manager; the queue only
	// reports the outcome back to asynq.
	_, err := w.runner.Run(ctx, payload.TaskID, payload.Params)
	return err
}
