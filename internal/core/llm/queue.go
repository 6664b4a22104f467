package llm

import (
	"context"
	"fmt"
	"sync/atomic"

	"nutrimori-ai/internal/infrastructure/config"
	"nutrimori-ai/internal/pkg/common"

	"go.uber.org/zap"
)

// Request is one queued completion request
type Request struct {
	Context context.Context
	Prompt  string
	Result  chan Result
}

// Result is the outcome of a queued request
type Result struct {
	Content string
	Error   error
}

// Status reports queue state for health checks
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Completer executes one prompt against the model provider
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Queue bounds the number of in-flight LLM calls with a fixed worker pool.
// Candidate generation is the only blocking collaborator besides search, so
// every call goes through here.
type Queue struct {
	config    *config.Config
	completer Completer
	queue     chan *Request
	done      chan struct{}
	processed int64
}

// NewQueue creates the request queue
func NewQueue(cfg *config.Config, completer Completer) *Queue {
	return &Queue{
		config:    cfg,
		completer: completer,
		queue:     make(chan *Request, cfg.Queue.MaxSize),
		done:      make(chan struct{}),
	}
}

// Start launches the worker pool
func (q *Queue) Start() {
	for i := 0; i < q.config.Queue.Workers; i++ {
		go q.worker()
	}
	common.LogInfo("LLM queue started",
		zap.Int("workers", q.config.Queue.Workers),
		zap.Int("max_size", q.config.Queue.MaxSize),
	)
}

func (q *Queue) worker() {
	for {
		select {
		case req, ok := <-q.queue:
			if !ok {
				return
			}
			content, err := q.completer.Complete(req.Context, req.Prompt)
			atomic.AddInt64(&q.processed, 1)
			req.Result <- Result{Content: content, Error: err}
		case <-q.done:
			return
		}
	}
}

// Do enqueues prompt and waits for the result, honoring ctx cancellation
// while queued or in flight.
func (q *Queue) Do(ctx context.Context, prompt string) (string, error) {
	req := &Request{
		Context: ctx,
		Prompt:  prompt,
		Result:  make(chan Result, 1),
	}

	select {
	case q.queue <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-q.done:
		return "", fmt.Errorf("llm queue is closed")
	default:
		return "", fmt.Errorf("llm queue is full")
	}

	select {
	case res := <-req.Result:
		return res.Content, res.Error
	case <-ctx.Done():
		// The worker finishes and discards the result; no cancellation
		// propagates past the request boundary.
		return "", ctx.Err()
	}
}

// GetStatus reports current queue state
func (q *Queue) GetStatus() *Status {
	return &Status{
		QueueLength:    len(q.queue),
		ProcessedCount: int(atomic.LoadInt64(&q.processed)),
		MaxQueueSize:   q.config.Queue.MaxSize,
		Workers:        q.config.Queue.Workers,
	}
}

// Close stops the workers
func (q *Queue) Close() {
	close(q.done)
}
