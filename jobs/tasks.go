package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/limitless-hr/hris/internal/documents"
	jobmetrics "github.com/limitless-hr/hris/internal/jobs"
	"github.com/limitless-hr/hris/internal/platform/storage"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDocumentCompleted fires once every required signer has signed.
	TaskDocumentCompleted = "documents:completed"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DocumentCompletedPayload describes a fully signed document.
type DocumentCompletedPayload struct {
	DocumentID  string    `json:"document_id"`
	Title       string    `json:"title"`
	Owner       string    `json:"owner"`
	Signers     []string  `json:"signers"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewDocumentCompletedPayload summarises doc. CompletedAt is the latest
// signing time.
func NewDocumentCompletedPayload(doc documents.Document) DocumentCompletedPayload {
	payload := DocumentCompletedPayload{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Owner:      doc.Owner,
		Signers:    make([]string, 0, len(doc.Signers)),
	}
	for _, s := range doc.Signers {
		payload.Signers = append(payload.Signers, s.Signer)
		if s.SignedAt != nil && s.SignedAt.After(payload.CompletedAt) {
			payload.CompletedAt = *s.SignedAt
		}
	}
	return payload
}

// NewDocumentCompletedTask constructs an Asynq task.
func NewDocumentCompletedTask(payload DocumentCompletedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDocumentCompleted, data), nil
}

// ReceiptKey is where the completion receipt for a document is stored.
func ReceiptKey(documentID string) string {
	return "documents:completed:" + documentID
}

// DocumentCompletedJob files a completion receipt for the document owner.
type DocumentCompletedJob struct {
	Store   storage.KV
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDocumentCompletedJob wires dependencies for the completion handler.
func NewDocumentCompletedJob(store storage.KV, logger *slog.Logger, metrics *jobmetrics.Metrics) *DocumentCompletedJob {
	return &DocumentCompletedJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes TaskDocumentCompleted tasks.
func (j *DocumentCompletedJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("document completed: handler not configured")
	}
	var payload DocumentCompletedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.DocumentID == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDocumentCompleted)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("document", payload.DocumentID))
	receipt, err := json.Marshal(payload)
	if err != nil {
		resultErr = err
		return resultErr
	}
	if err := j.Store.Set(ctx, ReceiptKey(payload.DocumentID), receipt, 0); err != nil {
		resultErr = err
		logger.Error("store completion receipt", slog.Any("error", err))
		return resultErr
	}
	logger.Info("document fully signed",
		slog.String("owner", payload.Owner),
		slog.Int("signers", len(payload.Signers)),
		slog.Time("completed_at", payload.CompletedAt))
	return resultErr
}

func (j *DocumentCompletedJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDocumentCompleted))
	}
	return slog.Default().With(slog.String("job", TaskDocumentCompleted))
}

func (j *DocumentCompletedJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

// Inline runs the completion job in-process. It stands in for the queue
// when no Redis is configured.
type Inline struct {
	Job *DocumentCompletedJob
}

// DocumentCompleted implements documents.CompletionNotifier.
func (n Inline) DocumentCompleted(ctx context.Context, doc documents.Document) error {
	task, err := NewDocumentCompletedTask(NewDocumentCompletedPayload(doc))
	if err != nil {
		return err
	}
	return n.Job.Handle(ctx, task)
}

var _ documents.CompletionNotifier = Inline{}
