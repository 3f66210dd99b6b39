package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limitless-hr/hris/internal/documents"
	jobmetrics "github.com/limitless-hr/hris/internal/jobs"
	"github.com/limitless-hr/hris/internal/platform/storage"
)

func signedDocument() documents.Document {
	first := time.Date(2024, 1, 16, 14, 20, 0, 0, time.UTC)
	last := first.Add(48 * time.Hour)
	return documents.Document{
		ID:    "doc-003",
		Title: "Q1 Performance Review",
		Owner: "Sarah Johnson",
		Signers: []documents.SignerEntry{
			{Signer: "Sarah Johnson", Status: documents.StatusSigned, SignedAt: &first},
			{Signer: "John Doe", Status: documents.StatusSigned, SignedAt: &last},
		},
	}
}

func TestPayloadUsesLatestSignature(t *testing.T) {
	payload := NewDocumentCompletedPayload(signedDocument())
	assert.Equal(t, "doc-003", payload.DocumentID)
	assert.Equal(t, []string{"Sarah Johnson", "John Doe"}, payload.Signers)
	assert.Equal(t, time.Date(2024, 1, 18, 14, 20, 0, 0, time.UTC), payload.CompletedAt)
}

func TestInlineNotifierStoresReceipt(t *testing.T) {
	kv := storage.NewMemoryKV()
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	notifier := Inline{Job: NewDocumentCompletedJob(kv, nil, metrics)}

	require.NoError(t, notifier.DocumentCompleted(context.Background(), signedDocument()))

	raw, err := kv.Get(context.Background(), ReceiptKey("doc-003"))
	require.NoError(t, err)
	var receipt DocumentCompletedPayload
	require.NoError(t, json.Unmarshal(raw, &receipt))
	assert.Equal(t, "Sarah Johnson", receipt.Owner)

	count, err := testutil.GatherAndCount(reg, "hris_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	job := NewDocumentCompletedJob(storage.NewMemoryKV(), nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	err := job.Handle(context.Background(), asynq.NewTask(TaskDocumentCompleted, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestClientEnqueuesOncePerDocument(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()}, nil)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.DocumentCompleted(ctx, signedDocument()))
	require.NoError(t, client.DocumentCompleted(ctx, signedDocument()))

	pending, err := mr.List("asynq:{default}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	assert.Error(t, err)
}

func TestHealthInlineMode(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, nil).MountRoutes(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"mode":"inline"}`, rr.Body.String())
}
