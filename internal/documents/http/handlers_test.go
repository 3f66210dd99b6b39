package documentshttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limitless-hr/hris/internal/auth/authtest"
	"github.com/limitless-hr/hris/internal/documents"
	"github.com/limitless-hr/hris/internal/shared"
	"github.com/limitless-hr/hris/internal/view"
	_ "github.com/limitless-hr/hris/testing"
)

type recordingNotifier struct {
	mu   sync.Mutex
	done []string
}

func (n *recordingNotifier) DocumentCompleted(_ context.Context, doc documents.Document) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.done = append(n.done, doc.ID)
	return nil
}

func newServer(t *testing.T) (*authtest.Server, *recordingNotifier) {
	t.Helper()
	srv := authtest.New(t)
	templates, err := view.NewEngine()
	require.NoError(t, err)
	notifier := &recordingNotifier{}
	workflow := documents.NewWorkflow(documents.NewMemoryRepository(documents.SeedDocuments()...), notifier, nil)
	NewHandler(nil, workflow, templates, shared.NewCSRFManager("csrf"), srv.Guard()).MountRoutes(srv.Router)
	return srv, notifier
}

func decodeDocument(t *testing.T, body []byte) documentView {
	t.Helper()
	var out documentView
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func signJSON(srv *authtest.Server, id, payload string) *http.Request {
	return srv.JSON(http.MethodPost, "/documents/"+id+"/sign", strings.NewReader(payload))
}

func TestDocumentsRequireLogin(t *testing.T) {
	srv, _ := newServer(t)
	assert.Equal(t, http.StatusUnauthorized, srv.Get("/documents").Code)
}

func TestListMarksSignableDocuments(t *testing.T) {
	srv, _ := newServer(t)
	srv.LoginAs("employee@limitless.com")
	rr := srv.Get("/documents")
	require.Equal(t, http.StatusOK, rr.Code)

	var payload struct {
		Documents []documentView `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	require.Len(t, payload.Documents, 3)
	canSign := map[string]bool{}
	for _, d := range payload.Documents {
		canSign[d.ID] = d.CanSign
	}
	assert.True(t, canSign["doc-001"])
	assert.True(t, canSign["doc-002"])
	assert.False(t, canSign["doc-003"])
}

func TestShowUnknownDocument(t *testing.T) {
	srv, _ := newServer(t)
	srv.LoginAs("employee@limitless.com")
	assert.Equal(t, http.StatusNotFound, srv.Get("/documents/doc-999").Code)
}

func TestTypedSignatureMarksEntrySigned(t *testing.T) {
	srv, notifier := newServer(t)
	srv.LoginAs("employee@limitless.com")

	rr := srv.Do(signJSON(srv, "doc-001", `{"mode":"typed","text":"John Doe","position":{"x":10,"y":20}}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	doc := decodeDocument(t, rr.Body.Bytes())
	assert.False(t, doc.CanSign)
	for _, s := range doc.Signers {
		if s.Signer == "John Doe" {
			assert.Equal(t, documents.StatusSigned, s.Status)
			require.NotNil(t, s.SignedAt)
			require.Len(t, doc.Signatures, 1)
			assert.True(t, s.SignedAt.Equal(doc.Signatures[0].Timestamp))
		}
	}
	assert.Equal(t, []string{"doc-001"}, notifier.done)

	rr = srv.Do(signJSON(srv, "doc-001", `{"mode":"typed","text":"John Doe"}`))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDrawnSignature(t *testing.T) {
	srv, notifier := newServer(t)
	srv.LoginAs("employee@limitless.com")

	payload := `{"mode":"drawn","width":200,"height":80,"strokes":[[{"x":10,"y":10},{"x":60,"y":40},{"x":120,"y":20}]]}`
	rr := srv.Do(signJSON(srv, "doc-002", payload))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	doc := decodeDocument(t, rr.Body.Bytes())
	require.Len(t, doc.Signatures, 1)
	assert.True(t, strings.HasPrefix(doc.Signatures[0].Data, "data:image/png;base64,"))
	assert.Empty(t, notifier.done)
}

func TestBlankTypedSignatureRejected(t *testing.T) {
	srv, _ := newServer(t)
	srv.LoginAs("employee@limitless.com")
	rr := srv.Do(signJSON(srv, "doc-001", `{"mode":"typed","text":"   "}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestSignValidation(t *testing.T) {
	srv, _ := newServer(t)
	srv.LoginAs("employee@limitless.com")
	assert.Equal(t, http.StatusBadRequest, srv.Do(signJSON(srv, "doc-001", `{"mode":"stamped"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, srv.Do(signJSON(srv, "doc-001", `{"mode":"drawn"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, srv.Do(signJSON(srv, "doc-001", `{`)).Code)
}

func TestOffCanvasStrokesAreClipped(t *testing.T) {
	srv, _ := newServer(t)
	srv.LoginAs("employee@limitless.com")

	payload := `{"mode":"drawn","strokes":[[{"x":0,"y":0},{"x":-300000000,"y":300000000}]]}`
	start := time.Now()
	rr := srv.Do(signJSON(srv, "doc-002", payload))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSignPayloadLimits(t *testing.T) {
	srv, _ := newServer(t)
	srv.LoginAs("employee@limitless.com")

	stroke := `[{"x":1,"y":1},{"x":2,"y":2}]`
	tooManyStrokes := `{"mode":"drawn","strokes":[` + strings.TrimSuffix(strings.Repeat(stroke+",", 51), ",") + `]}`
	assert.Equal(t, http.StatusBadRequest, srv.Do(signJSON(srv, "doc-002", tooManyStrokes)).Code)

	point := `{"x":1,"y":1}`
	longStroke := `{"mode":"drawn","strokes":[[` + strings.TrimSuffix(strings.Repeat(point+",", 1001), ",") + `]]}`
	assert.Equal(t, http.StatusBadRequest, srv.Do(signJSON(srv, "doc-002", longStroke)).Code)

	oversized := `{"mode":"typed","text":"` + strings.Repeat("a", 300<<10) + `"}`
	assert.Equal(t, http.StatusRequestEntityTooLarge, srv.Do(signJSON(srv, "doc-002", oversized)).Code)
}

func TestNonSignerCannotSign(t *testing.T) {
	srv, _ := newServer(t)
	srv.LoginAs("employee@limitless.com")
	rr := srv.Do(signJSON(srv, "doc-003", `{"mode":"typed","text":"John Doe"}`))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestLastSignatureCompletesDocument(t *testing.T) {
	srv, notifier := newServer(t)
	srv.LoginAs("hr@limitless.com")
	rr := srv.Do(signJSON(srv, "doc-003", `{"mode":"typed","text":"Sarah Johnson"}`))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"doc-003"}, notifier.done)
}

func TestViewPageShowsSignFormOnlyToPendingSigner(t *testing.T) {
	srv, _ := newServer(t)
	srv.LoginAs("employee@limitless.com")
	rr := srv.Get("/documents/doc-001/view")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `action="/documents/doc-001/sign"`)

	rr = srv.Get("/documents/doc-003/view")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "sign-form")
}

func TestFormSignatureRedirects(t *testing.T) {
	srv, _ := newServer(t)
	srv.LoginAs("employee@limitless.com")
	rr := srv.Do(srv.Form(http.MethodPost, "/documents/doc-001/sign", url.Values{"mode": {"typed"}, "text": {"John Doe"}}))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/documents/doc-001/view", rr.Header().Get("Location"))
}
