// Package documentshttp serves document listings and the signing endpoint.
package documentshttp

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/limitless-hr/hris/internal/auth"
	"github.com/limitless-hr/hris/internal/documents"
	"github.com/limitless-hr/hris/internal/platform/httpx"
	"github.com/limitless-hr/hris/internal/rbac"
	"github.com/limitless-hr/hris/internal/shared"
	"github.com/limitless-hr/hris/internal/signature"
	"github.com/limitless-hr/hris/internal/view"
)

var errNotPendingSigner = fmt.Errorf("%w: you are not a pending signer of this document", httpx.ErrForbidden)

// Handler exposes the signing workflow over HTTP.
type Handler struct {
	logger    *slog.Logger
	workflow  *documents.Workflow
	templates *view.Engine
	csrf      *shared.CSRFManager
	guard     rbac.Guard
	validator *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, workflow *documents.Workflow, templates *view.Engine, csrf *shared.CSRFManager, guard rbac.Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		workflow:  workflow,
		templates: templates,
		csrf:      csrf,
		guard:     guard,
		validator: validator.New(),
	}
}

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(string(rbac.PermDocuments)))
		r.Get("/documents", h.listDocuments)
		r.Get("/documents/{id}", h.showDocument)
		r.Get("/documents/{id}/view", h.viewDocument)
		r.Post("/documents/{id}/sign", h.signDocument)
	})
}

type documentView struct {
	documents.Document
	CanSign bool `json:"canSign"`
}

func (h *Handler) present(r *http.Request, doc documents.Document) documentView {
	subject, _ := auth.EvaluatorFor(r).Subject()
	return documentView{Document: doc, CanSign: documents.CanUserSign(doc, subject.Name)}
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.workflow.List(r.Context())
	if err != nil {
		h.handleServerError(w, "list documents", err)
		return
	}
	out := make([]documentView, 0, len(docs))
	for _, doc := range docs {
		out = append(out, h.present(r, doc))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (h *Handler) showDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}
	auth.AccessFromContext(r.Context()).Audit.LogAccess(r.Context(), "documents", "view", map[string]any{"document": doc.ID})
	httpx.JSON(w, http.StatusOK, h.present(r, doc))
}

type signFormData struct {
	Action    string
	CSRFToken string
	Signer    string
}

type documentPageData struct {
	Document   documents.Document
	SignAction template.HTML
}

func (h *Handler) viewDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}
	access := auth.AccessFromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}

	presented := h.present(r, doc)
	subject, _ := access.Evaluator.Subject()
	form, err := h.templates.Fragment("partials/sign_form", signFormData{
		Action:    "/documents/" + doc.ID + "/sign",
		CSRFToken: csrfToken,
		Signer:    subject.Name,
	})
	if err != nil {
		h.handleServerError(w, "render sign form", err)
		return
	}
	signAction := rbac.Component{Permissions: []rbac.Permission{rbac.PermDocuments}}.Render(access.Evaluator, form)
	if !presented.CanSign {
		signAction = ""
	}

	access.Audit.LogAccess(r.Context(), "documents", "view", map[string]any{"document": doc.ID})
	data := viewTemplateData(r, doc.Title, csrfToken, flash, documentPageData{Document: doc, SignAction: signAction})
	if err := h.templates.Render(w, "pages/document.html", data); err != nil {
		h.logger.Error("render document", slog.Any("error", err))
	}
}

func viewTemplateData(r *http.Request, title, csrfToken string, flash *shared.FlashMessage, data any) view.TemplateData {
	return view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        auth.CurrentUser(r),
		Data:        data,
	}
}

func (h *Handler) signDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}
	access := auth.AccessFromContext(r.Context())
	subject, _ := access.Evaluator.Subject()
	if !documents.CanUserSign(doc, subject.Name) {
		httpx.RespondError(w, errNotPendingSigner)
		return
	}

	fromForm := !isJSON(r)
	req, err := decodeSignRequest(w, r)
	if httpx.IsTooLarge(err) {
		httpx.Problem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "signature payload exceeds the size limit")
		return
	}
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed signature payload")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	var (
		signed   documents.Document
		applyErr error
	)
	capture := signature.NewCapture(signature.Options{
		Signer:   access.Identity,
		Position: req.Position,
		Width:    req.Width,
		Height:   req.Height,
		OnComplete: func(rec signature.Record) {
			signed, applyErr = h.workflow.Apply(r.Context(), doc.ID, rec)
		},
	})
	if err := req.replay(capture); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	rec, err := capture.Save()
	switch {
	case errors.Is(err, signature.ErrEmptySignature):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Empty Signature", "draw or type a signature before saving")
		return
	case errors.Is(err, signature.ErrNoSigner):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in to sign documents")
		return
	case err != nil:
		h.handleServerError(w, "save signature", err)
		return
	}
	switch {
	case errors.Is(applyErr, documents.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
		return
	case errors.Is(applyErr, documents.ErrNotEligible):
		httpx.RespondError(w, errNotPendingSigner)
		return
	case applyErr != nil:
		h.handleServerError(w, "apply signature", applyErr)
		return
	}

	access.Audit.LogAccess(r.Context(), "documents", "sign", map[string]any{
		"document": doc.ID,
		"type":     string(rec.Type),
	})
	h.logger.Info("document signed", slog.String("document", doc.ID), slog.String("signer", rec.Signer))

	if fromForm {
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Document signed"})
		}
		http.Redirect(w, r, "/documents/"+doc.ID+"/view", http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, h.present(r, signed))
}

func (h *Handler) loadDocument(w http.ResponseWriter, r *http.Request) (documents.Document, bool) {
	doc, err := h.workflow.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
			return documents.Document{}, false
		}
		h.handleServerError(w, "load document", err)
		return documents.Document{}, false
	}
	return doc, true
}

func (h *Handler) handleServerError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func isJSON(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json"
}
