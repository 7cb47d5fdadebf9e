package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lin871229/lottery-app-v4/internal/draw"
	"github.com/lin871229/lottery-app-v4/internal/draw/service"
	"github.com/lin871229/lottery-app-v4/internal/export"
	"github.com/lin871229/lottery-app-v4/internal/ledger"
	"github.com/lin871229/lottery-app-v4/internal/roster"
	id "github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
	"github.com/lin871229/lottery-app-v4/pkg/platform/httputil"
	"github.com/lin871229/lottery-app-v4/pkg/requestcontext"
)

// Service defines the engine operations the HTTP API exposes.
type Service interface {
	ListDistricts() []string
	LoadRoster(ctx context.Context, filename string, r io.Reader, layoutName string) (*service.RosterSummary, error)
	GetRoster(ctx context.Context, rosterID id.RosterID) (*service.RosterSummary, error)
	CreateSession(ctx context.Context) (*service.SessionSummary, error)
	GetSession(ctx context.Context, sessionID id.SessionID) (*service.SessionSummary, error)
	EndSession(ctx context.Context, sessionID id.SessionID) error
	Draw(ctx context.Context, sessionID id.SessionID, req service.DrawRequest) (*draw.Result, error)
	Pool(ctx context.Context, sessionID id.SessionID, rosterID id.RosterID, category, district string) ([]roster.Organization, error)
	Reset(ctx context.Context, sessionID id.SessionID, category string) error
	History(ctx context.Context, sessionID id.SessionID, category string) ([]ledger.Event, error)
	Export(ctx context.Context, w io.Writer, sessionID id.SessionID, format export.Format, category string) error
}

// Handler wires roster and session endpoints to the draw service.
type Handler struct {
	service        Service
	logger         *zap.Logger
	maxUploadBytes int64
}

// New constructs a handler. maxUploadBytes bounds roster uploads.
func New(service Service, logger *zap.Logger, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/districts", h.HandleListDistricts)
	r.Post("/rosters", h.HandleUploadRoster)
	r.Get("/rosters/{rosterID}", h.HandleGetRoster)
	r.Post("/sessions", h.HandleCreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.HandleGetSession)
		r.Delete("/", h.HandleEndSession)
		r.Post("/draws", h.HandleDraw)
		r.Get("/pool", h.HandlePool)
		r.Post("/reset", h.HandleReset)
		r.Get("/history", h.HandleHistory)
		r.Get("/export", h.HandleExport)
	})
}

// HandleListDistricts handles GET /districts.
func (h *Handler) HandleListDistricts(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, DistrictsResponse{Districts: h.service.ListDistricts()})
}

// HandleUploadRoster handles POST /rosters (multipart: file, optional layout).
func (h *Handler) HandleUploadRoster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodePayloadTooLarge,
				fmt.Sprintf("roster file exceeds %d bytes", h.maxUploadBytes)))
			return
		}
		h.logger.Warn("invalid roster upload", zap.String("request_id", requestID), zap.Error(err))
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart form with a file field is required"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file field is required"))
		return
	}
	defer func() { _ = file.Close() }()

	summary, err := h.service.LoadRoster(ctx, header.Filename, file, r.FormValue("layout"))
	if err != nil {
		h.writeServiceError(w, requestID, "roster upload failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRosterResponse(summary))
}

// HandleGetRoster handles GET /rosters/{rosterID}.
func (h *Handler) HandleGetRoster(w http.ResponseWriter, r *http.Request) {
	rosterID, err := id.ParseRosterID(chi.URLParam(r, "rosterID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	summary, err := h.service.GetRoster(r.Context(), rosterID)
	if err != nil {
		h.writeServiceError(w, requestcontext.RequestID(r.Context()), "get roster failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRosterResponse(summary))
}

// HandleCreateSession handles POST /sessions.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.CreateSession(r.Context())
	if err != nil {
		h.writeServiceError(w, requestcontext.RequestID(r.Context()), "create session failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSessionResponse(summary))
}

// HandleGetSession handles GET /sessions/{sessionID}.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	summary, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		h.writeServiceError(w, requestcontext.RequestID(r.Context()), "get session failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(summary))
}

// HandleEndSession handles DELETE /sessions/{sessionID}.
func (h *Handler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	if err := h.service.EndSession(r.Context(), sessionID); err != nil {
		h.writeServiceError(w, requestcontext.RequestID(r.Context()), "end session failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDraw handles POST /sessions/{sessionID}/draws.
func (h *Handler) HandleDraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DrawRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	result, err := h.service.Draw(ctx, sessionID, req.toService())
	if err != nil {
		var pool *draw.InsufficientPoolError
		if errors.As(err, &pool) {
			httputil.WriteJSON(w, http.StatusConflict, InsufficientPoolResponse{
				Error:            string(dErrors.CodeInsufficientPool),
				ErrorDescription: pool.Error(),
				Requested:        pool.Requested,
				Available:        pool.Available,
			})
			return
		}
		h.writeServiceError(w, requestID, "draw failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDrawResponse(req, result))
}

// HandlePool handles GET /sessions/{sessionID}/pool?roster_id=&category=&district=.
func (h *Handler) HandlePool(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	rosterID, err := id.ParseRosterID(q.Get("roster_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	orgs, err := h.service.Pool(r.Context(), sessionID, rosterID, q.Get("category"), q.Get("district"))
	if err != nil {
		h.writeServiceError(w, requestcontext.RequestID(r.Context()), "pool preview failed", err)
		return
	}
	resp := PoolResponse{Count: len(orgs), Organizations: make([]OrganizationResponse, len(orgs))}
	for i, org := range orgs {
		resp.Organizations[i] = toOrganizationResponse(org)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleReset handles POST /sessions/{sessionID}/reset. An empty body resets
// every category.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	requestID := requestcontext.RequestID(r.Context())
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ResetRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	if err := h.service.Reset(r.Context(), sessionID, req.Category); err != nil {
		h.writeServiceError(w, requestID, "reset failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleHistory handles GET /sessions/{sessionID}/history?category=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	events, err := h.service.History(r.Context(), sessionID, r.URL.Query().Get("category"))
	if err != nil {
		h.writeServiceError(w, requestcontext.RequestID(r.Context()), "history failed", err)
		return
	}
	resp := HistoryResponse{Events: make([]EventResponse, len(events))}
	for i, e := range events {
		resp.Events[i] = toEventResponse(e)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleExport handles GET /sessions/{sessionID}/export?format=&category=.
// The file is rendered fully before any byte is sent so failures still get a
// JSON error.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, sessionID, format, r.URL.Query().Get("category")); err != nil {
		h.writeServiceError(w, requestcontext.RequestID(r.Context()), "export failed", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(format.FileName()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func parseSessionID(w http.ResponseWriter, r *http.Request) (id.SessionID, bool) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.SessionID{}, false
	}
	return sessionID, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, requestID, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.Error(msg, zap.String("request_id", requestID), zap.Error(err))
	} else {
		h.logger.Debug(msg, zap.String("request_id", requestID), zap.Error(err))
	}
	httputil.WriteError(w, err)
}
