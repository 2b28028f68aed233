// Package api is the thin service layer over the calculation engine.
// It only ingests input, orchestrates the engine, and serializes output;
// it never performs cost logic of its own.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/engine"
	"github.com/abhishekuniyalibyte/clover-calculator/core/pricing"
	"github.com/abhishekuniyalibyte/clover-calculator/core/snapshot"
	"github.com/abhishekuniyalibyte/clover-calculator/core/surcharge"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/logging"
)

// Handlers carries the engine collaborators. All state is injected;
// handlers themselves are stateless.
type Handlers struct {
	resolver *catalog.Resolver
	engine   *engine.Engine
	store    *snapshot.Store
	log      *zap.Logger
}

// NewHandlers wires the service layer.
func NewHandlers(resolver *catalog.Resolver, eng *engine.Engine, store *snapshot.Store) *Handlers {
	return &Handlers{
		resolver: resolver,
		engine:   eng,
		store:    store,
		log:      logging.Named("api"),
	}
}

// Compute handles POST /api/v1/analyses/compute.
func (h *Handlers) Compute(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, requestID, errors.Wrap(errors.TypeInput, "invalid request body", err))
		return
	}
	if req.Profile == nil {
		h.writeError(w, requestID, errors.Input("profile is required"))
		return
	}
	if req.TenantID == "" {
		req.TenantID = req.Profile.TenantID
	}

	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}

	cat, err := h.resolver.Resolve(req.TenantID, asOf)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}

	modelCfg, ok := cat.Model(req.ModelKind)
	if !ok {
		h.writeError(w, requestID, errors.NotFound("pricing model config", string(req.ModelKind)))
		return
	}

	proposed, err := pricing.Evaluate(req.Profile, modelCfg, cat)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}

	var surResult *surcharge.Result
	if req.SurchargeProgramID != "" {
		surCfg, ok := cat.Surcharge(req.SurchargeProgramID)
		if !ok {
			h.writeError(w, requestID, errors.NotFound("surcharge program", req.SurchargeProgramID))
			return
		}
		surResult, err = surcharge.Evaluate(req.Profile, surCfg, proposed)
		if err != nil {
			h.writeError(w, requestID, err)
			return
		}
	}

	comparison, err := h.engine.Compute(req.Profile, cat, proposed, req.DeviceSelections, req.OneTimeFees, surResult)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}

	snap, err := snapshot.NewBuilder(comparison).
		WithDeviceSelections(req.DeviceSelections).
		WithTemplateVersion(req.TemplateVersion).
		WithSupersedes(req.Supersedes).
		Build()
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}

	persisted := false
	if !req.DryRun {
		if err := h.store.Save(r.Context(), snap); err != nil {
			h.writeError(w, requestID, err)
			return
		}
		persisted = true
	}

	h.log.Info("analysis computed",
		zap.String("request_id", requestID),
		zap.String("tenant", req.TenantID),
		zap.String("snapshot", string(snap.ID)),
		zap.Bool("persisted", persisted))

	h.writeJSON(w, http.StatusOK, ComputeResponse{
		RequestID: requestID,
		Persisted: persisted,
		Snapshot:  snap,
	})
}

// GetSnapshot handles GET /api/v1/snapshots/{id}.
func (h *Handlers) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	id := snapshot.ID(chi.URLParam(r, "id"))

	snap, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// GetSnapshotCharts handles GET /api/v1/snapshots/{id}/charts: the
// per-timeframe tuple array for the reporting collaborator.
func (h *Handlers) GetSnapshotCharts(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	id := snapshot.ID(chi.URLParam(r, "id"))

	snap, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap.ChartRows())
}

// SnapshotHistory handles GET /api/v1/profiles/{profileID}/snapshots.
func (h *Handlers) SnapshotHistory(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	profileID := chi.URLParam(r, "profileID")
	tenantID := r.URL.Query().Get("tenant_id")

	history, err := h.store.History(r.Context(), tenantID, profileID)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	h.writeJSON(w, http.StatusOK, history)
}

// ResolveCatalog handles POST /api/v1/catalog/resolve.
func (h *Handlers) ResolveCatalog(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, requestID, errors.Wrap(errors.TypeInput, "invalid request body", err))
		return
	}
	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}

	cat, err := h.resolver.Resolve(req.TenantID, asOf)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ResolveResponse{
		VersionID:   cat.ID,
		ContentHash: cat.Hash,
		FeeItems:    len(cat.FeeItems),
		Devices:     len(cat.Devices),
		Models:      len(cat.Models),
		Surcharges:  len(cat.Surcharges),
	})
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.Newf(errors.TypeInput, "bad as_of date %q", s)
	}
	return t.UTC(), nil
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handlers) writeError(w http.ResponseWriter, requestID string, err error) {
	resp := ErrorResponse{
		RequestID: requestID,
		Type:      string(errors.TypeInternal),
		Message:   err.Error(),
	}
	status := http.StatusInternalServerError
	if domainErr, ok := err.(*errors.Error); ok {
		resp.Type = string(domainErr.Type)
		resp.Message = domainErr.Message
		resp.Context = domainErr.Context
		status = statusFor(domainErr.Type)
	}

	if status >= 500 {
		h.log.Error("request failed", zap.String("request_id", requestID), zap.Error(err))
	} else {
		h.log.Warn("request rejected", zap.String("request_id", requestID), zap.Error(err))
	}
	h.writeJSON(w, status, resp)
}

func statusFor(t errors.Type) int {
	switch t {
	case errors.TypeInput, errors.TypeUnsupportedModel, errors.TypeConfig:
		return http.StatusBadRequest
	case errors.TypeMissingInput:
		return http.StatusUnprocessableEntity
	case errors.TypeCatalogConflict, errors.TypeStaleSupersession:
		return http.StatusConflict
	case errors.TypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
