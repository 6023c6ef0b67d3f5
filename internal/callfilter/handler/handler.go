// Package handler exposes call filtering and block list management over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/service/pipeline"
	id "callguard/pkg/domain"
	dErrors "callguard/pkg/domain-errors"
	"callguard/pkg/platform/httputil"
	"callguard/pkg/platform/sentinel"
	"callguard/pkg/requestcontext"
)

// CallFilter produces the decision for one call.
type CallFilter interface {
	FilterCall(ctx context.Context, call *models.Call) pipeline.Decision
}

// BlockManager manages a profile's block list and policy.
type BlockManager interface {
	Block(ctx context.Context, profileID id.ProfileID, handle id.Handle) error
	Unblock(ctx context.Context, profileID id.ProfileID, handle id.Handle) error
	ListBlocked(ctx context.Context, profileID id.ProfileID) ([]string, error)
	Policy(ctx context.Context, profileID id.ProfileID) (models.BlockPolicy, error)
	SetPolicy(ctx context.Context, profileID id.ProfileID, policy models.BlockPolicy) error
}

// ContactManager maintains the contacts consulted by the filters.
type ContactManager interface {
	Upsert(ctx context.Context, contact models.Contact) error
	Delete(ctx context.Context, profileID id.ProfileID, handle id.Handle) error
}

type Handler struct {
	logger   *slog.Logger
	filter   CallFilter
	blocks   BlockManager
	contacts ContactManager
}

// New creates a Handler. contacts may be nil when contacts are owned by
// another system; the contact routes are then not registered.
func New(filter CallFilter, blocks BlockManager, contacts ContactManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		filter:   filter,
		blocks:   blocks,
		contacts: contacts,
	}
}

// Register mounts the /v1 routes on r. Authentication and request
// correlation middleware are applied by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/calls/filter", h.handleFilterCall)

	r.Route("/v1/profiles/{profileID}", func(r chi.Router) {
		r.Get("/blocked-numbers", h.handleListBlocked)
		r.Put("/blocked-numbers/{number}", h.handleBlock)
		r.Delete("/blocked-numbers/{number}", h.handleUnblock)
		r.Get("/block-policy", h.handleGetPolicy)
		r.Put("/block-policy", h.handleSetPolicy)
		if h.contacts != nil {
			r.Put("/contacts/{number}", h.handleUpsertContact)
			r.Delete("/contacts/{number}", h.handleDeleteContact)
		}
	})
}

func (h *Handler) handleFilterCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[FilterCallRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	decision := h.filter.FilterCall(ctx, req.call)
	httputil.WriteJSON(w, http.StatusOK, toFilterCallResponse(req.call, decision))
}

func (h *Handler) handleListBlocked(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}
	numbers, err := h.blocks.ListBlocked(ctx, profileID)
	if err != nil {
		h.fail(ctx, w, "failed to list blocked numbers", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BlockedNumbersResponse{ProfileID: profileID.String(), Numbers: numbers})
}

func (h *Handler) handleBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, handle, ok := h.profileAndNumber(w, r)
	if !ok {
		return
	}
	if err := h.blocks.Block(ctx, profileID, handle); err != nil {
		h.fail(ctx, w, "failed to block number", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnblock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, handle, ok := h.profileAndNumber(w, r)
	if !ok {
		return
	}
	if err := h.blocks.Unblock(ctx, profileID, handle); err != nil {
		h.fail(ctx, w, "failed to unblock number", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}
	policy, err := h.blocks.Policy(ctx, profileID)
	if err != nil {
		h.fail(ctx, w, "failed to load block policy", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBlockPolicyResponse(profileID.String(), policy))
}

func (h *Handler) handleSetPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BlockPolicyRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.blocks.SetPolicy(ctx, profileID, req.policy()); err != nil {
		h.fail(ctx, w, "failed to save block policy", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBlockPolicyResponse(profileID.String(), req.policy()))
}

func (h *Handler) handleUpsertContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, handle, ok := h.profileAndNumber(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ContactRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	err := h.contacts.Upsert(ctx, models.Contact{
		ProfileID:       profileID,
		Handle:          handle,
		DisplayName:     req.DisplayName,
		SendToVoicemail: req.SendToVoicemail,
	})
	if err != nil {
		h.fail(ctx, w, "failed to save contact", dErrors.Wrap(err, dErrors.CodeInternal, "failed to save contact"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, handle, ok := h.profileAndNumber(w, r)
	if !ok {
		return
	}
	if err := h.contacts.Delete(ctx, profileID, handle); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "contact not found")
		}
		h.fail(ctx, w, "failed to delete contact", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----- helpers -----

func (h *Handler) profileID(w http.ResponseWriter, r *http.Request) (id.ProfileID, bool) {
	profileID, err := id.ParseProfileID(chi.URLParam(r, "profileID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ProfileID{}, false
	}
	return profileID, true
}

func (h *Handler) profileAndNumber(w http.ResponseWriter, r *http.Request) (id.ProfileID, id.Handle, bool) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return id.ProfileID{}, "", false
	}
	raw, err := url.PathUnescape(chi.URLParam(r, "number"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid number"))
		return id.ProfileID{}, "", false
	}
	handle, err := id.ParseHandle(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return id.ProfileID{}, "", false
	}
	if handle.Normalize().IsEmpty() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "number is required"))
		return id.ProfileID{}, "", false
	}
	return profileID, handle, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
