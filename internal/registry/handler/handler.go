package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"assetledger/internal/platform/metrics"
	"assetledger/internal/registry/models"
	"assetledger/pkg/domain"
	dErrors "assetledger/pkg/domain-errors"
	"assetledger/pkg/platform/httputil"
	"assetledger/pkg/platform/middleware/auth"
	"assetledger/pkg/platform/middleware/metadata"
	request "assetledger/pkg/platform/middleware/request"
	"assetledger/pkg/platform/middleware/requesttime"
	"assetledger/pkg/requestcontext"
)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 64 << 10
)

// Service defines the registry operations exposed over HTTP.
type Service interface {
	Mint(ctx context.Context, caller domain.Identity, req models.MintRequest) (domain.AssetID, error)
	Update(ctx context.Context, caller domain.Identity, id domain.AssetID, req models.UpdateRequest) error
	Transfer(ctx context.Context, caller domain.Identity, id domain.AssetID, recipient domain.Identity) error
	Get(ctx context.Context, id domain.AssetID) (*models.AssetRecord, bool, error)
	Count(ctx context.Context) (uint64, error)
	CategoryHasAssets(ctx context.Context, category domain.Category) (bool, error)
	CategoryAssets(ctx context.Context, category domain.Category) ([]domain.AssetID, error)
	LastUpdate(ctx context.Context, id domain.AssetID) (*models.AssetUpdateRecord, bool, error)
	History(ctx context.Context, id domain.AssetID) ([]*models.AssetUpdateRecord, error)
	HolderOf(ctx context.Context, id domain.AssetID) (domain.Identity, bool, error)
	BalanceOf(ctx context.Context, owner domain.Identity) (uint64, error)
	FeeBalanceOf(ctx context.Context, identity domain.Identity) (uint64, error)

	Config(ctx context.Context) (models.RegistryConfig, error)
	SetFeeRecipient(ctx context.Context, caller, recipient domain.Identity) error
	SetCapacityCeiling(ctx context.Context, caller domain.Identity, n uint64) error
	SetMintFee(ctx context.Context, caller domain.Identity, fee uint64) error
	CreditFeeBalance(ctx context.Context, caller, identity domain.Identity, amount uint64) (uint64, error)
}

// Handler serves the /v1 registry API.
type Handler struct {
	registry  Service
	validator auth.CallerValidator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	// writeLimit runs after authentication on every write route
	writeLimit func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithWriteLimit installs a middleware, typically a rate limiter, in front
// of the write routes.
func WithWriteLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.writeLimit = mw
	}
}

// New creates a registry Handler. metrics may be nil.
func New(registry Service, validator auth.CallerValidator, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		registry:  registry,
		validator: validator,
		logger:    logger,
		metrics:   m,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes on r. Reads are public; writes need a caller
// token.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(request.Recovery(h.logger))
		v1.Use(request.RequestID)
		v1.Use(metadata.ClientMetadata)
		v1.Use(requesttime.Middleware)
		v1.Use(request.Logger(h.logger))
		v1.Use(request.Timeout(requestTimeout))
		v1.Use(request.ContentTypeJSON)
		v1.Use(metrics.LatencyMiddleware(h.metrics))

		v1.Get("/assets/count", h.handleCount)
		v1.Get("/assets/{id}", h.handleGetAsset)
		v1.Get("/assets/{id}/updates", h.handleUpdates)
		v1.Get("/categories/{category}", h.handleCategory)
		v1.Get("/holders/{id}", h.handleHolder)
		v1.Get("/balances/{address}", h.handleBalance)
		v1.Get("/config", h.handleGetConfig)

		v1.Group(func(w chi.Router) {
			w.Use(auth.RequireCaller(h.validator, h.logger))
			if h.writeLimit != nil {
				w.Use(h.writeLimit)
			}
			w.Post("/assets", h.handleMint)
			w.Patch("/assets/{id}", h.handleUpdate)
			w.Post("/assets/{id}/transfer", h.handleTransfer)
			w.Put("/config/fee-recipient", h.handleSetFeeRecipient)
			w.Put("/config/capacity", h.handleSetCapacity)
			w.Put("/config/mint-fee", h.handleSetMintFee)
			w.Post("/fees/credit", h.handleCreditFees)
		})
	})
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var body MintAssetRequest
	if !h.decode(w, r, &body) {
		return
	}
	req, err := body.ToModel()
	if err != nil {
		h.writeError(ctx, w, "mint", err)
		return
	}
	id, err := h.registry.Mint(ctx, caller, req)
	if err != nil {
		h.writeError(ctx, w, "mint", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, MintAssetResponse{ID: id})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}
	var body UpdateAssetRequest
	if !h.decode(w, r, &body) {
		return
	}
	if err := h.registry.Update(ctx, caller, id, body.ToModel()); err != nil {
		h.writeError(ctx, w, "update", err)
		return
	}
	h.writeAsset(w, r, id)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}
	var body TransferAssetRequest
	if !h.decode(w, r, &body) {
		return
	}
	recipient, err := parseParty(body.Recipient, dErrors.CodeInvalidOwner, "recipient")
	if err != nil {
		h.writeError(ctx, w, "transfer", err)
		return
	}
	if err := h.registry.Transfer(ctx, caller, id, recipient); err != nil {
		h.writeError(ctx, w, "transfer", err)
		return
	}
	h.writeAsset(w, r, id)
}

func (h *Handler) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}
	h.writeAsset(w, r, id)
}

func (h *Handler) writeAsset(w http.ResponseWriter, r *http.Request, id domain.AssetID) {
	ctx := r.Context()
	record, found, err := h.registry.Get(ctx, id)
	if err != nil {
		h.writeError(ctx, w, "get", err)
		return
	}
	if !found {
		httputil.WriteError(w, dErrors.New(dErrors.CodeAssetNotFound, "asset does not exist"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := h.registry.Count(ctx)
	if err != nil {
		h.writeError(ctx, w, "count", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountResponse{Count: n})
}

func (h *Handler) handleUpdates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}
	if _, found, err := h.registry.Get(ctx, id); err != nil {
		h.writeError(ctx, w, "updates", err)
		return
	} else if !found {
		httputil.WriteError(w, dErrors.New(dErrors.CodeAssetNotFound, "asset does not exist"))
		return
	}
	last, _, err := h.registry.LastUpdate(ctx, id)
	if err != nil {
		h.writeError(ctx, w, "updates", err)
		return
	}
	history, err := h.registry.History(ctx, id)
	if err != nil {
		h.writeError(ctx, w, "updates", err)
		return
	}
	if history == nil {
		history = []*models.AssetUpdateRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, UpdatesResponse{Last: last, History: history})
}

func (h *Handler) handleCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	has, err := h.registry.CategoryHasAssets(ctx, category)
	if err != nil {
		h.writeError(ctx, w, "category", err)
		return
	}
	ids, err := h.registry.CategoryAssets(ctx, category)
	if err != nil {
		h.writeError(ctx, w, "category", err)
		return
	}
	if ids == nil {
		ids = []domain.AssetID{}
	}
	httputil.WriteJSON(w, http.StatusOK, CategoryResponse{Category: category, HasAssets: has, IDs: ids})
}

func (h *Handler) handleHolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.assetID(w, r)
	if !ok {
		return
	}
	holder, found, err := h.registry.HolderOf(ctx, id)
	if err != nil {
		h.writeError(ctx, w, "holder", err)
		return
	}
	if !found {
		httputil.WriteError(w, dErrors.New(dErrors.CodeAssetNotFound, "no unique holder recorded for asset"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HolderResponse{AssetID: id, Holder: holder})
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, err := domain.ParseIdentity(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidIdentity, "address must be a 20-byte hex address"))
		return
	}
	balance, err := h.registry.BalanceOf(ctx, address)
	if err != nil {
		h.writeError(ctx, w, "balance", err)
		return
	}
	fees, err := h.registry.FeeBalanceOf(ctx, address)
	if err != nil {
		h.writeError(ctx, w, "balance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{Address: address, Balance: balance, FeeBalance: fees})
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, err := h.registry.Config(ctx)
	if err != nil {
		h.writeError(ctx, w, "config", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) handleSetFeeRecipient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var body SetFeeRecipientRequest
	if !h.decode(w, r, &body) {
		return
	}
	recipient, err := parseParty(body.Recipient, dErrors.CodeInvalidIdentity, "recipient")
	if err != nil {
		h.writeError(ctx, w, "set_fee_recipient", err)
		return
	}
	if err := h.registry.SetFeeRecipient(ctx, caller, recipient); err != nil {
		h.writeError(ctx, w, "set_fee_recipient", err)
		return
	}
	h.handleGetConfig(w, r)
}

func (h *Handler) handleSetCapacity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var body SetCapacityRequest
	if !h.decode(w, r, &body) {
		return
	}
	if err := h.registry.SetCapacityCeiling(ctx, caller, body.Capacity); err != nil {
		h.writeError(ctx, w, "set_capacity_ceiling", err)
		return
	}
	h.handleGetConfig(w, r)
}

func (h *Handler) handleSetMintFee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var body SetMintFeeRequest
	if !h.decode(w, r, &body) {
		return
	}
	if err := h.registry.SetMintFee(ctx, caller, body.Fee); err != nil {
		h.writeError(ctx, w, "set_mint_fee", err)
		return
	}
	h.handleGetConfig(w, r)
}

func (h *Handler) handleCreditFees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var body CreditFeesRequest
	if !h.decode(w, r, &body) {
		return
	}
	identity, err := parseParty(body.Identity, dErrors.CodeInvalidIdentity, "identity")
	if err != nil {
		h.writeError(ctx, w, "credit_fee_balance", err)
		return
	}
	balance, err := h.registry.CreditFeeBalance(ctx, caller, identity, body.Amount)
	if err != nil {
		h.writeError(ctx, w, "credit_fee_balance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FeeBalanceResponse{Identity: identity, Balance: balance})
}

func (h *Handler) requireCaller(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	caller, ok := requestcontext.Caller(r.Context())
	if !ok || caller.IsNull() {
		// only reachable when a write route is mounted without RequireCaller
		h.logger.ErrorContext(r.Context(), "caller missing from context despite auth middleware",
			"request_id", request.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "caller identity required"))
		return domain.NullIdentity, false
	}
	return caller, true
}

func (h *Handler) assetID(w http.ResponseWriter, r *http.Request) (domain.AssetID, bool) {
	id, err := domain.ParseAssetID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", request.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

// writeError logs server-side failures only.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.CodeOf(err)
	if httputil.StatusFor(code) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "registry request failed",
			"operation", op,
			"code", string(code),
			"request_id", request.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
