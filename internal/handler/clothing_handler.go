package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/wardrobe/internal/model"
	"github.com/hitoshi/wardrobe/internal/validation"
	"github.com/hitoshi/wardrobe/internal/wardrobe"
)

// ClothingServiceInterface は衣類ハンドラーが必要とするサービスインターフェース。
type ClothingServiceInterface interface {
	List(ctx context.Context, userID string) ([]*model.ClothingItem, error)
	Create(ctx context.Context, userID string, in wardrobe.CreateInput) (*model.ClothingItem, error)
	SetAvailability(ctx context.Context, userID string, itemID int64, available bool) (*model.ClothingItem, error)
	Delete(ctx context.Context, userID string, itemID int64) error
}

// ClothingHandler は衣類カタログのHTTPハンドラー。
type ClothingHandler struct {
	service   ClothingServiceInterface
	validator *validation.Validator
}

// NewClothingHandler はClothingHandlerを生成する。
func NewClothingHandler(service ClothingServiceInterface) *ClothingHandler {
	return &ClothingHandler{
		service:   service,
		validator: validation.New(),
	}
}

// updateAvailabilityRequest は着用可否更新リクエストのボディ。
type updateAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// ListItems はユーザーの衣類一覧を返す。
// GET /clothing-items
func (h *ClothingHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toClothingItemResponses(items))
}

// CreateItem は衣類を登録する。
// POST /clothing-items
func (h *ClothingHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req wardrobe.CreateInput
	if !decodeJSONBody(w, r, &req) {
		return
	}

	item, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toClothingItemResponse(item))
}

// UpdateAvailability は衣類の着用可否を更新する。
// PATCH /clothing-items/{id}
func (h *ClothingHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	var req updateAvailabilityRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(err.Error()))
		return
	}

	item, err := h.service.SetAvailability(r.Context(), user.ID, itemID, *req.IsAvailable)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toClothingItemResponse(item))
}

// DeleteItem は衣類を削除する。
// DELETE /clothing-items/{id}
func (h *ClothingHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, itemID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseItemID はURLパスの{id}を正の整数として解析する。
func parseItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("clothing item id must be a positive integer"))
		return 0, false
	}
	return id, true
}
