package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/wardrobe/internal/model"
	"github.com/hitoshi/wardrobe/internal/recommend"
	"github.com/hitoshi/wardrobe/internal/validation"
)

// OutfitServiceInterface はコーディネートハンドラーが必要とするサービスインターフェース。
type OutfitServiceInterface interface {
	// SaveOutfits はコーディネート案を一括保存する。
	SaveOutfits(ctx context.Context, user *model.User, proposals []model.OutfitProposal) error
	// WeekOutfits は今日から7日分の保存済みコーディネートを返す。
	WeekOutfits(ctx context.Context, userID string) ([]model.OutfitWithItems, error)
	// GeneratePlan は7日分のコーディネート案を生成する。保存はしない。
	GeneratePlan(ctx context.Context, userID string, req recommend.Request) ([]model.OutfitWithItems, error)
}

// OutfitHandler はコーディネートのHTTPハンドラー。
type OutfitHandler struct {
	service   OutfitServiceInterface
	validator *validation.Validator
}

// NewOutfitHandler はOutfitHandlerを生成する。
func NewOutfitHandler(service OutfitServiceInterface) *OutfitHandler {
	return &OutfitHandler{
		service:   service,
		validator: validation.New(),
	}
}

// outfitProposalRequest は保存するコーディネート1日分。
type outfitProposalRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	TopID    int64  `json:"top_id" validate:"gt=0"`
	BottomID int64  `json:"bottom_id" validate:"gt=0"`
}

// saveOutfitsRequest はリクエストボディの配列を検証するための入れ物。
type saveOutfitsRequest struct {
	Outfits []outfitProposalRequest `json:"outfits" validate:"dive"`
}

// generateRequest はプラン生成リクエストのボディ。
type generateRequest struct {
	City         string               `json:"city" validate:"max=100"`
	PreviousPlan *previousPlanRequest `json:"previous_plan"`
}

// previousPlanRequest は再生成時に送られる前回のプラン。生成結果と同じ形。
type previousPlanRequest struct {
	Plan []previousPlanDay `json:"plan" validate:"max=7,dive"`
}

type previousPlanDay struct {
	Date   string      `json:"date"`
	Top    planItemRef `json:"top"`
	Bottom planItemRef `json:"bottom"`
}

type planItemRef struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// messageResponse は処理結果メッセージのAPIレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// SaveOutfits はコーディネートを保存する。
// POST /outfits
func (h *OutfitHandler) SaveOutfits(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req saveOutfitsRequest
	if !decodeJSONBody(w, r, &req.Outfits) {
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(err.Error()))
		return
	}

	proposals := make([]model.OutfitProposal, len(req.Outfits))
	for i, o := range req.Outfits {
		// datetimeタグで検証済み
		date, _ := time.Parse(model.DateLayout, o.Date)
		proposals[i] = model.OutfitProposal{Date: date, TopID: o.TopID, BottomID: o.BottomID}
	}

	if err := h.service.SaveOutfits(r.Context(), user, proposals); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Outfits saved"})
}

// WeekOutfits は今日から7日分のコーディネートを返す。
// GET /outfits/week
func (h *OutfitHandler) WeekOutfits(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	outfits, err := h.service.WeekOutfits(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOutfitResponses(outfits))
}

// GeneratePlan は生成モデルで7日分のコーディネート案を生成する。
// POST /outfits/generate
func (h *OutfitHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if r.ContentLength != 0 {
		if !decodeJSONBody(w, r, &req) {
			return
		}
	}
	if err := h.validator.Validate(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(err.Error()))
		return
	}

	recReq := recommend.Request{City: req.City}
	if req.PreviousPlan != nil {
		for _, d := range req.PreviousPlan.Plan {
			recReq.PreviousPlan = append(recReq.PreviousPlan, recommend.PreviousDay{
				TopID:    d.Top.ID,
				BottomID: d.Bottom.ID,
			})
		}
	}

	plan, err := h.service.GeneratePlan(r.Context(), user.ID, recReq)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOutfitResponses(plan))
}
