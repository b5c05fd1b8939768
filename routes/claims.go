package routes

import (
	"errors"
	"net/http"

	"transient-booking-server/models"
	"transient-booking-server/services"
	"transient-booking-server/storage"
	"transient-booking-server/utils"

	"github.com/kataras/iris/v12"
)

type SubmitClaimInput struct {
	ReservationID uint   `json:"reservationID" validate:"required"`
	Justification string `json:"justification" validate:"required,max=2000"`
	ProofURL      string `json:"proofURL"`
}

// POST /api/claims — agent files a claim on an unattached reservation.
func SubmitClaim(ctx iris.Context) {
	agentID := ctx.Values().Get("userID").(uint)

	var input SubmitClaimInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claim, err := services.SubmitClaim(input.ReservationID, agentID, input.Justification, input.ProofURL)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		case errors.Is(err, services.ErrClaimNotAllowed):
			utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
		default:
			utils.CreateInternalServerError(ctx)
		}
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(claim)
}

// GET /api/agent/claims — agent's own claims.
func GetAgentClaims(ctx iris.Context) {
	agentID := ctx.Values().Get("userID").(uint)

	var claims []models.ClaimRequest
	if err := storage.DB.Preload("Reservation").Where("agent_id = ?", agentID).Order("created_at DESC").Find(&claims).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(claims)
}

// GET /api/admin/claims
func AdminListClaims(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}
	status := ctx.URLParamDefault("status", "")

	q := storage.DB.Model(&models.ClaimRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	q.Count(&total)

	var items []models.ClaimRequest
	if err := q.Preload("Reservation").Preload("Agent").Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// POST /api/admin/claims/:id/approve
func AdminApproveClaim(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	claim, approveErr := services.ApproveClaim(id)
	if approveErr != nil {
		switch {
		case errors.Is(approveErr, services.ErrNotFound):
			utils.JSONError(ctx, http.StatusNotFound, "not_found", "claim not found")
		case errors.Is(approveErr, services.ErrAlreadyReviewed):
			utils.JSONError(ctx, http.StatusConflict, "already_reviewed", approveErr.Error())
		case errors.Is(approveErr, services.ErrClaimNotAllowed):
			utils.JSONError(ctx, http.StatusConflict, "agent_already_attached", approveErr.Error())
		default:
			utils.JSONError(ctx, http.StatusInternalServerError, "server_error", approveErr.Error())
		}
		return
	}

	utils.Audit(ctx, "claim.approve", "claim", claim.ID, nil, claim)
	ctx.JSON(iris.Map{"data": claim})
}

// POST /api/admin/claims/:id/reject { reason }
func AdminRejectClaim(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "invalid payload")
		return
	}

	claim, rejectErr := services.RejectClaim(id, body.Reason)
	if rejectErr != nil {
		switch {
		case errors.Is(rejectErr, services.ErrNotFound):
			utils.JSONError(ctx, http.StatusNotFound, "not_found", "claim not found")
		case errors.Is(rejectErr, services.ErrAlreadyReviewed):
			utils.JSONError(ctx, http.StatusConflict, "already_reviewed", rejectErr.Error())
		default:
			utils.JSONError(ctx, http.StatusInternalServerError, "server_error", rejectErr.Error())
		}
		return
	}

	utils.Audit(ctx, "claim.reject", "claim", claim.ID, nil, claim)
	ctx.JSON(iris.Map{"data": claim})
}
