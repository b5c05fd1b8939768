package routes

import (
	"errors"
	"net/http"
	"time"

	"transient-booking-server/models"
	"transient-booking-server/services"
	"transient-booking-server/storage"
	"transient-booking-server/utils"

	"github.com/kataras/iris/v12"
)

// GET /api/admin/reservations
func AdminListReservations(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := ctx.URLParamDefault("status", "")
	unitID := ctx.URLParamDefault("unit_id", "")
	guestID := ctx.URLParamDefault("guest_id", "")
	agentID := ctx.URLParamDefault("agent_id", "")
	dateFrom := ctx.URLParamDefault("date_from", "")
	dateTo := ctx.URLParamDefault("date_to", "")

	q := storage.DB.Model(&models.Reservation{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if unitID != "" {
		q = q.Where("unit_id = ?", unitID)
	}
	if guestID != "" {
		q = q.Where("guest_id = ?", guestID)
	}
	if agentID != "" {
		q = q.Where("agent_id = ?", agentID)
	}
	if dateFrom != "" {
		if t, err := time.Parse("2006-01-02", dateFrom); err == nil {
			q = q.Where("check_in >= ?", t)
		}
	}
	if dateTo != "" {
		if t, err := time.Parse("2006-01-02", dateTo); err == nil {
			q = q.Where("check_out <= ?", t)
		}
	}

	var total int64
	q.Count(&total)

	var items []models.Reservation
	if err := q.Preload("Unit").Preload("Guest").Preload("Agent").Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// GET /api/admin/reservations/:id
func AdminGetReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var res models.Reservation
	if err := storage.DB.Preload("Unit").Preload("Guest").Preload("Agent").First(&res, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "reservation not found")
		return
	}
	ctx.JSON(iris.Map{"data": res, "meta": iris.Map{}, "links": iris.Map{}})
}

// POST /api/admin/reservations/:id/approve
//
// Manual approval routes through the same idempotent reconciler as gateway
// confirmations. A conflict leaves the reservation pending and surfaces as a
// 409 so staff can decide what to do with it.
func AdminApproveReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var before models.Reservation
	if err := storage.DB.First(&before, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "reservation not found")
		return
	}

	reservation, confirmErr := services.ConfirmReservation(id, services.SourceManual)
	if confirmErr != nil {
		switch {
		case errors.Is(confirmErr, services.ErrAvailabilityConflict), errors.Is(confirmErr, services.ErrParkingConflict):
			utils.JSONError(ctx, http.StatusConflict, "availability_conflict", confirmErr.Error())
		case errors.Is(confirmErr, services.ErrNotPending):
			utils.JSONError(ctx, http.StatusConflict, "invalid_state", confirmErr.Error())
		case errors.Is(confirmErr, services.ErrNotFound):
			utils.JSONError(ctx, http.StatusNotFound, "not_found", "reservation not found")
		default:
			utils.JSONError(ctx, http.StatusInternalServerError, "server_error", confirmErr.Error())
		}
		return
	}

	utils.Audit(ctx, "reservation.approve", "reservation", reservation.ID, before, reservation)
	ctx.JSON(iris.Map{"data": reservation})
}

// POST /api/admin/reservations/:id/cancel { reason }
func AdminCancelReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := ctx.ReadJSON(&body); err != nil || body.Reason == "" {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "reason required")
		return
	}
	var res models.Reservation
	if err := storage.DB.First(&res, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "reservation not found")
		return
	}
	if res.Status == models.ReservationCancelled || res.Status == models.ReservationCompleted {
		utils.JSONError(ctx, http.StatusConflict, "invalid_state", "reservation cannot be cancelled")
		return
	}
	before := res
	res.Status = models.ReservationCancelled
	res.Note = body.Reason
	if err := storage.DB.Save(&res).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.Audit(ctx, "reservation.cancel", "reservation", res.ID, before, res)
	ctx.JSON(iris.Map{"data": res})
}
