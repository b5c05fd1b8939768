package routes

import (
	"time"

	"transient-booking-server/models"
	"transient-booking-server/storage"

	"github.com/kataras/iris/v12"
)

// GET /admin/stats
func AdminStats(ctx iris.Context) {
	var pendingReservations int64
	storage.DB.Model(&models.Reservation{}).Where("status = ?", models.ReservationPending).Count(&pendingReservations)
	var pendingClaims int64
	storage.DB.Model(&models.ClaimRequest{}).Where("status = ?", models.ClaimPending).Count(&pendingClaims)

	since7 := time.Now().AddDate(0, 0, -7)
	since30 := time.Now().AddDate(0, 0, -30)
	var confirmed7, confirmed30 int64
	storage.DB.Model(&models.Reservation{}).
		Where("status = ? AND updated_at >= ?", models.ReservationConfirmed, since7).Count(&confirmed7)
	storage.DB.Model(&models.Reservation{}).
		Where("status = ? AND updated_at >= ?", models.ReservationConfirmed, since30).Count(&confirmed30)

	var commissionsOwed int64
	storage.DB.Model(&models.Commission{}).
		Where("status = ?", models.CommissionPending).
		Select("COALESCE(SUM(amount), 0)").Scan(&commissionsOwed)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"pending_reservations": pendingReservations,
			"pending_claims":       pendingClaims,
			"confirmed_7d":         confirmed7,
			"confirmed_30d":        confirmed30,
			"commissions_owed":     commissionsOwed,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}

// GET /admin/activity
func AdminActivity(ctx iris.Context) {
	var logs []models.AuditLog
	storage.DB.Order("created_at DESC").Limit(100).Find(&logs)
	ctx.JSON(iris.Map{"data": logs, "meta": iris.Map{}, "links": iris.Map{}})
}
