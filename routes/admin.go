package routes

import (
	"net/http"
	"strings"

	"transient-booking-server/models"
	"transient-booking-server/storage"
	"transient-booking-server/utils"

	"github.com/kataras/iris/v12"
)

// AdminListUsers - GET /admin/users?role=&q=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	var users []models.User
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))

	query := storage.DB.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ? OR phone_number LIKE ?",
			like, like, like, "%"+q+"%")
	}

	var total int64
	query.Count(&total)
	query = query.Offset((page - 1) * perPage).Limit(perPage)
	if err := query.Find(&users).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// AdminUpdateUserRole - PATCH /admin/users/:id/role. Admin only: promoting a
// guest to agent sets their commission rate; demotions clear it.
func AdminUpdateUserRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var body struct {
		Role           string   `json:"role"`
		CommissionRate *float64 `json:"commissionRate"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_payload"})
		return
	}
	switch body.Role {
	case models.RoleGuest, models.RoleAgent, models.RoleStaff, models.RoleAdmin:
	default:
		ctx.StopWithJSON(http.StatusUnprocessableEntity, iris.Map{"error": "invalid_role"})
		return
	}
	if body.CommissionRate != nil && (*body.CommissionRate < 0 || *body.CommissionRate > 1) {
		ctx.StopWithJSON(http.StatusUnprocessableEntity, iris.Map{"error": "invalid_commission_rate"})
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := user
	user.Role = body.Role
	if body.Role != models.RoleAgent {
		user.CommissionRate = 0
	} else if body.CommissionRate != nil {
		user.CommissionRate = *body.CommissionRate
	}
	if err := storage.DB.Save(&user).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, "user.role_update", "user", user.ID, before, user)

	ctx.JSON(iris.Map{"data": user})
}
