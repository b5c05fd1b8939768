package routes

import (
	"net/http"
	"time"

	"transient-booking-server/models"
	"transient-booking-server/services"
	"transient-booking-server/storage"
	"transient-booking-server/utils"

	"github.com/kataras/iris/v12"
)

type UnitInput struct {
	Name           string `json:"name" validate:"required,max=256"`
	Description    string `json:"description"`
	BaseRate       int64  `json:"baseRate" validate:"required,min=1"`
	BaseOccupancy  int    `json:"baseOccupancy" validate:"required,min=1"`
	ExtraGuestRate int64  `json:"extraGuestRate" validate:"min=0"`
	MaxOccupancy   int    `json:"maxOccupancy" validate:"required,min=1"`
	IsActive       *bool  `json:"isActive"`
}

func GetUnits(ctx iris.Context) {
	var units []models.Unit
	if err := storage.DB.Where("is_active = ?", true).Order("name ASC").Find(&units).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(units)
}

func GetUnit(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid unit ID", ctx)
		return
	}

	var unit models.Unit
	if err := storage.DB.First(&unit, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Unit not found", ctx)
		return
	}
	ctx.JSON(unit)
}

// GetUnitAvailability previews whether a date range is free. This is the soft,
// tentative-or-confirmed view used before booking; confirmation re-checks
// against confirmed allocations only.
func GetUnitAvailability(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid unit ID", ctx)
		return
	}

	checkIn, err := time.Parse("2006-01-02", ctx.URLParam("checkIn"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "checkIn must be YYYY-MM-DD", ctx)
		return
	}
	checkOut, err := time.Parse("2006-01-02", ctx.URLParam("checkOut"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "checkOut must be YYYY-MM-DD", ctx)
		return
	}

	conflicts, err := services.UnitConflicts(storage.DB, id, checkIn, checkOut, services.TentativeOrConfirmed, 0)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	booked := make([]iris.Map, 0, len(conflicts))
	for _, c := range conflicts {
		booked = append(booked, iris.Map{"checkIn": c.CheckIn, "checkOut": c.CheckOut, "status": c.Status})
	}

	ctx.JSON(iris.Map{
		"available": len(conflicts) == 0,
		"booked":    booked,
	})
}

// AdminCreateUnit creates a unit.
func AdminCreateUnit(ctx iris.Context) {
	var input UnitInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	unit := models.Unit{
		Name:           input.Name,
		Description:    input.Description,
		BaseRate:       input.BaseRate,
		BaseOccupancy:  input.BaseOccupancy,
		ExtraGuestRate: input.ExtraGuestRate,
		MaxOccupancy:   input.MaxOccupancy,
		IsActive:       input.IsActive,
	}
	if unit.IsActive == nil {
		active := true
		unit.IsActive = &active
	}

	if err := storage.DB.Create(&unit).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "unit.create", "unit", unit.ID, nil, unit)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(unit)
}

// AdminUpdateUnit edits a unit's rate table. Existing reservations keep the
// price they were created with.
func AdminUpdateUnit(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var unit models.Unit
	if err := storage.DB.First(&unit, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "unit not found")
		return
	}

	var input UnitInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := unit
	unit.Name = input.Name
	unit.Description = input.Description
	unit.BaseRate = input.BaseRate
	unit.BaseOccupancy = input.BaseOccupancy
	unit.ExtraGuestRate = input.ExtraGuestRate
	unit.MaxOccupancy = input.MaxOccupancy
	if input.IsActive != nil {
		unit.IsActive = input.IsActive
	}

	if err := storage.DB.Save(&unit).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "unit.update", "unit", unit.ID, before, unit)
	ctx.JSON(iris.Map{"data": unit})
}
