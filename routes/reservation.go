package routes

import (
	"errors"
	"fmt"
	"log"
	"time"

	"transient-booking-server/models"
	"transient-booking-server/services"
	"transient-booking-server/storage"
	"transient-booking-server/utils"

	"github.com/kataras/iris/v12"
)

type CreateReservationInput struct {
	UnitID   uint      `json:"unitID" validate:"required"`
	CheckIn  time.Time `json:"checkIn" validate:"required"`
	CheckOut time.Time `json:"checkOut" validate:"required"`
	Adults   int       `json:"adults" validate:"required,gte=1,lte=16"`
	Children int       `json:"children" validate:"gte=0,lte=16"`

	HasCar                   bool `json:"hasCar"`
	HasPet                   bool `json:"hasPet"`
	HasAccessibilityDiscount bool `json:"hasAccessibilityDiscount"`

	Guest GuestContactInput `json:"guest" validate:"required"`

	// AgentID credits an agent at creation time. Bookings placed without one
	// can be claimed later through the claim workflow.
	AgentID *uint  `json:"agentID"`
	Note    string `json:"note"`
}

type QuoteReservationInput struct {
	UnitID                   uint      `json:"unitID" validate:"required"`
	CheckIn                  time.Time `json:"checkIn" validate:"required"`
	CheckOut                 time.Time `json:"checkOut" validate:"required"`
	Adults                   int       `json:"adults" validate:"required,gte=1,lte=16"`
	Children                 int       `json:"children" validate:"gte=0,lte=16"`
	HasAccessibilityDiscount bool      `json:"hasAccessibilityDiscount"`
}

// QuoteReservation prices a stay without creating anything.
func QuoteReservation(ctx iris.Context) {
	var input QuoteReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var unit models.Unit
	if err := storage.DB.First(&unit, input.UnitID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Unit not found", ctx)
		return
	}

	quote, err := services.CalculatePrice(&unit, input.CheckIn, input.CheckOut, input.Adults+input.Children, input.HasAccessibilityDiscount)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return
	}

	ctx.JSON(quote)
}

// CreateReservation takes a booking request, recomputes the price from the
// unit's rate table (the client never dictates price), soft-checks availability
// against tentative and confirmed holds, persists a pending reservation and
// opens a checkout session for the deposit. A gateway failure leaves the
// reservation pending so payment can be retried.
func CreateReservation(ctx iris.Context) {
	var input CreateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !input.CheckIn.Before(input.CheckOut) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "checkIn must be before checkOut", ctx)
		return
	}

	var unit models.Unit
	if err := storage.DB.First(&unit, input.UnitID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Unit not found", ctx)
		return
	}

	quote, err := services.CalculatePrice(&unit, input.CheckIn, input.CheckOut, input.Adults+input.Children, input.HasAccessibilityDiscount)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return
	}

	// Soft block: turn away obviously-doomed requests. This does not reserve
	// anything; exclusivity is enforced again at confirmation time.
	if err := services.CheckAvailability(storage.DB, unit.ID, input.CheckIn, input.CheckOut, input.HasCar, services.TentativeOrConfirmed, 0); err != nil {
		if errors.Is(err, services.ErrAvailabilityConflict) || errors.Is(err, services.ErrParkingConflict) {
			utils.CreateError(iris.StatusConflict, "Unavailable", err.Error(), ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	guest, err := resolveGuest(input.Guest)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if input.AgentID != nil {
		var agent models.User
		if err := storage.DB.Where("id = ? AND role = ?", *input.AgentID, models.RoleAgent).First(&agent).Error; err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown agent", ctx)
			return
		}
	}

	reservation := models.Reservation{
		UnitID:                   unit.ID,
		GuestID:                  guest.ID,
		CheckIn:                  services.DateOnly(input.CheckIn),
		CheckOut:                 services.DateOnly(input.CheckOut),
		Adults:                   input.Adults,
		Children:                 input.Children,
		HasCar:                   input.HasCar,
		HasPet:                   input.HasPet,
		HasAccessibilityDiscount: input.HasAccessibilityDiscount,
		TotalPrice:               quote.TotalPrice,
		RequiredDeposit:          quote.RequiredDeposit,
		Balance:                  quote.Balance,
		Status:                   models.ReservationPending,
		PaymentStatus:            models.PaymentUnpaid,
		AgentID:                  input.AgentID,
		Note:                     input.Note,
	}

	if err := storage.DB.Create(&reservation).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	guestLabel := fmt.Sprintf("%s %s (%s)", guest.FirstName, guest.LastName, utils.DisplayPhoneNumber(guest.PhoneNumber))
	go services.NewNotificationService().SendReservationRequestNotice(
		reservation.ID, unit.ID, unit.Name, guestLabel)

	checkoutURL := ""
	if Gateway != nil {
		sessionID, url, gwErr := Gateway.CreateCheckoutSession(ctx.Request().Context(), &reservation, guest)
		if gwErr != nil {
			// Reservation stays pending; the guest can retry payment later.
			log.Printf("checkout session for reservation %d failed: %v", reservation.ID, gwErr)
			ctx.StatusCode(iris.StatusCreated)
			ctx.JSON(iris.Map{
				"data":         reservation,
				"payment":      nil,
				"gatewayError": true,
				"message":      "Payment session could not be created. Please try again.",
			})
			return
		}
		reservation.GatewaySessionID = sessionID
		storage.DB.Model(&reservation).Update("gateway_session_id", sessionID)
		checkoutURL = url
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"data": reservation,
		"payment": iris.Map{
			"sessionID":   reservation.GatewaySessionID,
			"checkoutURL": checkoutURL,
			"amountDue":   reservation.RequiredDeposit,
		},
	})
}

// PollPaymentStatus asks the gateway whether the reservation's checkout session
// was paid and, if so, runs the confirmation reconciler. Polling and webhook
// delivery race freely; the reconciler is idempotent.
func PollPaymentStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid reservation ID", ctx)
		return
	}

	var reservation models.Reservation
	if err := storage.DB.First(&reservation, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}

	if reservation.Status == models.ReservationPending && reservation.GatewaySessionID != "" && Gateway != nil {
		paid, gwErr := Gateway.GetSessionStatus(ctx.Request().Context(), reservation.GatewaySessionID)
		if gwErr != nil {
			utils.CreateError(iris.StatusBadGateway, "Gateway Error", "Payment provider unreachable. Please try again.", ctx)
			return
		}
		if paid {
			updated, confirmErr := services.ConfirmReservation(reservation.ID, services.SourcePoll)
			if confirmErr != nil && !errors.Is(confirmErr, services.ErrAvailabilityConflict) && !errors.Is(confirmErr, services.ErrParkingConflict) {
				utils.CreateInternalServerError(ctx)
				return
			}
			if updated != nil {
				reservation = *updated
			}
		}
	}

	ctx.JSON(iris.Map{
		"status":        reservation.Status,
		"paymentStatus": reservation.PaymentStatus,
	})
}

// GetUserReservations lists the authenticated user's reservations.
func GetUserReservations(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var reservations []models.Reservation
	res := storage.DB.Preload("Unit").Where("guest_id = ?", userID).Order("created_at DESC").Find(&reservations)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(reservations)
}

// CancelReservation lets a guest cancel their own pending reservation.
func CancelReservation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	reservationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid reservation ID", ctx)
		return
	}

	var reservation models.Reservation
	if err := storage.DB.Where("id = ? AND guest_id = ?", reservationID, userID).First(&reservation).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}

	if reservation.Status != models.ReservationPending {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only pending reservations can be cancelled", ctx)
		return
	}

	res := storage.DB.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", reservation.ID, models.ReservationPending).
		Update("status", models.ReservationCancelled)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		// Confirmed (or cancelled) since we loaded it.
		utils.CreateError(iris.StatusConflict, "Conflict", "Reservation state changed, refresh and retry", ctx)
		return
	}

	storage.DB.First(&reservation, reservation.ID)
	ctx.JSON(iris.Map{"message": "Reservation cancelled", "data": reservation})
}
