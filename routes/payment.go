package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"time"

	"transient-booking-server/models"
	"transient-booking-server/services"
	"transient-booking-server/storage"

	"github.com/kataras/iris/v12"
)

// Gateway is the payment provider used by the reservation routes. main wires
// the real client; tests swap in a fake.
var Gateway services.PaymentGateway

// webhookEvent is the push payload the gateway delivers on payment events.
type webhookEvent struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Type string `json:"type"`
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"attributes"`
	} `json:"data"`
}

// PaymentWebhook handles the gateway's push notification for a paid checkout
// session. Delivery can repeat and can race with client polling; both funnel
// into the idempotent reconciler, so a duplicate is harmless even when the
// dedupe cache is cold.
func PaymentWebhook(ctx iris.Context) {
	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	secret := os.Getenv("PAYMONGO_WEBHOOK_SECRET")
	signature := ctx.GetHeader("Paymongo-Signature")
	if !services.VerifyWebhookSignature(rawBody, signature, secret) {
		log.Printf("webhook rejected: bad signature")
		ctx.StatusCode(iris.StatusUnauthorized)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	eventType := event.Data.Attributes.Type
	sessionID := event.Data.Attributes.Data.ID
	if sessionID == "" {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	// Fast-path dedupe of redelivered events. Best effort only; the
	// reconciler's idempotence is the real guarantee.
	if storage.Redis != nil && event.Data.ID != "" {
		set, err := storage.Redis.SetNX(context.Background(), "webhook:"+event.Data.ID, "1", 48*time.Hour).Result()
		if err == nil && !set {
			ctx.JSON(iris.Map{"received": true, "duplicate": true})
			return
		}
	}

	if eventType != "checkout_session.payment.paid" {
		ctx.JSON(iris.Map{"received": true})
		return
	}

	var reservation models.Reservation
	found := storage.DB.Where("gateway_session_id = ?", sessionID).Limit(1).Find(&reservation)
	if found.Error != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		return
	}
	if found.RowsAffected == 0 {
		log.Printf("webhook for unknown session %s", sessionID)
		ctx.JSON(iris.Map{"received": true})
		return
	}

	_, confirmErr := services.ConfirmReservation(reservation.ID, services.SourceWebhook)
	if confirmErr != nil &&
		!errors.Is(confirmErr, services.ErrAvailabilityConflict) &&
		!errors.Is(confirmErr, services.ErrParkingConflict) &&
		!errors.Is(confirmErr, services.ErrNotPending) {
		// Store-level failure: let the gateway redeliver.
		ctx.StatusCode(iris.StatusInternalServerError)
		return
	}

	ctx.JSON(iris.Map{"received": true})
}
