package services

import (
	"encoding/json"
	"fmt"
	"log"

	"transient-booking-server/models"
	"transient-booking-server/storage"
	"transient-booking-server/utils"
)

// NotificationService persists in-app notification rows and pushes to the
// user's devices. Everything here is fire-and-forget relative to the engine's
// state transitions: failures are logged, never propagated.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotificationData is the push payload used for deep linking.
type NotificationData struct {
	Type          string `json:"type"`
	ID            string `json:"id"`
	ReservationID string `json:"reservationId,omitempty"`
	UnitID        string `json:"unitId,omitempty"`
	Screen        string `json:"screen"`
	Action        string `json:"action,omitempty"`
}

// getUserPushTokens retrieves all push tokens for a user.
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}

	return tokens, nil
}

// Notify records an in-app notification and pushes it to the user's devices.
func (ns *NotificationService) Notify(userID uint, title, message, link string, refID uint, refType string, data NotificationData) {
	row := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    data.Type,
		RefID:   refID,
		RefType: refType,
		Link:    link,
	}
	if err := storage.DB.Create(&row).Error; err != nil {
		log.Printf("failed to persist notification for user %d: %v", userID, err)
	}

	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("skipping push for user %d: %v", userID, err)
		return
	}

	dataMap := map[string]string{
		"type":          data.Type,
		"id":            data.ID,
		"reservationId": data.ReservationID,
		"unitId":        data.UnitID,
		"screen":        data.Screen,
		"action":        data.Action,
	}
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, message, dataMap); err != nil {
			log.Printf("failed to push to token %s: %v", token, err)
		}
	}
}

// SendConfirmationNotice tells the guest their reservation is confirmed.
func (ns *NotificationService) SendConfirmationNotice(reservationID, unitID, guestID uint) {
	title := "Reservation Confirmed"
	message := fmt.Sprintf("Your reservation #%d is confirmed. See you at check-in!", reservationID)
	ns.Notify(guestID, title, message, fmt.Sprintf("/reservations/%d", reservationID), reservationID, "reservation",
		NotificationData{
			Type:          "reservation_confirmed",
			ID:            fmt.Sprintf("%d", reservationID),
			ReservationID: fmt.Sprintf("%d", reservationID),
			UnitID:        fmt.Sprintf("%d", unitID),
			Screen:        "ReservationDetail",
			Action:        "view_reservation",
		})
}

// SendReservationLostNotice tells the guest their pending hold was cancelled
// because the dates were taken by a competing confirmation.
func (ns *NotificationService) SendReservationLostNotice(reservationID, guestID uint) {
	title := "Reservation Cancelled"
	message := fmt.Sprintf("Reservation #%d could not be confirmed: the dates are no longer available.", reservationID)
	ns.Notify(guestID, title, message, fmt.Sprintf("/reservations/%d", reservationID), reservationID, "reservation",
		NotificationData{
			Type:          "reservation_lost",
			ID:            fmt.Sprintf("%d", reservationID),
			ReservationID: fmt.Sprintf("%d", reservationID),
			Screen:        "ReservationDetail",
		})
}

// SendCommissionNotice tells the agent a commission was credited.
func (ns *NotificationService) SendCommissionNotice(commissionID, reservationID, agentID uint, amount int64) {
	title := "Commission Credited"
	message := fmt.Sprintf("You earned PHP %.2f for reservation #%d.", float64(amount)/100, reservationID)
	ns.Notify(agentID, title, message, fmt.Sprintf("/commissions/%d", commissionID), commissionID, "commission",
		NotificationData{
			Type:          "commission_created",
			ID:            fmt.Sprintf("%d", commissionID),
			ReservationID: fmt.Sprintf("%d", reservationID),
			Screen:        "Commissions",
		})
}

// SendClaimResultNotice tells the agent their claim was approved or rejected.
func (ns *NotificationService) SendClaimResultNotice(claimID, reservationID, agentID uint, approved bool) {
	title := "Claim Rejected"
	message := fmt.Sprintf("Your claim for reservation #%d was rejected.", reservationID)
	typ := "claim_rejected"
	if approved {
		title = "Claim Approved"
		message = fmt.Sprintf("Your claim for reservation #%d was approved.", reservationID)
		typ = "claim_approved"
	}
	ns.Notify(agentID, title, message, fmt.Sprintf("/claims/%d", claimID), claimID, "claim",
		NotificationData{
			Type:          typ,
			ID:            fmt.Sprintf("%d", claimID),
			ReservationID: fmt.Sprintf("%d", reservationID),
			Screen:        "Claims",
		})
}

// SendReservationRequestNotice tells staff a new reservation came in.
func (ns *NotificationService) SendReservationRequestNotice(reservationID, unitID uint, unitName, guestName string) {
	var staff []models.User
	if err := storage.DB.Where("role IN ?", []string{models.RoleStaff, models.RoleAdmin}).Find(&staff).Error; err != nil {
		log.Printf("failed to load staff for reservation notice: %v", err)
		return
	}

	title := "New Reservation Request"
	message := fmt.Sprintf("%s requested %s (reservation #%d).", guestName, unitName, reservationID)
	for _, s := range staff {
		ns.Notify(s.ID, title, message, fmt.Sprintf("/admin/reservations/%d", reservationID), reservationID, "reservation",
			NotificationData{
				Type:          "reservation_request",
				ID:            fmt.Sprintf("%d", reservationID),
				ReservationID: fmt.Sprintf("%d", reservationID),
				UnitID:        fmt.Sprintf("%d", unitID),
				Screen:        "AdminReservations",
				Action:        "review_reservation",
			})
	}
}
