package routes

import (
	"encoding/json"

	"transient-booking-server/models"
	"transient-booking-server/storage"
	"transient-booking-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

type PushTokenInput struct {
	Token string `json:"token" validate:"required"`
}

// RegisterPushToken stores an Expo push token on the authenticated user.
func RegisterPushToken(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input PushTokenInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var tokens []string
	if user.PushTokens != nil {
		json.Unmarshal(user.PushTokens, &tokens)
	}
	for _, existing := range tokens {
		if existing == input.Token {
			ctx.JSON(iris.Map{"registered": true})
			return
		}
	}
	tokens = append(tokens, input.Token)

	raw, _ := json.Marshal(tokens)
	enabled := true
	user.PushTokens = datatypes.JSON(raw)
	user.AllowsNotifications = &enabled
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"registered": true})
}

// UnregisterPushToken removes a push token, e.g. on logout from a device.
func UnregisterPushToken(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input PushTokenInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var tokens []string
	if user.PushTokens != nil {
		json.Unmarshal(user.PushTokens, &tokens)
	}
	kept := tokens[:0]
	for _, existing := range tokens {
		if existing != input.Token {
			kept = append(kept, existing)
		}
	}

	raw, _ := json.Marshal(kept)
	user.PushTokens = datatypes.JSON(raw)
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"registered": false})
}

// GetNotificationSettings returns the user's opt-in state.
func GetNotificationSettings(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	allows := user.AllowsNotifications != nil && *user.AllowsNotifications
	ctx.JSON(iris.Map{
		"allowsNotifications": allows,
		"hasTokens":           user.PushTokens != nil,
	})
}

type NotificationSettingsInput struct {
	AllowsNotifications bool `json:"allowsNotifications"`
}

// UpdateNotificationSettings toggles the push opt-in.
func UpdateNotificationSettings(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input NotificationSettingsInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	user.AllowsNotifications = &input.AllowsNotifications
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"allowsNotifications": input.AllowsNotifications})
}

// MarkNotificationRead flags a single in-app notification as read.
func MarkNotificationRead(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	notificationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	res := storage.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"read": true})
}
