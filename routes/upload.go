package routes

import (
	"errors"
	"fmt"

	"transient-booking-server/storage"
	"transient-booking-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

type claimProofInput struct {
	Data string `json:"data" validate:"required"` // base64 data URL or raw base64
}

// UploadClaimProof hosts a referral-proof photo for the authenticated agent
// and returns the URL to submit with a claim.
func UploadClaimProof(ctx iris.Context) {
	agentID := ctx.Values().Get("userID").(uint)

	var input claimProofInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	publicID := fmt.Sprintf("claim-proofs/agent-%d-%s", agentID, uuid.NewString())
	url, err := storage.UploadBase64Image(input.Data, publicID)
	if err != nil {
		if errors.Is(err, storage.ErrUploadNotConfigured) {
			utils.CreateError(iris.StatusServiceUnavailable, "Uploads Unavailable",
				"proof uploads are not configured on this server", ctx)
			return
		}
		utils.CreateError(iris.StatusBadGateway, "Upload Failed",
			"the image could not be uploaded, try again", ctx)
		return
	}

	ctx.JSON(iris.Map{"url": url})
}
