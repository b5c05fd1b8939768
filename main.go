package main

import (
	"log"
	"os"

	"transient-booking-server/routes"
	"transient-booking-server/services"
	"transient-booking-server/storage"
	"transient-booking-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	storage.InitializeDB()
	storage.InitializeRedis()

	routes.Gateway = services.NewPayMongoClient()

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}

		return tokenInput.RefreshToken
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		user.Get("/notifications", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUserNotifications)
		user.Post("/notifications/{id:uint}/read", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.MarkNotificationRead)
		user.Get("/notification-settings", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetNotificationSettings)
		user.Patch("/notification-settings", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateNotificationSettings)
		user.Post("/push-token", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.RegisterPushToken)
		user.Delete("/push-token", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UnregisterPushToken)
		user.Get("/reservations", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUserReservations)
	}

	units := app.Party("/api/units")
	{
		units.Get("/", routes.GetUnits)
		units.Get("/{id:uint}", routes.GetUnit)
		units.Get("/{id:uint}/availability", routes.GetUnitAvailability)
	}

	reservations := app.Party("/api/reservations")
	{
		// Public: walk-in guests book without an account; identity is
		// match-or-created from the contact block.
		reservations.Post("/", routes.CreateReservation)
		reservations.Post("/quote", routes.QuoteReservation)
		reservations.Get("/{id:uint}/payment", routes.PollPaymentStatus)
		reservations.Post("/{id:uint}/cancel", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CancelReservation)
	}

	payments := app.Party("/api/payments")
	{
		payments.Post("/webhook", routes.PaymentWebhook)
	}

	agent := app.Party("/api/agent", accessTokenVerifierMiddleware, utils.AgentOnlyMiddleware)
	{
		agent.Post("/claims", routes.SubmitClaim)
		agent.Get("/claims", routes.GetAgentClaims)
		agent.Post("/claims/proof", routes.UploadClaimProof)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.StaffOnlyMiddleware)
	{
		admin.Get("/reservations", routes.AdminListReservations)
		admin.Get("/reservations/{id:uint}", routes.AdminGetReservation)
		admin.Post("/reservations/{id:uint}/approve", routes.AdminApproveReservation)
		admin.Post("/reservations/{id:uint}/cancel", routes.AdminCancelReservation)

		admin.Get("/claims", routes.AdminListClaims)
		admin.Post("/claims/{id:uint}/approve", routes.AdminApproveClaim)
		admin.Post("/claims/{id:uint}/reject", routes.AdminRejectClaim)

		admin.Post("/units", routes.AdminCreateUnit)
		admin.Patch("/units/{id:uint}", routes.AdminUpdateUnit)

		admin.Get("/stats", routes.AdminStats)
		admin.Get("/activity", routes.AdminActivity)

		admin.Get("/users", routes.AdminListUsers)
		admin.Patch("/users/{id:uint}/role", utils.AdminOnlyMiddleware, routes.AdminUpdateUserRole)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("listening on :%s", port)
	app.Listen(":" + port)
}
