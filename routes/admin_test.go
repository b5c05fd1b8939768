package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"transient-booking-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/stretchr/testify/require"
)

// buildAdminTestApp creates a minimal Iris app with the admin reservation
// routes behind the JWT verifier and the staff gate.
func buildAdminTestApp(t *testing.T) *iris.Application {
	t.Helper()
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.StaffOnlyMiddleware)
	{
		admin.Get("/reservations", AdminListReservations)
	}
	require.NoError(t, app.Build())
	return app
}

// signTestToken returns a signed JWT with the given role
func signTestToken(role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(utils.AccessToken{ID: 1, Role: role})
	return string(token)
}

func TestAdminReservationsRBAC(t *testing.T) {
	setupTestDB(t)
	app := buildAdminTestApp(t)

	// No token
	req := httptest.NewRequest(http.MethodGet, "/api/admin/reservations", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}

	// Guest role -> 403
	req2 := httptest.NewRequest(http.MethodGet, "/api/admin/reservations", nil)
	req2.Header.Set("Authorization", "Bearer "+signTestToken("guest"))
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for guest role, got %d", resp2.Code)
	}

	// Agent role -> 403: agents are not back-office staff
	req3 := httptest.NewRequest(http.MethodGet, "/api/admin/reservations", nil)
	req3.Header.Set("Authorization", "Bearer "+signTestToken("agent"))
	resp3 := httptest.NewRecorder()
	app.ServeHTTP(resp3, req3)
	if resp3.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for agent role, got %d", resp3.Code)
	}

	// Staff role -> 200 (empty list OK)
	req4 := httptest.NewRequest(http.MethodGet, "/api/admin/reservations", nil)
	req4.Header.Set("Authorization", "Bearer "+signTestToken("staff"))
	resp4 := httptest.NewRecorder()
	app.ServeHTTP(resp4, req4)
	if resp4.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff role, got %d", resp4.Code)
	}

	// Admin role -> 200
	req5 := httptest.NewRequest(http.MethodGet, "/api/admin/reservations", nil)
	req5.Header.Set("Authorization", "Bearer "+signTestToken("admin"))
	resp5 := httptest.NewRecorder()
	app.ServeHTTP(resp5, req5)
	if resp5.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin role, got %d", resp5.Code)
	}
}
