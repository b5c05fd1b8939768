package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"transient-booking-server/models"

	"github.com/google/uuid"
)

// PaymentGateway is the narrow interface the engine consumes. Communication
// failures are wrapped in ErrGateway; the reservation stays pending so the
// caller can retry.
type PaymentGateway interface {
	// CreateCheckoutSession opens a hosted checkout for the reservation's
	// deposit and returns the session id and the URL the guest pays at.
	CreateCheckoutSession(ctx context.Context, reservation *models.Reservation, guest *models.User) (sessionID string, checkoutURL string, err error)
	// GetSessionStatus reports whether the session has been paid.
	GetSessionStatus(ctx context.Context, sessionID string) (paid bool, err error)
}

// PayMongoClient talks to the PayMongo checkout API. Configured via
// PAYMONGO_SECRET_KEY; the webhook signing secret is separate
// (PAYMONGO_WEBHOOK_SECRET, see VerifyWebhookSignature).
type PayMongoClient struct {
	httpClient *http.Client
	secretKey  string
	baseURL    string
}

func NewPayMongoClient() *PayMongoClient {
	baseURL := os.Getenv("PAYMONGO_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.paymongo.com/v1"
	}
	return &PayMongoClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		secretKey:  os.Getenv("PAYMONGO_SECRET_KEY"),
		baseURL:    baseURL,
	}
}

func (c *PayMongoClient) CreateCheckoutSession(ctx context.Context, reservation *models.Reservation, guest *models.User) (string, string, error) {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"attributes": map[string]interface{}{
				"line_items": []map[string]interface{}{
					{
						"name":     fmt.Sprintf("Reservation #%d downpayment", reservation.ID),
						"amount":   reservation.RequiredDeposit,
						"currency": "PHP",
						"quantity": 1,
					},
				},
				"payment_method_types": []string{"gcash", "card", "paymaya"},
				"reference_number":     uuid.NewString(),
				"description":          fmt.Sprintf("Downpayment for reservation #%d", reservation.ID),
				"billing": map[string]interface{}{
					"name":  strings.TrimSpace(guest.FirstName + " " + guest.LastName),
					"email": guest.Email,
					"phone": guest.PhoneNumber,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout_sessions", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: creating checkout session: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("%w: checkout session returned status %d", ErrGateway, resp.StatusCode)
	}

	var out struct {
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				CheckoutURL string `json:"checkout_url"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("%w: decoding checkout session response: %v", ErrGateway, err)
	}
	if out.Data.ID == "" {
		return "", "", fmt.Errorf("%w: checkout session response missing id", ErrGateway)
	}

	return out.Data.ID, out.Data.Attributes.CheckoutURL, nil
}

func (c *PayMongoClient) GetSessionStatus(ctx context.Context, sessionID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/checkout_sessions/"+sessionID, nil)
	if err != nil {
		return false, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: fetching session status: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: session status returned status %d", ErrGateway, resp.StatusCode)
	}

	var out struct {
		Data struct {
			Attributes struct {
				PaymentIntent struct {
					Attributes struct {
						Status string `json:"status"`
					} `json:"attributes"`
				} `json:"payment_intent"`
				Payments []struct {
					Attributes struct {
						Status string `json:"status"`
					} `json:"attributes"`
				} `json:"payments"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("%w: decoding session status response: %v", ErrGateway, err)
	}

	if out.Data.Attributes.PaymentIntent.Attributes.Status == "succeeded" {
		return true, nil
	}
	for _, p := range out.Data.Attributes.Payments {
		if p.Attributes.Status == "paid" {
			return true, nil
		}
	}
	return false, nil
}

func (c *PayMongoClient) authorize(req *http.Request) {
	token := base64.StdEncoding.EncodeToString([]byte(c.secretKey + ":"))
	req.Header.Set("Authorization", "Basic "+token)
}

// VerifyWebhookSignature checks the gateway's signature header against the raw
// request body. Header format: "t=<unix>,v1=<hex hmac-sha256 of '<unix>.<body>'>".
func VerifyWebhookSignature(rawBody []byte, header, secret string) bool {
	var timestamp, signature string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signature = kv[1]
		}
	}
	if timestamp == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
