package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsk_test"
	body := []byte(`{"data":{"id":"evt_1"}}`)

	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(body)
	header := fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))

	assert.True(t, VerifyWebhookSignature(body, header, secret))
	assert.False(t, VerifyWebhookSignature(body, header, "other_secret"))
	assert.False(t, VerifyWebhookSignature([]byte(`{"tampered":true}`), header, secret))
	assert.False(t, VerifyWebhookSignature(body, "", secret))
	assert.False(t, VerifyWebhookSignature(body, "t=123", secret))
	assert.False(t, VerifyWebhookSignature(body, "v1=deadbeef", secret))
}
