// Package notify delivers signed governance notifications to an external
// workflow system. Delivery failures are recovered locally and reported as
// a result, never raised to the governed operation.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Care-Signature"

// #region config

// NotifierConfig holds the delivery target and retry budget.
type NotifierConfig struct {
	URL            string
	Secret         string
	MaxAttempts    int           // total attempts, including the first
	MaxElapsed     time.Duration // overall retry budget
	RequestTimeout time.Duration
}

// DefaultNotifierConfig returns the standard retry budget.
func DefaultNotifierConfig(url, secret string) NotifierConfig {
	return NotifierConfig{
		URL:            url,
		Secret:         secret,
		MaxAttempts:    4,
		MaxElapsed:     15 * time.Second,
		RequestTimeout: 5 * time.Second,
	}
}

// #endregion config

// #region result

// DeliveryResult reports how a delivery attempt ended. Failures live here,
// not in an error return.
type DeliveryResult struct {
	Delivered  bool
	Attempts   int
	StatusCode int
	LastError  string
}

// #endregion result

// #region notifier

// Notifier posts HMAC-signed JSON payloads with bounded retry.
type Notifier struct {
	config NotifierConfig
	client *http.Client
}

// NewNotifier creates a notifier. A nil client uses a default with the
// configured request timeout.
func NewNotifier(config NotifierConfig, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: config.RequestTimeout}
	}
	return &Notifier{config: config, client: client}
}

// #endregion notifier

// #region sign

// Sign computes the hex HMAC-SHA256 of body under the shared secret.
func Sign(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

// #endregion sign

// #region deliver

// Deliver marshals payload, signs it, and posts it. Transport errors and
// 5xx responses retry with exponential backoff until the budget runs out;
// 4xx responses fail immediately (retrying a rejected payload cannot help).
func (n *Notifier) Deliver(ctx context.Context, payload any) DeliveryResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return DeliveryResult{LastError: fmt.Sprintf("marshal payload: %v", err)}
	}
	sig := Sign(body, n.config.Secret)

	var res DeliveryResult

	op := func() error {
		res.Attempts++

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.URL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SignatureHeader, sig)

		resp, err := n.client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		res.StatusCode = resp.StatusCode

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		statusErr := fmt.Errorf("webhook returned %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(statusErr)
		}
		return statusErr
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = n.config.MaxElapsed
	wrapped := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(n.config.MaxAttempts-1)), ctx)

	if err := backoff.Retry(op, wrapped); err != nil {
		res.LastError = err.Error()
		log.Printf("[NOTIFY] delivery failed after %d attempt(s): %v", res.Attempts, err)
		return res
	}

	res.Delivered = true
	return res
}

// #endregion deliver
