package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/csae99/ayur-sub001/internal/domain"
)

// Intent is a gateway-side handle for an expected incoming payment, created
// before the payer completes payment.
type Intent struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
}

// PaymentGateway is the external payment provider interface.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*Intent, error)
}

// SignatureVerifier checks the shared-secret HMAC the gateway attaches to a
// completed payment. Scheme: hex(HMAC-SHA256(secret, intentID + "|" + paymentID)).
type SignatureVerifier struct {
	secret []byte
}

func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: []byte(secret)}
}

func (v *SignatureVerifier) Sign(intentID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(intentID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify fails closed: any mismatch, including malformed input, yields
// ErrInvalidSignature and never an ambiguous result.
func (v *SignatureVerifier) Verify(intentID, paymentID, signature string) error {
	expected := v.Sign(intentID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// HTTPGateway talks to the remote payment provider's intent-create endpoint.
type HTTPGateway struct {
	baseURL string
	keyID   string
	client  *http.Client
}

func NewHTTPGateway(baseURL, keyID string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		keyID:   keyID,
		client:  &http.Client{Timeout: timeout},
	}
}

type createIntentRequest struct {
	Amount   int64  `json:"amount"` // minor currency units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Capture  int    `json:"payment_capture"`
}

type createIntentResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*Intent, error) {
	payload := createIntentRequest{
		Amount:   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency: currency,
		Receipt:  receipt,
		Capture:  1,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("intent request serialization: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Key-Id", g.keyID)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment gateway unreachable: %w", domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment gateway status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	var out createIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("intent response decode: %w", err)
	}

	return &Intent{
		ID:       out.ID,
		Amount:   decimal.NewFromInt(out.Amount).Div(decimal.NewFromInt(100)),
		Currency: out.Currency,
		Receipt:  receipt,
	}, nil
}
