package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/config"
	"github.com/voyagehub/travel-backend/internal/metrics"
	"github.com/voyagehub/travel-backend/internal/models"
)

// PaymentGateway is the external checkout provider
type PaymentGateway interface {
	Name() string
	Initialize(ctx context.Context, req GatewayInitRequest) (*GatewayInitResult, error)
	Verify(ctx context.Context, reference string) (*models.GatewayResult, error)
	Refund(ctx context.Context, reference string, amount float64, reason string) (*GatewayRefundResult, error)
	// VerifySignature checks the signature header of a webhook body
	VerifySignature(body []byte, signature string) bool
	// ParseWebhook extracts the transaction reference a webhook is about
	ParseWebhook(body []byte) (string, error)
}

// GatewayInitRequest contains everything needed to open a checkout
type GatewayInitRequest struct {
	Reference string
	Email     string
	Amount    float64
	Currency  string
	Method    models.PaymentMethod
	Metadata  map[string]string
}

// GatewayInitResult is returned by a successful checkout initialization
type GatewayInitResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// GatewayRefundResult is returned by a successful refund request
type GatewayRefundResult struct {
	Status string
	Amount float64
}

// paystackEnvelope is the response shape of every Paystack endpoint
type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"` // minor units
	Currency    string            `json:"currency"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Channels    []string          `json:"channels,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type paystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Status          string     `json:"status"` // success, failed, abandoned, ongoing, pending, reversed
	Reference       string     `json:"reference"`
	Amount          int64      `json:"amount"`
	Currency        string     `json:"currency"`
	GatewayResponse string     `json:"gateway_response"`
	PaidAt          *time.Time `json:"paid_at"`
}

type paystackRefundRequest struct {
	Transaction  string `json:"transaction"`
	Amount       int64  `json:"amount,omitempty"`
	MerchantNote string `json:"merchant_note,omitempty"`
}

type paystackRefundData struct {
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

type paystackWebhook struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

var paystackChannels = map[models.PaymentMethod][]string{
	models.PaymentMethodCreditCard:   {"card"},
	models.PaymentMethodDebitCard:    {"card"},
	models.PaymentMethodMobileMoney:  {"mobile_money"},
	models.PaymentMethodBankTransfer: {"bank_transfer", "bank"},
}

// PaystackGateway talks to the Paystack transaction API
type PaystackGateway struct {
	config  config.PaymentConfig
	logger  *logrus.Logger
	client  *http.Client
	metrics *metrics.Metrics
}

// NewPaystackGateway creates a gateway client bounded by cfg.RequestTimeout
func NewPaystackGateway(cfg config.PaymentConfig, logger *logrus.Logger, m *metrics.Metrics) *PaystackGateway {
	return &PaystackGateway{
		config:  cfg,
		logger:  logger,
		metrics: m,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

func (g *PaystackGateway) Name() string { return "paystack" }

// Initialize opens a checkout and returns the URL the customer is redirected to
func (g *PaystackGateway) Initialize(ctx context.Context, req GatewayInitRequest) (*GatewayInitResult, error) {
	body := paystackInitializeRequest{
		Email:       req.Email,
		Amount:      models.ToMinorUnits(req.Amount),
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: g.config.CallbackURL,
		Channels:    paystackChannels[req.Method],
		Metadata:    req.Metadata,
	}

	g.logger.WithFields(logrus.Fields{
		"reference": req.Reference,
		"amount":    req.Amount,
		"currency":  req.Currency,
		"method":    req.Method,
	}).Info("Initializing gateway transaction")

	var data paystackInitializeData
	if err := g.call(ctx, "initialize", http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, err
	}
	if data.AuthorizationURL == "" {
		return nil, fmt.Errorf("payment initialization failed: no authorization url returned")
	}

	return &GatewayInitResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// Verify asks the gateway for the final state of a transaction
func (g *PaystackGateway) Verify(ctx context.Context, reference string) (*models.GatewayResult, error) {
	var data paystackVerifyData
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := g.call(ctx, "verify", http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	g.logger.WithFields(logrus.Fields{
		"reference":      reference,
		"gateway_status": data.Status,
		"amount":         data.Amount,
	}).Info("Gateway transaction verified")

	return &models.GatewayResult{
		Reference:     reference,
		Outcome:       paystackOutcome(data.Status),
		GatewayStatus: data.Status,
		Amount:        models.FromMinorUnits(data.Amount),
		Currency:      data.Currency,
		Message:       data.GatewayResponse,
		PaidAt:        data.PaidAt,
	}, nil
}

// Refund requests a full or partial refund of a settled transaction
func (g *PaystackGateway) Refund(ctx context.Context, reference string, amount float64, reason string) (*GatewayRefundResult, error) {
	body := paystackRefundRequest{
		Transaction:  reference,
		Amount:       models.ToMinorUnits(amount),
		MerchantNote: reason,
	}

	var data paystackRefundData
	if err := g.call(ctx, "refund", http.MethodPost, "/refund", body, &data); err != nil {
		return nil, err
	}

	g.logger.WithFields(logrus.Fields{
		"reference":     reference,
		"refund_status": data.Status,
	}).Info("Gateway refund accepted")

	return &GatewayRefundResult{Status: data.Status, Amount: models.FromMinorUnits(data.Amount)}, nil
}

// VerifySignature validates the x-paystack-signature header, an HMAC-SHA512
// of the raw body keyed with the secret key
func (g *PaystackGateway) VerifySignature(body []byte, signature string) bool {
	if signature == "" || g.config.SecretKey == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(g.config.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (g *PaystackGateway) ParseWebhook(body []byte) (string, error) {
	var payload paystackWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("invalid webhook payload: %w", err)
	}
	if payload.Data.Reference == "" {
		return "", fmt.Errorf("webhook missing transaction reference")
	}
	return payload.Data.Reference, nil
}

// call performs one authenticated request and decodes the data member
func (g *PaystackGateway) call(ctx context.Context, op, method, path string, in, out interface{}) (err error) {
	start := time.Now()
	defer func() { g.metrics.ObserveGateway(op, err, time.Since(start)) }()

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(g.config.BaseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.config.SecretKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("operation", op).Error("Failed to call payment gateway")
		return fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"operation":   op,
		"status_code": resp.StatusCode,
	}).Debug("Payment gateway response received")

	var envelope paystackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("payment gateway returned status %d with unreadable body: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !envelope.Status {
		return fmt.Errorf("payment gateway %s failed with status %d: %s", op, resp.StatusCode, envelope.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to parse %s response: %w", op, err)
		}
	}
	return nil
}

func paystackOutcome(status string) models.GatewayOutcome {
	switch strings.ToLower(status) {
	case "success":
		return models.GatewayOutcomeSuccess
	case "failed", "abandoned", "reversed":
		return models.GatewayOutcomeFailed
	default:
		return models.GatewayOutcomePending
	}
}

// PaymentReferencePrefix starts every transaction reference this service issues
const PaymentReferencePrefix = "TRV"

// SandboxGateway is used outside production when no secret key is configured.
// References it issued verify as successful, anything else as failed.
// Customer emails tagged "+fail" decline at verification and "+gatewaydown"
// fails initialization, so every branch can be exercised locally.
type SandboxGateway struct {
	config  config.PaymentConfig
	logger  *logrus.Logger
	mu      sync.Mutex
	amounts map[string]float64
	failing map[string]bool
	now     func() time.Time
}

// NewSandboxGateway creates the development gateway
func NewSandboxGateway(cfg config.PaymentConfig, logger *logrus.Logger) *SandboxGateway {
	return &SandboxGateway{
		config:  cfg,
		logger:  logger,
		amounts: map[string]float64{},
		failing: map[string]bool{},
		now:     time.Now,
	}
}

func (g *SandboxGateway) Name() string { return "sandbox" }

func (g *SandboxGateway) Initialize(_ context.Context, req GatewayInitRequest) (*GatewayInitResult, error) {
	email := strings.ToLower(req.Email)
	if strings.Contains(email, "+gatewaydown") {
		return nil, fmt.Errorf("sandbox gateway unavailable")
	}
	g.mu.Lock()
	g.amounts[req.Reference] = req.Amount
	g.failing[req.Reference] = strings.Contains(email, "+fail")
	g.mu.Unlock()

	g.logger.WithField("reference", req.Reference).Info("Sandbox checkout opened")

	return &GatewayInitResult{
		AuthorizationURL: g.config.CallbackURL + "?reference=" + url.QueryEscape(req.Reference),
		AccessCode:       "sandbox_" + strings.ToLower(req.Reference),
		Reference:        req.Reference,
	}, nil
}

func (g *SandboxGateway) Verify(_ context.Context, reference string) (*models.GatewayResult, error) {
	if !strings.HasPrefix(reference, PaymentReferencePrefix+"-") {
		return &models.GatewayResult{Reference: reference, Outcome: models.GatewayOutcomeFailed, GatewayStatus: "failed", Message: "unknown reference"}, nil
	}
	g.mu.Lock()
	amount, known := g.amounts[reference]
	failing := g.failing[reference]
	g.mu.Unlock()
	if !known || failing {
		return &models.GatewayResult{Reference: reference, Outcome: models.GatewayOutcomeFailed, GatewayStatus: "failed", Currency: g.config.Currency, Message: "Declined"}, nil
	}
	paidAt := g.now()
	return &models.GatewayResult{
		Reference:     reference,
		Outcome:       models.GatewayOutcomeSuccess,
		GatewayStatus: "success",
		Amount:        amount,
		Currency:      g.config.Currency,
		Message:       "Approved",
		PaidAt:        &paidAt,
	}, nil
}

func (g *SandboxGateway) Refund(_ context.Context, reference string, amount float64, _ string) (*GatewayRefundResult, error) {
	g.mu.Lock()
	_, ok := g.amounts[reference]
	g.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("sandbox gateway has no transaction %s", reference)
	}
	return &GatewayRefundResult{Status: "processed", Amount: amount}, nil
}

// VerifySignature accepts any non-empty signature in the sandbox
func (g *SandboxGateway) VerifySignature(_ []byte, signature string) bool {
	return signature != ""
}

func (g *SandboxGateway) ParseWebhook(body []byte) (string, error) {
	var payload paystackWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("invalid webhook payload: %w", err)
	}
	if payload.Data.Reference == "" {
		return "", fmt.Errorf("webhook missing transaction reference")
	}
	return payload.Data.Reference, nil
}
