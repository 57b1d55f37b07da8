package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"

	"github.com/tidwall/gjson"
)

const (
	requestTimeout = 30 * time.Second
	// refresh the access token this long before PayPal expires it
	tokenSkew = time.Minute
)

// Client talks to the PayPal REST API (orders v2 and webhook verification)
type Client struct {
	baseURL   string
	clientID  string
	secret    string
	webhookID string
	returnURL string
	cancelURL string
	brandName string
	http      *http.Client
	logger    logger.Logger
	now       func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg *models.Config, log logger.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(cfg.PayPalBaseURL, "/"),
		clientID:  cfg.PayPalClientID,
		secret:    cfg.PayPalClientSecret,
		webhookID: cfg.PayPalWebhookID,
		returnURL: cfg.PayPalReturnURL,
		cancelURL: cfg.PayPalCancelURL,
		brandName: cfg.AppName,
		http:      &http.Client{Timeout: requestTimeout},
		logger:    log,
		now:       time.Now,
	}
}

// apiError is a non-2xx PayPal answer
type apiError struct {
	Status int
	Name   string
	Issue  string
	Body   string
}

func (e *apiError) Error() string {
	if e.Issue != "" {
		return fmt.Sprintf("paypal: %d %s (%s)", e.Status, e.Name, e.Issue)
	}
	return fmt.Sprintf("paypal: %d %s", e.Status, e.Name)
}

func parseAPIError(status int, body []byte) *apiError {
	doc := gjson.ParseBytes(body)
	name := doc.Get("name").String()
	if name == "" {
		name = doc.Get("error").String()
	}
	return &apiError{
		Status: status,
		Name:   name,
		Issue:  doc.Get("details.0.issue").String(),
		Body:   string(body),
	}
}

// accessToken returns the cached OAuth token, fetching a new one when it is about to expire
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp.StatusCode, body)
	}

	doc := gjson.ParseBytes(body)
	c.token = doc.Get("access_token").String()
	if c.token == "" {
		return "", fmt.Errorf("paypal token response carries no access_token")
	}
	c.tokenExpiry = c.now().Add(time.Duration(doc.Get("expires_in").Int())*time.Second - tokenSkew)
	c.logger.Debugf("PayPal access token refreshed, valid until %s", c.tokenExpiry.Format(time.RFC3339))
	return c.token, nil
}

// do sends an authenticated JSON request. requestID, when set, makes PayPal
// deduplicate retries of the same operation.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, requestID string) (gjson.Result, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return gjson.Result{}, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return gjson.Result{}, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set("PayPal-Request-Id", requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("paypal %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, parseAPIError(resp.StatusCode, raw)
	}
	return gjson.ParseBytes(raw), nil
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount      amount `json:"amount"`
	Description string `json:"description,omitempty"`
}

type applicationContext struct {
	BrandName          string `json:"brand_name,omitempty"`
	ReturnURL          string `json:"return_url,omitempty"`
	CancelURL          string `json:"cancel_url,omitempty"`
	ShippingPreference string `json:"shipping_preference"`
	UserAction         string `json:"user_action"`
}

type createOrderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

// CreateOrder opens a CAPTURE checkout and returns the buyer approval link
func (c *Client) CreateOrder(ctx context.Context, value models.Money, currency, description, requestID string) (*models.PaymentOrder, error) {
	doc, err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Amount:      amount{CurrencyCode: currency, Value: value.StringFixed(2)},
			Description: description,
		}},
		ApplicationContext: applicationContext{
			BrandName:          c.brandName,
			ReturnURL:          c.returnURL,
			CancelURL:          c.cancelURL,
			ShippingPreference: "NO_SHIPPING",
			UserAction:         "PAY_NOW",
		},
	}, requestID)
	if err != nil {
		return nil, err
	}

	order := &models.PaymentOrder{
		OrderID:     doc.Get("id").String(),
		Status:      doc.Get("status").String(),
		ApprovalURL: doc.Get(`links.#(rel=="approve").href`).String(),
	}
	if order.ApprovalURL == "" {
		order.ApprovalURL = doc.Get(`links.#(rel=="payer-action").href`).String()
	}
	if order.OrderID == "" {
		return nil, fmt.Errorf("paypal order response carries no id")
	}
	return order, nil
}

// CaptureOrder captures an approved order. An order captured earlier is read back instead.
func (c *Client) CaptureOrder(ctx context.Context, orderID, requestID string) (*models.PaymentCapture, error) {
	path := "/v2/checkout/orders/" + url.PathEscape(orderID)
	doc, err := c.do(ctx, http.MethodPost, path+"/capture", struct{}{}, requestID)
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Issue == "ORDER_ALREADY_CAPTURED" {
		c.logger.Infof("PayPal order %s was already captured, reading it back", orderID)
		doc, err = c.do(ctx, http.MethodGet, path, nil, "")
	}
	if err != nil {
		return nil, err
	}
	return parseCapture(orderID, doc)
}

func parseCapture(orderID string, doc gjson.Result) (*models.PaymentCapture, error) {
	capture := doc.Get("purchase_units.0.payments.captures.0")
	if !capture.Exists() {
		return &models.PaymentCapture{OrderID: orderID, Status: doc.Get("status").String()}, nil
	}
	value, err := models.NewMoney(capture.Get("amount.value").String())
	if err != nil {
		return nil, err
	}
	return &models.PaymentCapture{
		OrderID:   orderID,
		CaptureID: capture.Get("id").String(),
		Status:    capture.Get("status").String(),
		Amount:    value,
		Currency:  capture.Get("amount.currency_code").String(),
	}, nil
}

type verifyRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

// VerifyWebhook asks PayPal to check the transmission signature and then extracts the event
func (c *Client) VerifyWebhook(ctx context.Context, headers http.Header, body []byte) (*models.WebhookEvent, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not JSON", models.ErrInvalidSignature)
	}
	transmissionID := headers.Get("Paypal-Transmission-Id")
	if transmissionID == "" || headers.Get("Paypal-Transmission-Sig") == "" {
		return nil, fmt.Errorf("%w: missing transmission headers", models.ErrInvalidSignature)
	}

	doc, err := c.do(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", verifyRequest{
		AuthAlgo:         headers.Get("Paypal-Auth-Algo"),
		CertURL:          headers.Get("Paypal-Cert-Url"),
		TransmissionID:   transmissionID,
		TransmissionSig:  headers.Get("Paypal-Transmission-Sig"),
		TransmissionTime: headers.Get("Paypal-Transmission-Time"),
		WebhookID:        c.webhookID,
		WebhookEvent:     json.RawMessage(body),
	}, "")
	if err != nil {
		return nil, err
	}
	if status := doc.Get("verification_status").String(); status != "SUCCESS" {
		c.logger.Warnf("PayPal webhook %s failed verification: %s", transmissionID, status)
		return nil, models.ErrInvalidSignature
	}

	return ParseWebhookEvent(body), nil
}

// ParseWebhookEvent extracts the fields the donation flow needs from a webhook body
func ParseWebhookEvent(body []byte) *models.WebhookEvent {
	doc := gjson.ParseBytes(body)
	event := &models.WebhookEvent{
		ID:        doc.Get("id").String(),
		EventType: doc.Get("event_type").String(),
		OrderID:   doc.Get("resource.supplementary_data.related_ids.order_id").String(),
		CaptureID: doc.Get("resource.id").String(),
	}
	if event.EventType == models.WebhookCaptureRefunded {
		// the resource of a refund is the refund itself
		if up := doc.Get(`resource.links.#(rel=="up").href`).String(); up != "" {
			event.CaptureID = up[strings.LastIndex(up, "/")+1:]
		}
	}
	return event
}
