package models

import "io"

// PayPal webhook event types handled by the donation flow
const (
	WebhookCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	WebhookCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
	WebhookCaptureRefunded  = "PAYMENT.CAPTURE.REFUNDED"
)

// PaymentOrder is a checkout created at the payment provider
type PaymentOrder struct {
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	ApprovalURL string `json:"approvalUrl"`
}

// PaymentCapture is the result of capturing an approved order
type PaymentCapture struct {
	OrderID   string `json:"orderId"`
	CaptureID string `json:"captureId"`
	Status    string `json:"status"`
	Amount    Money  `json:"amount"`
	Currency  string `json:"currency"`
}

// Completed reports whether the provider settled the funds
func (c *PaymentCapture) Completed() bool {
	return c.Status == "COMPLETED"
}

// WebhookEvent is the subset of a PayPal webhook the donation flow needs
type WebhookEvent struct {
	ID        string
	EventType string
	CaptureID string
	OrderID   string
}

// ImageFile is an uploaded image before validation
type ImageFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}
