package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils"
	"voluntariado-backend/utils/logger"
)

const defaultCurrency = "USD"

type DonationService struct {
	financeRepo      repository.FinanceRepositoryInterface
	organizationRepo repository.OrganizationRepositoryInterface
	userRepo         repository.UserRepositoryInterface
	gateway          PaymentGateway
	notifications    *NotificationService
	logger           logger.Logger
	now              func() time.Time
}

func NewDonationService(
	financeRepo repository.FinanceRepositoryInterface,
	organizationRepo repository.OrganizationRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	gateway PaymentGateway,
	notifications *NotificationService,
	logger logger.Logger,
	now func() time.Time,
) *DonationService {
	return &DonationService{
		financeRepo:      financeRepo,
		organizationRepo: organizationRepo,
		userRepo:         userRepo,
		gateway:          gateway,
		notifications:    notifications,
		logger:           logger,
		now:              now,
	}
}

// CreateOrder opens a PayPal checkout for a verified organization and records a Pending donation
func (s *DonationService) CreateOrder(ctx context.Context, donorID int64, req *models.CreateDonationRequest) (*models.DonationOrder, error) {
	amount, err := models.NewMoney(req.Monto)
	if err != nil || !amount.IsPositive() {
		return nil, models.NewValidationError("invalid amount", models.FieldError{Field: "monto", Error: "must be a positive amount"})
	}
	amount = models.MoneyFromDecimal(amount.Round(2))
	currency := strings.ToUpper(strings.TrimSpace(req.Moneda))
	if currency == "" {
		currency = defaultCurrency
	}

	org, err := s.organizationRepo.GetOrganizationByID(ctx, req.OrganizacionID)
	if err != nil {
		return nil, err
	}
	if !org.Verificada {
		return nil, fmt.Errorf("organization %d: %w", org.ID, models.ErrOrganizationNotVerified)
	}

	donation := &models.Donation{
		OrganizacionID: org.ID,
		DonanteID:      donorID,
		DonanteNombre:  strings.TrimSpace(req.DonanteNombre),
		DonanteEmail:   strings.TrimSpace(req.DonanteEmail),
		Monto:          amount,
		Moneda:         currency,
		Mensaje:        strings.TrimSpace(req.Mensaje),
		Anonima:        req.Anonima,
		Estado:         models.DonationStatusPending,
		FechaCreacion:  s.now(),
	}
	if donorID > 0 {
		if donor, err := s.userRepo.GetUserByID(ctx, donorID); err == nil {
			if donation.DonanteNombre == "" {
				donation.DonanteNombre = fullName(donor)
			}
			if donation.DonanteEmail == "" {
				donation.DonanteEmail = donor.Email
			}
		}
	}

	order, err := s.gateway.CreateOrder(ctx, amount, currency, fmt.Sprintf("Donación a %s", org.Nombre), utils.GenerateUUID())
	if err != nil {
		s.logger.Errorf("PayPal order creation failed for organization %d: %v", org.ID, err)
		return nil, fmt.Errorf("%w: %v", models.ErrPaymentFailed, err)
	}
	donation.PaypalOrderID = order.OrderID

	created, err := s.financeRepo.CreateDonation(ctx, donation)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Donation %d created with PayPal order %s", created.ID, order.OrderID)
	return &models.DonationOrder{Donation: created, ApprovalURL: order.ApprovalURL}, nil
}

// CaptureOrder captures an approved order. Capturing an already settled order returns it unchanged.
func (s *DonationService) CaptureOrder(ctx context.Context, orderID string) (*models.Donation, error) {
	donation, err := s.financeRepo.GetDonationByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch donation.Estado {
	case models.DonationStatusCompleted:
		return donation, nil
	case models.DonationStatusFailed, models.DonationStatusRefunded:
		return nil, fmt.Errorf("donation %d is %s: %w", donation.ID, donation.Estado, models.ErrConflict)
	}

	// a stable request id lets PayPal deduplicate retried captures
	capture, err := s.gateway.CaptureOrder(ctx, orderID, "capture-"+orderID)
	if err != nil {
		s.logger.Errorf("PayPal capture failed for order %s: %v", orderID, err)
		return nil, fmt.Errorf("%w: %v", models.ErrPaymentFailed, err)
	}
	if !capture.Completed() {
		if err := s.financeRepo.FailDonation(ctx, donation); err != nil && !errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("capture of order %s is %s: %w", orderID, capture.Status, models.ErrPaymentFailed)
	}

	if err := s.settle(ctx, donation, capture.CaptureID); err != nil {
		return nil, err
	}
	return s.financeRepo.GetDonationByID(ctx, donation.ID)
}

// HandleWebhook verifies a PayPal event and applies it. Unknown orders and
// replayed events are acknowledged without changes.
func (s *DonationService) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	event, err := s.gateway.VerifyWebhook(ctx, headers, body)
	if err != nil {
		return err
	}
	if event.OrderID == "" {
		s.logger.Warnf("Webhook %s (%s) carries no order id", event.ID, event.EventType)
		return nil
	}
	donation, err := s.financeRepo.GetDonationByOrderID(ctx, event.OrderID)
	if errors.Is(err, models.ErrNotFound) {
		s.logger.Warnf("Webhook %s references unknown order %s", event.ID, event.OrderID)
		return nil
	}
	if err != nil {
		return err
	}

	switch event.EventType {
	case models.WebhookCaptureCompleted:
		err = s.settle(ctx, donation, event.CaptureID)
	case models.WebhookCaptureDenied:
		err = s.financeRepo.FailDonation(ctx, donation)
	case models.WebhookCaptureRefunded:
		err = s.financeRepo.RefundDonation(ctx, donation)
	default:
		s.logger.Debugf("Ignoring webhook event type %s", event.EventType)
		return nil
	}
	if errors.Is(err, models.ErrConflict) {
		s.logger.Infof("Webhook %s for donation %d already applied", event.ID, donation.ID)
		return nil
	}
	return err
}

func (s *DonationService) GetOrganizationDonations(ctx context.Context, orgID int64) ([]*models.Donation, error) {
	return s.financeRepo.GetDonationsByOrganization(ctx, orgID)
}

func (s *DonationService) GetMyDonations(ctx context.Context, donorID int64) ([]*models.Donation, error) {
	return s.financeRepo.GetDonationsByDonor(ctx, donorID)
}

// settle credits the donation once; a concurrent settlement is not an error
func (s *DonationService) settle(ctx context.Context, donation *models.Donation, captureID string) error {
	err := s.financeRepo.SettleDonation(ctx, donation, captureID, s.now())
	if errors.Is(err, models.ErrConflict) {
		return nil
	}
	if err != nil {
		return err
	}

	org, err := s.organizationRepo.GetOrganizationByID(ctx, donation.OrganizacionID)
	if err != nil {
		s.logger.Warnf("Failed to load organization %d for donation notice: %v", donation.OrganizacionID, err)
		return nil
	}
	donor := "Un donante anónimo"
	if !donation.Anonima && donation.DonanteNombre != "" {
		donor = donation.DonanteNombre
	}
	var sender *int64
	if donation.DonanteID > 0 && !donation.Anonima {
		sender = &donation.DonanteID
	}
	s.notifications.notify(ctx, org.UsuarioID, models.NotificationDonacionRecibida, "Donación recibida",
		fmt.Sprintf("%s donó %s %s", donor, donation.Monto.StringFixed(2), donation.Moneda),
		"/organizations/me/donations", sender)
	return nil
}
