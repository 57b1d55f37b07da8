package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils/logger"
)

// Realtime event names pushed to connected clients
const (
	EventNotification   = "notification"
	EventMessage        = "message"
	EventMessageRead    = "message_read"
	EventMessageEdited  = "message_edited"
	EventMessageDeleted = "message_deleted"
)

type NotificationService struct {
	notificationRepo repository.NotificationRepositoryInterface
	realtime         RealtimePublisher
	logger           logger.Logger
	now              func() time.Time
}

func NewNotificationService(notificationRepo repository.NotificationRepositoryInterface, realtime RealtimePublisher, logger logger.Logger, now func() time.Time) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		realtime:         realtime,
		logger:           logger,
		now:              now,
	}
}

// CreateNotification stores the notification, then pushes it to the recipient if connected.
// The push is best effort and never fails the write.
func (s *NotificationService) CreateNotification(ctx context.Context, req *models.CreateNotificationRequest) (*models.Notification, error) {
	n, err := s.build(req)
	if err != nil {
		return nil, err
	}
	created, err := s.notificationRepo.CreateNotification(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	s.push(created)
	return created, nil
}

func (s *NotificationService) CreateBulkNotifications(ctx context.Context, reqs []*models.CreateNotificationRequest) ([]*models.Notification, error) {
	if len(reqs) == 0 {
		return []*models.Notification{}, nil
	}
	ns := make([]*models.Notification, 0, len(reqs))
	for i, req := range reqs {
		n, err := s.build(req)
		if err != nil {
			return nil, fmt.Errorf("notification %d: %w", i, err)
		}
		ns = append(ns, n)
	}

	created, err := s.notificationRepo.CreateNotifications(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifications: %w", err)
	}
	for _, n := range created {
		s.push(n)
	}
	s.logger.Infof("Created %d notifications", len(created))
	return created, nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID int64, filter models.NotificationFilter) (models.PagedResult[*models.Notification], error) {
	ns, err := s.notificationRepo.GetNotificationsByUser(ctx, userID)
	if err != nil {
		return models.PagedResult[*models.Notification]{}, err
	}
	if filter.UnreadOnly {
		unread := make([]*models.Notification, 0, len(ns))
		for _, n := range ns {
			if !n.Leida {
				unread = append(unread, n)
			}
		}
		ns = unread
	}
	return models.Paginate(ns, filter.Pagination), nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID int64) (*models.UnreadCount, error) {
	ns, err := s.notificationRepo.GetNotificationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	count := 0
	for _, n := range ns {
		if !n.Leida {
			count++
		}
	}
	return &models.UnreadCount{Count: count}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id int64) error {
	return s.notificationRepo.MarkAsRead(ctx, userID, id, s.now())
}

// MarkAllAsRead marks every unread notification of the user and returns how many changed
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID int64) (int, error) {
	ns, err := s.notificationRepo.GetNotificationsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	ids := make([]int64, 0, len(ns))
	for _, n := range ns {
		if !n.Leida {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.notificationRepo.MarkManyAsRead(ctx, userID, ids, s.now()); err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return len(ids), nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id int64) error {
	return s.notificationRepo.DeleteNotification(ctx, userID, id)
}

// notify is the fire-and-forget helper other services use for side effects
func (s *NotificationService) notify(ctx context.Context, userID int64, tipo models.NotificationType, titulo, mensaje, enlace string, senderID *int64) {
	_, err := s.CreateNotification(ctx, &models.CreateNotificationRequest{
		UsuarioID:   userID,
		RemitenteID: senderID,
		Tipo:        tipo,
		Titulo:      titulo,
		Mensaje:     mensaje,
		Enlace:      enlace,
	})
	if err != nil {
		s.logger.Warnf("Failed to notify user %d (%s): %v", userID, tipo, err)
	}
}

func (s *NotificationService) build(req *models.CreateNotificationRequest) (*models.Notification, error) {
	if req == nil {
		return nil, models.NewValidationError("notification is required")
	}
	var fields []models.FieldError
	if req.UsuarioID <= 0 {
		fields = append(fields, models.FieldError{Field: "usuarioId", Error: "is required"})
	}
	if !req.Tipo.IsValid() {
		fields = append(fields, models.FieldError{Field: "tipo", Error: "is not a known notification type"})
	}
	if strings.TrimSpace(req.Titulo) == "" {
		fields = append(fields, models.FieldError{Field: "titulo", Error: "is required"})
	}
	if len(fields) > 0 {
		return nil, models.NewValidationError("invalid notification", fields...)
	}
	return &models.Notification{
		UsuarioID:     req.UsuarioID,
		RemitenteID:   req.RemitenteID,
		Tipo:          req.Tipo,
		Titulo:        strings.TrimSpace(req.Titulo),
		Mensaje:       req.Mensaje,
		Enlace:        req.Enlace,
		FechaCreacion: s.now(),
	}, nil
}

func (s *NotificationService) push(n *models.Notification) {
	if s.realtime == nil {
		return
	}
	if !s.realtime.Publish(n.UsuarioID, EventNotification, n) {
		s.logger.Debugf("User %d offline, notification %d stored only", n.UsuarioID, n.ID)
	}
}
