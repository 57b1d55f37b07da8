package repository

import (
	"context"
	"sort"
	"time"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

// NotificationRepository implements NotificationRepositoryInterface
type NotificationRepository struct {
	base
}

func NewNotificationRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *NotificationRepository {
	return &NotificationRepository{base{db: db, config: cfg, logger: log}}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	id, err := r.nextID(ctx, TableNotifications)
	if err != nil {
		return nil, err
	}
	n.ID = id
	if err := r.db.PutItem(ctx, r.table(TableNotifications), n); err != nil {
		r.logger.Errorf("Failed to create notification for user %d: %v", n.UsuarioID, err)
		return nil, err
	}
	return n, nil
}

// CreateNotifications stores a batch in transactions of at most dal.MaxTransactItems rows
func (r *NotificationRepository) CreateNotifications(ctx context.Context, ns []*models.Notification) ([]*models.Notification, error) {
	ops := make([]dal.TransactOp, 0, len(ns))
	for _, n := range ns {
		id, err := r.nextID(ctx, TableNotifications)
		if err != nil {
			return nil, err
		}
		n.ID = id
		ops = append(ops, dal.PutOp(r.table(TableNotifications), n, nil))
	}
	if err := r.writeChunks(ctx, ops); err != nil {
		r.logger.Errorf("Failed to create %d notifications: %v", len(ns), err)
		return nil, err
	}
	return ns, nil
}

func (r *NotificationRepository) GetNotificationsByUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	var ns []*models.Notification
	err := r.db.QueryByIndex(ctx, models.NumberIndex(r.table(TableNotifications), "usuarioId-index", "usuarioId", userID), &ns)
	if err != nil {
		return nil, err
	}
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].FechaCreacion.Equal(ns[j].FechaCreacion) {
			return ns[i].ID > ns[j].ID
		}
		return ns[i].FechaCreacion.After(ns[j].FechaCreacion)
	})
	return ns, nil
}

// MarkAsRead marks one of the user's notifications read. Marking it twice keeps the first read time.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID, id int64, at time.Time) error {
	n := &models.Notification{}
	if err := r.get(ctx, TableNotifications, id, n); err != nil {
		return err
	}
	if n.UsuarioID != userID {
		return models.ErrNotAuthorized
	}
	if n.Leida {
		return nil
	}
	return r.db.UpdateItem(ctx, r.key(TableNotifications, id), readUpdate(at),
		dal.Cond(dal.Equal("usuarioId", userID)), nil)
}

func (r *NotificationRepository) MarkManyAsRead(ctx context.Context, userID int64, ids []int64, at time.Time) error {
	ops := make([]dal.TransactOp, 0, len(ids))
	for _, id := range ids {
		ops = append(ops, dal.UpdateOp(r.key(TableNotifications, id), readUpdate(at),
			dal.Cond(dal.Equal("usuarioId", userID))))
	}
	return r.writeChunks(ctx, ops)
}

func (r *NotificationRepository) DeleteNotification(ctx context.Context, userID, id int64) error {
	n := &models.Notification{}
	if err := r.get(ctx, TableNotifications, id, n); err != nil {
		return err
	}
	if n.UsuarioID != userID {
		return models.ErrNotAuthorized
	}
	err := r.db.DeleteItem(ctx, r.key(TableNotifications, id), dal.Cond(dal.Equal("usuarioId", userID)))
	return notFoundOnCondition(err, "notification", id)
}

func (r *NotificationRepository) writeChunks(ctx context.Context, ops []dal.TransactOp) error {
	for start := 0; start < len(ops); start += dal.MaxTransactItems {
		end := start + dal.MaxTransactItems
		if end > len(ops) {
			end = len(ops)
		}
		if err := r.db.TransactWrite(ctx, ops[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func readUpdate(at time.Time) dal.Update {
	return dal.Update{Set: map[string]interface{}{
		"leida":        true,
		"fechaLectura": at,
	}}
}
