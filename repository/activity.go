package repository

import (
	"context"
	"fmt"
	"sort"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

// ActivityRepository reads volunteer activities. Writes happen inside the
// application transitions.
type ActivityRepository struct {
	base
}

func NewActivityRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *ActivityRepository {
	return &ActivityRepository{base{db: db, config: cfg, logger: log}}
}

func (r *ActivityRepository) GetActivityByID(ctx context.Context, id int64) (*models.VolunteerActivity, error) {
	activity := &models.VolunteerActivity{}
	if err := r.get(ctx, TableActivities, id, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// GetActivityByApplication follows the activity#<applicationId> guard written
// with the activity, so a read right after Accept sees it.
func (r *ActivityRepository) GetActivityByApplication(ctx context.Context, applicationID int64) (*models.VolunteerActivity, error) {
	activityID, err := r.guardRef(ctx, activityGuard(applicationID))
	if err != nil {
		return nil, err
	}
	if activityID == 0 {
		return nil, fmt.Errorf("activity for application %d: %w", applicationID, models.ErrNotFound)
	}
	return r.GetActivityByID(ctx, activityID)
}

func (r *ActivityRepository) GetActivitiesByUser(ctx context.Context, userID int64) ([]*models.VolunteerActivity, error) {
	var activities []*models.VolunteerActivity
	err := r.db.QueryByIndex(ctx, models.NumberIndex(r.table(TableActivities), "usuarioId-index", "usuarioId", userID), &activities)
	if err != nil {
		r.logger.Errorf("Failed to query activities for user %d: %v", userID, err)
		return nil, err
	}
	sort.Slice(activities, func(i, j int) bool { return activities[i].ID < activities[j].ID })
	return activities, nil
}

func (r *ActivityRepository) NextActivityID(ctx context.Context) (int64, error) {
	return r.nextID(ctx, TableActivities)
}
