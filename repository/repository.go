package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

// Base table names, prefixed at runtime with the configured environment prefix
const (
	TableUsers            = "users"
	TableOrganizations    = "organizations"
	TableOpportunities    = "opportunities"
	TableApplications     = "applications"
	TableActivities       = "activities"
	TableBadges           = "badges"
	TableUsuarioBadges    = "usuario_badges"
	TableSkills           = "skills"
	TableUsuarioSkills    = "usuario_skills"
	TableNotifications    = "notifications"
	TableConversations    = "conversations"
	TableMessages         = "messages"
	TableFinancialReports = "financial_reports"
	TableDonations        = "donations"
	TableExpenses         = "expenses"
	TableConstraints      = "constraints"
)

// constraintItem is a guard row whose key encodes a uniqueness rule
type constraintItem struct {
	PK    string `dynamodbav:"pk"`
	RefID int64  `dynamodbav:"refId"`
}

func userEmailGuard(email string) string {
	return "user_email#" + strings.ToLower(strings.TrimSpace(email))
}

func organizationUserGuard(userID int64) string {
	return fmt.Sprintf("organization_user#%d", userID)
}

func organizationEmailGuard(email string) string {
	return "organization_email#" + strings.ToLower(strings.TrimSpace(email))
}

func applicationGuard(userID, opportunityID int64) string {
	return fmt.Sprintf("application#%d#%d", userID, opportunityID)
}

func activityGuard(applicationID int64) string {
	return fmt.Sprintf("activity#%d", applicationID)
}

func reportGuard(orgID int64, year, quarter int) string {
	return fmt.Sprintf("report#%d#%d#%d", orgID, year, quarter)
}

// pairKey builds the "<userId>#<otherId>" key of usuario_badges and usuario_skills
func pairKey(userID, otherID int64) string {
	return fmt.Sprintf("%d#%d", userID, otherID)
}

// base holds what every repository needs
type base struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func (b *base) table(name string) string {
	return b.config.TableName(name)
}

func (b *base) key(table string, id int64) models.QueryConfig {
	return models.IDKey(b.table(table), id)
}

func (b *base) guardKey(pk string) models.QueryConfig {
	return models.StringKey(b.table(TableConstraints), "pk", pk)
}

func (b *base) guardPut(pk string, refID int64) dal.TransactOp {
	return dal.PutOp(b.table(TableConstraints), constraintItem{PK: pk, RefID: refID}, dal.Cond(dal.AttributeNotExists("pk")))
}

func (b *base) nextID(ctx context.Context, entity string) (int64, error) {
	id, err := b.db.NextSequence(ctx, entity)
	if err != nil {
		b.logger.Errorf("Failed to allocate %s id: %v", entity, err)
		return 0, fmt.Errorf("failed to allocate %s id: %w", entity, err)
	}
	return id, nil
}

// get loads one row by id, mapping a missing row to models.ErrNotFound
func (b *base) get(ctx context.Context, table string, id int64, out interface{}) error {
	err := b.db.GetItem(ctx, b.key(table, id), out)
	if errors.Is(err, dal.ErrItemNotFound) {
		return fmt.Errorf("%s %d: %w", table, id, models.ErrNotFound)
	}
	return err
}

// guardRef returns the id a guard row points to, or 0 when there is none
func (b *base) guardRef(ctx context.Context, pk string) (int64, error) {
	var item constraintItem
	err := b.db.GetItem(ctx, b.guardKey(pk), &item)
	if errors.Is(err, dal.ErrItemNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return item.RefID, nil
}

// notFoundOnCondition maps a failed attribute_exists condition to models.ErrNotFound
func notFoundOnCondition(err error, what string, id int64) error {
	if errors.Is(err, dal.ErrConditionFailed) {
		return fmt.Errorf("%s %d: %w", what, id, models.ErrNotFound)
	}
	return err
}

// Container implements RepositoryContainerInterface
type Container struct {
	userRepo         UserRepositoryInterface
	organizationRepo OrganizationRepositoryInterface
	opportunityRepo  OpportunityRepositoryInterface
	applicationRepo  ApplicationRepositoryInterface
	activityRepo     ActivityRepositoryInterface
	badgeRepo        BadgeRepositoryInterface
	skillRepo        SkillRepositoryInterface
	notificationRepo NotificationRepositoryInterface
	messageRepo      MessageRepositoryInterface
	financeRepo      FinanceRepositoryInterface
}

// NewContainer wires every repository onto one database client
func NewContainer(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *Container {
	return &Container{
		userRepo:         NewUserRepository(db, cfg, log),
		organizationRepo: NewOrganizationRepository(db, cfg, log),
		opportunityRepo:  NewOpportunityRepository(db, cfg, log),
		applicationRepo:  NewApplicationRepository(db, cfg, log),
		activityRepo:     NewActivityRepository(db, cfg, log),
		badgeRepo:        NewBadgeRepository(db, cfg, log),
		skillRepo:        NewSkillRepository(db, cfg, log),
		notificationRepo: NewNotificationRepository(db, cfg, log),
		messageRepo:      NewMessageRepository(db, cfg, log),
		financeRepo:      NewFinanceRepository(db, cfg, log),
	}
}

func (c *Container) GetUserRepository() UserRepositoryInterface { return c.userRepo }
func (c *Container) GetOrganizationRepository() OrganizationRepositoryInterface {
	return c.organizationRepo
}
func (c *Container) GetOpportunityRepository() OpportunityRepositoryInterface {
	return c.opportunityRepo
}
func (c *Container) GetApplicationRepository() ApplicationRepositoryInterface {
	return c.applicationRepo
}
func (c *Container) GetActivityRepository() ActivityRepositoryInterface { return c.activityRepo }
func (c *Container) GetBadgeRepository() BadgeRepositoryInterface       { return c.badgeRepo }
func (c *Container) GetSkillRepository() SkillRepositoryInterface       { return c.skillRepo }
func (c *Container) GetNotificationRepository() NotificationRepositoryInterface {
	return c.notificationRepo
}
func (c *Container) GetMessageRepository() MessageRepositoryInterface { return c.messageRepo }
func (c *Container) GetFinanceRepository() FinanceRepositoryInterface { return c.financeRepo }
