package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

type UserRepository struct {
	base
}

// NewUserRepository creates a new user repository
func NewUserRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *UserRepository {
	return &UserRepository{base{db: db, config: cfg, logger: log}}
}

// CreateUser stores a user together with its email guard so two accounts can never share an email
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if ref, err := r.guardRef(ctx, userEmailGuard(user.Email)); err != nil {
		return nil, err
	} else if ref != 0 {
		return nil, models.ErrEmailTaken
	}

	id, err := r.nextID(ctx, TableUsers)
	if err != nil {
		return nil, err
	}
	user.ID = id

	err = r.db.TransactWrite(ctx, []dal.TransactOp{
		r.guardPut(userEmailGuard(user.Email), user.ID),
		dal.PutOp(r.table(TableUsers), user, dal.Cond(dal.AttributeNotExists("id"))),
	})
	if err != nil {
		if errors.Is(err, dal.ErrConditionFailed) {
			return nil, models.ErrEmailTaken
		}
		r.logger.Errorf("Failed to create user: %v", err)
		return nil, err
	}

	r.logger.Infof("User created successfully: %d", user.ID)
	return user, nil
}

// CreateOrganizationAccount stores an organization user and its organization profile atomically
func (r *UserRepository) CreateOrganizationAccount(ctx context.Context, user *models.User, org *models.Organization) (*models.User, *models.Organization, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	org.Email = strings.ToLower(strings.TrimSpace(org.Email))
	if ref, err := r.guardRef(ctx, userEmailGuard(user.Email)); err != nil {
		return nil, nil, err
	} else if ref != 0 {
		return nil, nil, models.ErrEmailTaken
	}

	userID, err := r.nextID(ctx, TableUsers)
	if err != nil {
		return nil, nil, err
	}
	orgID, err := r.nextID(ctx, TableOrganizations)
	if err != nil {
		return nil, nil, err
	}
	user.ID = userID
	org.ID = orgID
	org.UsuarioID = userID

	ops := []dal.TransactOp{
		r.guardPut(userEmailGuard(user.Email), user.ID),
		r.guardPut(organizationUserGuard(user.ID), org.ID),
		dal.PutOp(r.table(TableUsers), user, dal.Cond(dal.AttributeNotExists("id"))),
		dal.PutOp(r.table(TableOrganizations), org, dal.Cond(dal.AttributeNotExists("id"))),
	}
	if org.Email != "" && org.Email != user.Email {
		ops = append(ops, r.guardPut(organizationEmailGuard(org.Email), org.ID))
	}

	if err := r.db.TransactWrite(ctx, ops); err != nil {
		if errors.Is(err, dal.ErrConditionFailed) {
			return nil, nil, models.ErrEmailTaken
		}
		r.logger.Errorf("Failed to create organization account: %v", err)
		return nil, nil, err
	}

	r.logger.Infof("Organization account created: user %d, organization %d", user.ID, org.ID)
	return user, org, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	if err := r.get(ctx, TableUsers, id, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail looks a user up through the email index; emails are stored lower-cased
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var users []*models.User
	err := r.db.QueryByIndex(ctx, models.StringIndex(r.table(TableUsers), "email-index", "email", email), &users)
	if err != nil {
		r.logger.Errorf("Failed to query user by email: %v", err)
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	return users[0], nil
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.Scan(ctx, r.table(TableUsers), &users); err != nil {
		r.logger.Errorf("Failed to scan users: %v", err)
		return nil, err
	}
	sortUsers(users)
	return users, nil
}

func (r *UserRepository) GetUsersByRole(ctx context.Context, role models.UserRole) ([]*models.User, error) {
	var users []*models.User
	err := r.db.QueryByIndex(ctx, models.StringIndex(r.table(TableUsers), "rol-index", "rol", string(role)), &users)
	if err != nil {
		return nil, err
	}
	sortUsers(users)
	return users, nil
}

// UpdateProfile writes the editable profile fields; counters are never touched here
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) (*models.User, error) {
	upd := dal.Update{Set: map[string]interface{}{
		"nombre":             user.Nombre,
		"apellido":           user.Apellido,
		"telefono":           user.Telefono,
		"ubicacion":          user.Ubicacion,
		"biografia":          user.Biografia,
		"intereses":          user.Intereses,
		"fechaActualizacion": user.FechaActualizar,
	}}
	return r.update(ctx, user.ID, upd)
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status models.UserStatus, at time.Time) (*models.User, error) {
	return r.update(ctx, id, dal.Update{Set: map[string]interface{}{
		"estado":             status,
		"fechaActualizacion": at,
	}})
}

func (r *UserRepository) SetProfilePhoto(ctx context.Context, id int64, url string, at time.Time) (*models.User, error) {
	return r.update(ctx, id, dal.Update{Set: map[string]interface{}{
		"fotoPerfil":         url,
		"fechaActualizacion": at,
	}})
}

func (r *UserRepository) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.update(ctx, id, dal.Update{Set: map[string]interface{}{"ultimoAcceso": at}})
	return err
}

func (r *UserRepository) update(ctx context.Context, id int64, upd dal.Update) (*models.User, error) {
	user := &models.User{}
	err := r.db.UpdateItem(ctx, r.key(TableUsers, id), upd, dal.Cond(dal.AttributeExists("id")), user)
	if err != nil {
		return nil, notFoundOnCondition(err, "user", id)
	}
	return user, nil
}

func sortUsers(users []*models.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}
