package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils/logger"
)

type UserService struct {
	userRepo repository.UserRepositoryInterface
	badges   BadgeServiceInterface
	skills   SkillServiceInterface
	storage  ImageStorage
	config   *models.Config
	logger   logger.Logger
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepositoryInterface, badges BadgeServiceInterface, skills SkillServiceInterface, storage ImageStorage, config *models.Config, logger logger.Logger, now func() time.Time) *UserService {
	return &UserService{
		userRepo: userRepo,
		badges:   badges,
		skills:   skills,
		storage:  storage,
		config:   config,
		logger:   logger,
		now:      now,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.UserDto, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToDto(), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*models.UserDto, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Nombre != nil {
		user.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Apellido != nil {
		user.Apellido = strings.TrimSpace(*req.Apellido)
	}
	if req.Telefono != nil {
		user.Telefono = strings.TrimSpace(*req.Telefono)
	}
	if req.Ubicacion != nil {
		user.Ubicacion = strings.TrimSpace(*req.Ubicacion)
	}
	if req.Biografia != nil {
		user.Biografia = *req.Biografia
	}
	if req.Intereses != nil {
		user.Intereses = req.Intereses
	}
	if user.Nombre == "" {
		return nil, models.NewValidationError("invalid profile", models.FieldError{Field: "nombre", Error: "cannot be empty"})
	}
	user.FechaActualizar = s.now()

	updated, err := s.userRepo.UpdateProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	return updated.ToDto(), nil
}

// GetPublicProfile returns the user's aggregates with earned badges and declared skills
func (s *UserService) GetPublicProfile(ctx context.Context, userID int64) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.badges.GetUserBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}
	skills, err := s.skills.GetUserSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}

	dto := user.ToDto()
	dto.Email = ""
	dto.Telefono = ""
	return &models.PublicProfile{UserDto: dto, Badges: badges, Skills: skills}, nil
}

func (s *UserService) UploadAvatar(ctx context.Context, userID int64, file *models.ImageFile) (*models.UserDto, error) {
	url, err := storeImage(ctx, s.storage, file, s.config.UploadMaxBytes, "avatars")
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.SetProfilePhoto(ctx, userID, url, s.now())
	if err != nil {
		return nil, err
	}
	return user.ToDto(), nil
}

// GetUsers lists accounts for administrators, newest first
func (s *UserService) GetUsers(ctx context.Context, filter models.UserFilter) (models.PagedResult[*models.UserDto], error) {
	var (
		users []*models.User
		err   error
	)
	if filter.Rol != "" {
		users, err = s.userRepo.GetUsersByRole(ctx, filter.Rol)
	} else {
		users, err = s.userRepo.GetUsers(ctx)
	}
	if err != nil {
		return models.PagedResult[*models.UserDto]{}, err
	}

	term := strings.ToLower(strings.TrimSpace(filter.SearchTerm))
	dtos := make([]*models.UserDto, 0, len(users))
	for _, u := range users {
		if filter.Estado != "" && u.Estado != filter.Estado {
			continue
		}
		if term != "" && !matchesUser(u, term) {
			continue
		}
		dtos = append(dtos, u.ToDto())
	}
	sort.SliceStable(dtos, func(i, j int) bool { return dtos[i].FechaCreacion.After(dtos[j].FechaCreacion) })
	return models.Paginate(dtos, filter.Pagination), nil
}

func (s *UserService) UpdateUserStatus(ctx context.Context, userID int64, status models.UserStatus) (*models.UserDto, error) {
	if !status.IsValid() {
		return nil, models.NewValidationError("invalid status", models.FieldError{Field: "estado", Error: "is not a known status"})
	}
	user, err := s.userRepo.UpdateStatus(ctx, userID, status, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Infof("User %d status set to %s", userID, status)
	return user.ToDto(), nil
}

func matchesUser(u *models.User, term string) bool {
	return strings.Contains(strings.ToLower(u.Nombre+" "+u.Apellido), term) ||
		strings.Contains(strings.ToLower(u.Email), term)
}
