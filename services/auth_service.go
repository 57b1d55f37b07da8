package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils"
	"voluntariado-backend/utils/logger"
)

type AuthService struct {
	userRepo repository.UserRepositoryInterface
	orgRepo  repository.OrganizationRepositoryInterface
	tokens   TokenIssuer
	mailer   Mailer
	config   *models.Config
	logger   logger.Logger
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepositoryInterface, orgRepo repository.OrganizationRepositoryInterface, tokens TokenIssuer, mailer Mailer, config *models.Config, logger logger.Logger, now func() time.Time) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		tokens:   tokens,
		mailer:   mailer,
		config:   config,
		logger:   logger,
		now:      now,
	}
}

// Register creates a volunteer, or an organization user together with its organization
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := s.validateRegister(req); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:    hash,
		Nombre:          strings.TrimSpace(req.Nombre),
		Apellido:        strings.TrimSpace(req.Apellido),
		Telefono:        req.Telefono,
		Ubicacion:       req.Ubicacion,
		Rol:             req.Rol,
		Estado:          models.UserStatusActive,
		FechaCreacion:   now,
		FechaActualizar: now,
	}

	var org *models.Organization
	if req.Rol == models.UserRoleOrganizacion {
		org = &models.Organization{
			Nombre:             strings.TrimSpace(req.OrganizacionNombre),
			Descripcion:        req.OrganizacionDescripcion,
			Email:              strings.ToLower(strings.TrimSpace(req.OrganizacionEmail)),
			Telefono:           req.OrganizacionTelefono,
			Direccion:          req.OrganizacionDireccion,
			SitioWeb:           req.OrganizacionSitioWeb,
			SaldoActual:        models.Money{},
			FechaCreacion:      now,
			FechaActualizacion: now,
		}
		user, org, err = s.userRepo.CreateOrganizationAccount(ctx, user, org)
	} else {
		user, err = s.userRepo.CreateUser(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Registered %s account %d", user.Rol, user.ID)
	s.sendWelcome(ctx, user)
	return s.respond(user, org)
}

// Login checks the credentials and returns a fresh access token
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warnf("Failed login for user %d", user.ID)
		return nil, models.ErrInvalidCredentials
	}
	if !user.Estado.CanLogin() {
		return nil, fmt.Errorf("user %d is %s: %w", user.ID, user.Estado, models.ErrAccountInactive)
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warnf("Failed to record login for user %d: %v", user.ID, err)
	}

	var org *models.Organization
	if user.Rol == models.UserRoleOrganizacion {
		org, err = s.orgRepo.GetOrganizationByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load organization of user %d: %w", user.ID, err)
		}
	}
	return s.respond(user, org)
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*models.UserDto, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToDto(), nil
}

func (s *AuthService) respond(user *models.User, org *models.Organization) (*models.AuthResponse, error) {
	var orgID int64
	if org != nil {
		orgID = org.ID
	}
	token, err := s.tokens.GenerateToken(user, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.AuthResponse{
		AccessToken:  token,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.config.JWTExpiresIn.Seconds()),
		User:         user.ToDto(),
		Organization: org,
	}, nil
}

func (s *AuthService) validateRegister(req *models.RegisterRequest) error {
	if req == nil {
		return models.NewValidationError("registration data is required")
	}
	var fields []models.FieldError
	if !req.Rol.IsValid() || req.Rol == models.UserRoleAdmin {
		fields = append(fields, models.FieldError{Field: "rol", Error: "must be Voluntario or Organizacion"})
	}
	if req.Rol == models.UserRoleOrganizacion {
		if strings.TrimSpace(req.OrganizacionNombre) == "" {
			fields = append(fields, models.FieldError{Field: "organizacionNombre", Error: "is required for organizations"})
		}
		if strings.TrimSpace(req.OrganizacionEmail) == "" {
			fields = append(fields, models.FieldError{Field: "organizacionEmail", Error: "is required for organizations"})
		}
	}
	if len(fields) > 0 {
		return models.NewValidationError("invalid registration", fields...)
	}
	return nil
}

func (s *AuthService) sendWelcome(ctx context.Context, user *models.User) {
	if s.mailer == nil {
		return
	}
	body := fmt.Sprintf("Hola %s, tu cuenta en %s fue creada correctamente.", user.Nombre, s.config.AppName)
	if err := s.mailer.Send(ctx, user.Email, user.Nombre, "Bienvenido a "+s.config.AppName, body); err != nil {
		s.logger.Warnf("Failed to send welcome e-mail to user %d: %v", user.ID, err)
	}
}
