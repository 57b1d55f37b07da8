package services

import (
	"context"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/utils/logger"
)

type AdminService struct {
	repos  repository.RepositoryContainerInterface
	logger logger.Logger
}

func NewAdminService(repos repository.RepositoryContainerInterface, logger logger.Logger) *AdminService {
	return &AdminService{repos: repos, logger: logger}
}

// GetStats aggregates platform-wide counters from full table reads
func (s *AdminService) GetStats(ctx context.Context) (*models.AdminStats, error) {
	stats := &models.AdminStats{
		UsuariosPorRol:         map[models.UserRole]int{},
		UsuariosPorEstado:      map[models.UserStatus]int{},
		OportunidadesPorEstado: map[models.OpportunityStatus]int{},
		AplicacionesPorEstado:  map[models.ApplicationStatus]int{},
	}

	users, err := s.repos.GetUserRepository().GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalUsuarios = len(users)
	for _, u := range users {
		stats.UsuariosPorRol[u.Rol]++
		stats.UsuariosPorEstado[u.Estado]++
		stats.HorasVoluntariadoTotal += u.HorasVoluntariado
	}

	orgs, err := s.repos.GetOrganizationRepository().GetOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalOrganizaciones = len(orgs)
	for _, o := range orgs {
		if o.Verificada {
			stats.OrganizacionesVerificadas++
		}
	}

	opps, err := s.repos.GetOpportunityRepository().GetOpportunities(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range opps {
		stats.OportunidadesPorEstado[o.Estado]++
	}

	apps, err := s.repos.GetApplicationRepository().GetApplications(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range apps {
		stats.AplicacionesPorEstado[a.Estado]++
	}

	donations, err := s.repos.GetFinanceRepository().GetDonations(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range donations {
		if d.Estado == models.DonationStatusCompleted {
			stats.DonacionesTotal = stats.DonacionesTotal.Plus(d.Monto)
		}
	}

	awards, err := s.repos.GetBadgeRepository().GetAllAwards(ctx)
	if err != nil {
		return nil, err
	}
	stats.BadgesOtorgados = len(awards)

	s.logger.Debugf("Admin stats computed: %d users, %d opportunities, %d applications", stats.TotalUsuarios, len(opps), len(apps))
	return stats, nil
}
