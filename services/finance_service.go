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

type FinanceService struct {
	financeRepo      repository.FinanceRepositoryInterface
	organizationRepo repository.OrganizationRepositoryInterface
	logger           logger.Logger
	now              func() time.Time
}

func NewFinanceService(financeRepo repository.FinanceRepositoryInterface, organizationRepo repository.OrganizationRepositoryInterface, logger logger.Logger, now func() time.Time) *FinanceService {
	return &FinanceService{
		financeRepo:      financeRepo,
		organizationRepo: organizationRepo,
		logger:           logger,
		now:              now,
	}
}

func (s *FinanceService) CreateExpense(ctx context.Context, orgID int64, req *models.CreateExpenseRequest) (*models.Expense, error) {
	amount, err := models.NewMoney(req.Monto)
	if err != nil || !amount.IsPositive() {
		return nil, models.NewValidationError("invalid amount", models.FieldError{Field: "monto", Error: "must be a positive amount"})
	}
	if _, err := s.organizationRepo.GetOrganizationByID(ctx, orgID); err != nil {
		return nil, err
	}

	return s.financeRepo.CreateExpense(ctx, &models.Expense{
		OrganizacionID: orgID,
		Concepto:       strings.TrimSpace(req.Concepto),
		Categoria:      req.Categoria,
		Monto:          amount,
		Fecha:          req.Fecha.UTC(),
		Comprobante:    req.Comprobante,
		FechaCreacion:  s.now(),
	})
}

func (s *FinanceService) GetExpenses(ctx context.Context, orgID int64) ([]*models.Expense, error) {
	return s.financeRepo.GetExpensesByOrganization(ctx, orgID)
}

func (s *FinanceService) DeleteExpense(ctx context.Context, orgID, expenseID int64) error {
	expense, err := s.financeRepo.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return err
	}
	if expense.OrganizacionID != orgID {
		return fmt.Errorf("expense %d: %w", expenseID, models.ErrNotAuthorized)
	}
	return s.financeRepo.DeleteExpense(ctx, expenseID)
}

// GenerateReport aggregates the completed donations and the expenses of one
// quarter. Regenerating a quarter replaces the previous report.
func (s *FinanceService) GenerateReport(ctx context.Context, orgID int64, year, quarter int) (*models.FinancialReport, error) {
	if quarter < 1 || quarter > 4 {
		return nil, models.NewValidationError("invalid quarter", models.FieldError{Field: "trimestre", Error: "must be between 1 and 4"})
	}
	if _, err := s.organizationRepo.GetOrganizationByID(ctx, orgID); err != nil {
		return nil, err
	}
	start, end := models.QuarterBounds(year, quarter)
	within := func(t time.Time) bool { return !t.Before(start) && t.Before(end) }

	donations, err := s.financeRepo.GetDonationsByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.financeRepo.GetExpensesByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	report := &models.FinancialReport{
		OrganizacionID:     orgID,
		Anio:               year,
		Trimestre:          quarter,
		GastosPorCategoria: map[models.ExpenseCategory]models.Money{},
		FechaGeneracion:    s.now(),
	}
	for _, d := range donations {
		if d.Estado != models.DonationStatusCompleted || d.FechaCompletada == nil || !within(*d.FechaCompletada) {
			continue
		}
		report.TotalIngresos = report.TotalIngresos.Plus(d.Monto)
		report.CantidadDonaciones++
	}
	for _, e := range expenses {
		if !within(e.Fecha) {
			continue
		}
		report.TotalGastos = report.TotalGastos.Plus(e.Monto)
		report.GastosPorCategoria[e.Categoria] = report.GastosPorCategoria[e.Categoria].Plus(e.Monto)
	}
	report.Balance = report.TotalIngresos.Minus(report.TotalGastos)

	saved, err := s.financeRepo.SaveReport(ctx, report)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Report %d-Q%d generated for organization %d: balance %s", year, quarter, orgID, saved.Balance.StringFixed(2))
	return saved, nil
}

func (s *FinanceService) GetReports(ctx context.Context, orgID int64) ([]*models.FinancialReport, error) {
	return s.financeRepo.GetReportsByOrganization(ctx, orgID)
}

// GetTransparency publishes the reports of verified organizations only
func (s *FinanceService) GetTransparency(ctx context.Context, orgID int64) (*models.TransparencyView, error) {
	org, err := s.organizationRepo.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !org.Verificada {
		return nil, fmt.Errorf("transparency of organization %d: %w", orgID, models.ErrNotFound)
	}
	reports, err := s.financeRepo.GetReportsByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &models.TransparencyView{Organization: org, Reports: reports}, nil
}

// GeneratePreviousQuarterReports builds last quarter's report for every verified organization
func (s *FinanceService) GeneratePreviousQuarterReports(ctx context.Context) (int, error) {
	year, quarter := models.QuarterOf(s.now())
	quarter--
	if quarter == 0 {
		year, quarter = year-1, 4
	}

	orgs, err := s.organizationRepo.GetOrganizations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	generated := 0
	for _, org := range orgs {
		if !org.Verificada {
			continue
		}
		if _, err := s.GenerateReport(ctx, org.ID, year, quarter); err != nil {
			s.logger.Warnf("Failed to generate %d-Q%d report for organization %d: %v", year, quarter, org.ID, err)
			continue
		}
		generated++
	}
	return generated, nil
}
