package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"voluntariado-backend/dal"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"
)

// FinanceRepository implements FinanceRepositoryInterface
type FinanceRepository struct {
	base
}

func NewFinanceRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *FinanceRepository {
	return &FinanceRepository{base{db: db, config: cfg, logger: log}}
}

func (r *FinanceRepository) CreateDonation(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	id, err := r.nextID(ctx, TableDonations)
	if err != nil {
		return nil, err
	}
	d.ID = id
	if err := r.db.PutItemWithCondition(ctx, r.table(TableDonations), d, dal.AttributeNotExists("id")); err != nil {
		r.logger.Errorf("Failed to create donation: %v", err)
		return nil, err
	}
	r.logger.Infof("Donation %d created for organization %d (order %s)", d.ID, d.OrganizacionID, d.PaypalOrderID)
	return d, nil
}

func (r *FinanceRepository) GetDonationByID(ctx context.Context, id int64) (*models.Donation, error) {
	d := &models.Donation{}
	if err := r.get(ctx, TableDonations, id, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *FinanceRepository) GetDonationByOrderID(ctx context.Context, orderID string) (*models.Donation, error) {
	var ds []*models.Donation
	err := r.db.QueryByIndex(ctx, models.StringIndex(r.table(TableDonations), "paypalOrderId-index", "paypalOrderId", orderID), &ds)
	if err != nil {
		return nil, err
	}
	if len(ds) == 0 {
		return nil, fmt.Errorf("donation for order %s: %w", orderID, models.ErrNotFound)
	}
	return ds[0], nil
}

func (r *FinanceRepository) GetDonationsByOrganization(ctx context.Context, orgID int64) ([]*models.Donation, error) {
	return r.donationsBy(ctx, "organizacionId", orgID)
}

func (r *FinanceRepository) GetDonationsByDonor(ctx context.Context, donorID int64) ([]*models.Donation, error) {
	return r.donationsBy(ctx, "donanteId", donorID)
}

func (r *FinanceRepository) GetDonations(ctx context.Context) ([]*models.Donation, error) {
	var ds []*models.Donation
	if err := r.db.Scan(ctx, r.table(TableDonations), &ds); err != nil {
		return nil, err
	}
	sortDonations(ds)
	return ds, nil
}

func (r *FinanceRepository) donationsBy(ctx context.Context, attr string, value int64) ([]*models.Donation, error) {
	var ds []*models.Donation
	err := r.db.QueryByIndex(ctx, models.NumberIndex(r.table(TableDonations), attr+"-index", attr, value), &ds)
	if err != nil {
		return nil, err
	}
	sortDonations(ds)
	return ds, nil
}

// SettleDonation completes a Pending donation and credits the organization balance.
// A donation that is no longer Pending yields models.ErrConflict and nothing is credited.
func (r *FinanceRepository) SettleDonation(ctx context.Context, d *models.Donation, captureID string, at time.Time) error {
	err := r.db.TransactWrite(ctx, []dal.TransactOp{
		dal.UpdateOp(r.key(TableDonations, d.ID), dal.Update{Set: map[string]interface{}{
			"estado":          models.DonationStatusCompleted,
			"paypalCaptureId": captureID,
			"fechaCompletada": at,
		}}, dal.Cond(dal.Equal("estado", models.DonationStatusPending))),
		dal.UpdateOp(r.key(TableOrganizations, d.OrganizacionID), dal.Update{Add: map[string]interface{}{
			"saldoActual": d.Monto,
		}}, dal.Cond(dal.AttributeExists("id"))),
	})
	if err != nil {
		return r.donationError(err, d)
	}
	d.Estado = models.DonationStatusCompleted
	d.PaypalCaptureID = captureID
	d.FechaCompletada = &at
	r.logger.Infof("Donation %d settled: %s %s credited to organization %d", d.ID, d.Monto.StringFixed(2), d.Moneda, d.OrganizacionID)
	return nil
}

func (r *FinanceRepository) FailDonation(ctx context.Context, d *models.Donation) error {
	err := r.db.UpdateItem(ctx, r.key(TableDonations, d.ID), dal.Update{Set: map[string]interface{}{
		"estado": models.DonationStatusFailed,
	}}, dal.Cond(dal.Equal("estado", models.DonationStatusPending)), nil)
	if err != nil {
		return r.donationError(err, d)
	}
	d.Estado = models.DonationStatusFailed
	return nil
}

// RefundDonation reverses a Completed donation and debits the organization balance
func (r *FinanceRepository) RefundDonation(ctx context.Context, d *models.Donation) error {
	err := r.db.TransactWrite(ctx, []dal.TransactOp{
		dal.UpdateOp(r.key(TableDonations, d.ID), dal.Update{Set: map[string]interface{}{
			"estado": models.DonationStatusRefunded,
		}}, dal.Cond(dal.Equal("estado", models.DonationStatusCompleted))),
		dal.UpdateOp(r.key(TableOrganizations, d.OrganizacionID), dal.Update{Add: map[string]interface{}{
			"saldoActual": models.MoneyFromDecimal(d.Monto.Neg()),
		}}, dal.Cond(dal.AttributeExists("id"))),
	})
	if err != nil {
		return r.donationError(err, d)
	}
	d.Estado = models.DonationStatusRefunded
	return nil
}

func (r *FinanceRepository) donationError(err error, d *models.Donation) error {
	if dal.FailedOperation(err) == 0 {
		return fmt.Errorf("donation %d is no longer %s: %w", d.ID, d.Estado, models.ErrConflict)
	}
	if errors.Is(err, dal.ErrConditionFailed) {
		return fmt.Errorf("organization %d: %w", d.OrganizacionID, models.ErrNotFound)
	}
	r.logger.Errorf("Failed to update donation %d: %v", d.ID, err)
	return err
}

func (r *FinanceRepository) CreateExpense(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	id, err := r.nextID(ctx, TableExpenses)
	if err != nil {
		return nil, err
	}
	e.ID = id
	if err := r.db.PutItemWithCondition(ctx, r.table(TableExpenses), e, dal.AttributeNotExists("id")); err != nil {
		r.logger.Errorf("Failed to create expense: %v", err)
		return nil, err
	}
	return e, nil
}

func (r *FinanceRepository) GetExpenseByID(ctx context.Context, id int64) (*models.Expense, error) {
	e := &models.Expense{}
	if err := r.get(ctx, TableExpenses, id, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *FinanceRepository) GetExpensesByOrganization(ctx context.Context, orgID int64) ([]*models.Expense, error) {
	var es []*models.Expense
	err := r.db.QueryByIndex(ctx, models.NumberIndex(r.table(TableExpenses), "organizacionId-index", "organizacionId", orgID), &es)
	if err != nil {
		return nil, err
	}
	sort.Slice(es, func(i, j int) bool {
		if es[i].Fecha.Equal(es[j].Fecha) {
			return es[i].ID < es[j].ID
		}
		return es[i].Fecha.Before(es[j].Fecha)
	})
	return es, nil
}

func (r *FinanceRepository) DeleteExpense(ctx context.Context, id int64) error {
	err := r.db.DeleteItem(ctx, r.key(TableExpenses, id), dal.Cond(dal.AttributeExists("id")))
	return notFoundOnCondition(err, "expense", id)
}

// SaveReport stores the report for its (organization, year, quarter), replacing
// any earlier generation of the same period.
func (r *FinanceRepository) SaveReport(ctx context.Context, report *models.FinancialReport) (*models.FinancialReport, error) {
	guard := reportGuard(report.OrganizacionID, report.Anio, report.Trimestre)
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := r.guardRef(ctx, guard)
		if err != nil {
			return nil, err
		}
		if existing != 0 {
			report.ID = existing
			if err := r.db.PutItem(ctx, r.table(TableFinancialReports), report); err != nil {
				return nil, err
			}
			return report, nil
		}

		id, err := r.nextID(ctx, TableFinancialReports)
		if err != nil {
			return nil, err
		}
		report.ID = id
		err = r.db.TransactWrite(ctx, []dal.TransactOp{
			r.guardPut(guard, report.ID),
			dal.PutOp(r.table(TableFinancialReports), report, nil),
		})
		if err == nil {
			return report, nil
		}
		if dal.FailedOperation(err) != 0 {
			r.logger.Errorf("Failed to save report %s: %v", guard, err)
			return nil, err
		}
	}
	return nil, fmt.Errorf("report %s: %w", guard, models.ErrConflict)
}

// GetReportsByOrganization returns the reports newest period first
func (r *FinanceRepository) GetReportsByOrganization(ctx context.Context, orgID int64) ([]*models.FinancialReport, error) {
	var reports []*models.FinancialReport
	err := r.db.QueryByIndex(ctx, models.NumberIndex(r.table(TableFinancialReports), "organizacionId-index", "organizacionId", orgID), &reports)
	if err != nil {
		return nil, err
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Anio != reports[j].Anio {
			return reports[i].Anio > reports[j].Anio
		}
		return reports[i].Trimestre > reports[j].Trimestre
	})
	return reports, nil
}

func sortDonations(ds []*models.Donation) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].ID < ds[j].ID })
}
