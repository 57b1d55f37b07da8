package repository

import (
	"voluntariado-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *RepositoryTestSuite) money(s string) models.Money {
	m, err := models.NewMoney(s)
	require.NoError(suite.T(), err)
	return m
}

func (suite *RepositoryTestSuite) balance(orgID int64) string {
	org, err := suite.container.GetOrganizationRepository().GetOrganizationByID(suite.ctx, orgID)
	require.NoError(suite.T(), err)
	return org.SaldoActual.StringFixed(2)
}

func (suite *RepositoryTestSuite) TestSettleDonationIsIdempotent() {
	org := suite.createOrganization("org@example.com")
	finance := suite.container.GetFinanceRepository()

	donation, err := finance.CreateDonation(suite.ctx, &models.Donation{
		OrganizacionID: org.ID,
		Monto:          suite.money("25.50"),
		Moneda:         "USD",
		Estado:         models.DonationStatusPending,
		PaypalOrderID:  "ORDER-1",
		FechaCreacion:  suite.now,
	})
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), finance.SettleDonation(suite.ctx, donation, "CAPTURE-1", suite.now))
	assert.Equal(suite.T(), "25.50", suite.balance(org.ID))

	stale := *donation
	stale.Estado = models.DonationStatusPending
	assert.ErrorIs(suite.T(), finance.SettleDonation(suite.ctx, &stale, "CAPTURE-1", suite.now), models.ErrConflict)
	assert.Equal(suite.T(), "25.50", suite.balance(org.ID))

	byOrder, err := finance.GetDonationByOrderID(suite.ctx, "ORDER-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.DonationStatusCompleted, byOrder.Estado)
	assert.Equal(suite.T(), "CAPTURE-1", byOrder.PaypalCaptureID)

	require.NoError(suite.T(), finance.RefundDonation(suite.ctx, byOrder))
	assert.Equal(suite.T(), "0.00", suite.balance(org.ID))
}

func (suite *RepositoryTestSuite) TestFailDonationOnlyFromPending() {
	org := suite.createOrganization("org@example.com")
	finance := suite.container.GetFinanceRepository()
	donation, err := finance.CreateDonation(suite.ctx, &models.Donation{
		OrganizacionID: org.ID, Monto: suite.money("10"), Moneda: "USD",
		Estado: models.DonationStatusPending, PaypalOrderID: "ORDER-2",
	})
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), finance.FailDonation(suite.ctx, donation))
	assert.ErrorIs(suite.T(), finance.SettleDonation(suite.ctx, donation, "CAPTURE-2", suite.now), models.ErrConflict)
	assert.Equal(suite.T(), "0.00", suite.balance(org.ID))
}

func (suite *RepositoryTestSuite) TestSaveReportReplacesSamePeriod() {
	finance := suite.container.GetFinanceRepository()

	first, err := finance.SaveReport(suite.ctx, &models.FinancialReport{
		OrganizacionID: 4, Anio: 2026, Trimestre: 1, TotalIngresos: suite.money("100"), FechaGeneracion: suite.now,
	})
	require.NoError(suite.T(), err)
	second, err := finance.SaveReport(suite.ctx, &models.FinancialReport{
		OrganizacionID: 4, Anio: 2026, Trimestre: 1, TotalIngresos: suite.money("150"), FechaGeneracion: suite.now,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), first.ID, second.ID)

	_, err = finance.SaveReport(suite.ctx, &models.FinancialReport{OrganizacionID: 4, Anio: 2026, Trimestre: 2})
	require.NoError(suite.T(), err)

	reports, err := finance.GetReportsByOrganization(suite.ctx, 4)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), reports, 2)
	assert.Equal(suite.T(), 2, reports[0].Trimestre)
	assert.Equal(suite.T(), "150.00", reports[1].TotalIngresos.StringFixed(2))
}

func (suite *RepositoryTestSuite) TestExpenses() {
	finance := suite.container.GetFinanceRepository()
	expense, err := finance.CreateExpense(suite.ctx, &models.Expense{
		OrganizacionID: 4, Concepto: "Transporte", Categoria: models.ExpenseCategoryOperativo,
		Monto: suite.money("12.30"), Fecha: suite.now,
	})
	require.NoError(suite.T(), err)

	expenses, err := finance.GetExpensesByOrganization(suite.ctx, 4)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), expenses, 1)

	require.NoError(suite.T(), finance.DeleteExpense(suite.ctx, expense.ID))
	assert.ErrorIs(suite.T(), finance.DeleteExpense(suite.ctx, expense.ID), models.ErrNotFound)
}
