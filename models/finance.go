package models

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Money is a decimal amount stored as a DynamoDB number
type Money struct {
	decimal.Decimal
}

// NewMoney parses an amount such as "12.50"
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{d}, nil
}

// MoneyFromDecimal wraps d
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// Plus returns m + o
func (m Money) Plus(o Money) Money {
	return Money{m.Decimal.Add(o.Decimal)}
}

// Minus returns m - o
func (m Money) Minus(o Money) Money {
	return Money{m.Decimal.Sub(o.Decimal)}
}

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler
func (m Money) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: m.Decimal.String()}, nil
}

// UnmarshalDynamoDBAttributeValue implements attributevalue.Unmarshaler
func (m *Money) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		d, err := decimal.NewFromString(v.Value)
		if err != nil {
			return err
		}
		m.Decimal = d
	case *types.AttributeValueMemberS:
		d, err := decimal.NewFromString(v.Value)
		if err != nil {
			return err
		}
		m.Decimal = d
	case *types.AttributeValueMemberNULL:
		m.Decimal = decimal.Zero
	default:
		return fmt.Errorf("unsupported attribute type %T for money", av)
	}
	return nil
}

// DonationStatus is the settlement state of a donation
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "Pending"
	DonationStatusCompleted DonationStatus = "Completed"
	DonationStatusFailed    DonationStatus = "Failed"
	DonationStatusRefunded  DonationStatus = "Refunded"
)

// Donation is a PayPal payment towards an organization
type Donation struct {
	ID              int64          `json:"id" dynamodbav:"id"`
	OrganizacionID  int64          `json:"organizacionId" dynamodbav:"organizacionId"`
	DonanteID       int64          `json:"donanteId,omitempty" dynamodbav:"donanteId,omitempty"`
	DonanteNombre   string         `json:"donanteNombre,omitempty" dynamodbav:"donanteNombre,omitempty"`
	DonanteEmail    string         `json:"donanteEmail,omitempty" dynamodbav:"donanteEmail,omitempty"`
	Monto           Money          `json:"monto" dynamodbav:"monto"`
	Moneda          string         `json:"moneda" dynamodbav:"moneda"`
	Mensaje         string         `json:"mensaje,omitempty" dynamodbav:"mensaje,omitempty"`
	Anonima         bool           `json:"anonima" dynamodbav:"anonima"`
	Estado          DonationStatus `json:"estado" dynamodbav:"estado"`
	PaypalOrderID   string         `json:"paypalOrderId" dynamodbav:"paypalOrderId"`
	PaypalCaptureID string         `json:"paypalCaptureId,omitempty" dynamodbav:"paypalCaptureId,omitempty"`
	FechaCreacion   time.Time      `json:"fechaCreacion" dynamodbav:"fechaCreacion"`
	FechaCompletada *time.Time     `json:"fechaCompletada,omitempty" dynamodbav:"fechaCompletada,omitempty"`
}

// CreateDonationRequest starts a PayPal checkout
type CreateDonationRequest struct {
	OrganizacionID int64  `json:"organizacionId" validate:"required,gt=0"`
	Monto          string `json:"monto" validate:"required,numeric" example:"25.00"`
	Moneda         string `json:"moneda,omitempty" validate:"omitempty,len=3,uppercase" example:"USD"`
	Mensaje        string `json:"mensaje,omitempty" validate:"omitempty,max=500"`
	Anonima        bool   `json:"anonima"`
	DonanteNombre  string `json:"donanteNombre,omitempty" validate:"omitempty,max=150"`
	DonanteEmail   string `json:"donanteEmail,omitempty" validate:"omitempty,email"`
}

// DonationOrder is returned when a checkout is created
type DonationOrder struct {
	Donation    *Donation `json:"donation"`
	ApprovalURL string    `json:"approvalUrl"`
}

// ExpenseCategory groups organization expenses
type ExpenseCategory string

const (
	ExpenseCategoryOperativo      ExpenseCategory = "Operativo"
	ExpenseCategoryProgramas      ExpenseCategory = "Programas"
	ExpenseCategoryAdministrativo ExpenseCategory = "Administrativo"
	ExpenseCategoryRecaudacion    ExpenseCategory = "Recaudacion"
	ExpenseCategoryOtro           ExpenseCategory = "Otro"
)

// Expense is money spent by an organization
type Expense struct {
	ID             int64           `json:"id" dynamodbav:"id"`
	OrganizacionID int64           `json:"organizacionId" dynamodbav:"organizacionId"`
	Concepto       string          `json:"concepto" dynamodbav:"concepto"`
	Categoria      ExpenseCategory `json:"categoria" dynamodbav:"categoria"`
	Monto          Money           `json:"monto" dynamodbav:"monto"`
	Fecha          time.Time       `json:"fecha" dynamodbav:"fecha"`
	Comprobante    string          `json:"comprobante,omitempty" dynamodbav:"comprobante,omitempty"`
	FechaCreacion  time.Time       `json:"fechaCreacion" dynamodbav:"fechaCreacion"`
}

// CreateExpenseRequest records an expense
type CreateExpenseRequest struct {
	Concepto    string          `json:"concepto" validate:"required,min=2,max=300"`
	Categoria   ExpenseCategory `json:"categoria" validate:"required,oneof=Operativo Programas Administrativo Recaudacion Otro"`
	Monto       string          `json:"monto" validate:"required,numeric"`
	Fecha       time.Time       `json:"fecha" validate:"required"`
	Comprobante string          `json:"comprobante,omitempty" validate:"omitempty,url"`
}

// FinancialReport summarizes one organization quarter
type FinancialReport struct {
	ID                 int64                     `json:"id" dynamodbav:"id"`
	OrganizacionID     int64                     `json:"organizacionId" dynamodbav:"organizacionId"`
	Anio               int                       `json:"anio" dynamodbav:"anio"`
	Trimestre          int                       `json:"trimestre" dynamodbav:"trimestre"`
	TotalIngresos      Money                     `json:"totalIngresos" dynamodbav:"totalIngresos"`
	TotalGastos        Money                     `json:"totalGastos" dynamodbav:"totalGastos"`
	Balance            Money                     `json:"balance" dynamodbav:"balance"`
	CantidadDonaciones int                       `json:"cantidadDonaciones" dynamodbav:"cantidadDonaciones"`
	GastosPorCategoria map[ExpenseCategory]Money `json:"gastosPorCategoria" dynamodbav:"gastosPorCategoria"`
	FechaGeneracion    time.Time                 `json:"fechaGeneracion" dynamodbav:"fechaGeneracion"`
}

// GenerateReportRequest selects the quarter to (re)generate
type GenerateReportRequest struct {
	Anio      int `json:"anio" validate:"required,gte=2000,lte=2100"`
	Trimestre int `json:"trimestre" validate:"required,min=1,max=4"`
}

// QuarterBounds returns the [start, end) interval of a calendar quarter in UTC
func QuarterBounds(year, quarter int) (time.Time, time.Time) {
	start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 3, 0)
}

// QuarterOf returns the calendar year and quarter containing t
func QuarterOf(t time.Time) (int, int) {
	t = t.UTC()
	return t.Year(), (int(t.Month())-1)/3 + 1
}

// TransparencyView is the public financial page of a verified organization
type TransparencyView struct {
	Organization *Organization      `json:"organization"`
	Reports      []*FinancialReport `json:"reports"`
}
