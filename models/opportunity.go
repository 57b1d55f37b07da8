package models

import "time"

// OpportunityStatus is the publication status of an opportunity
type OpportunityStatus string

const (
	OpportunityStatusDraft     OpportunityStatus = "Draft"
	OpportunityStatusActive    OpportunityStatus = "Active"
	OpportunityStatusPaused    OpportunityStatus = "Paused"
	OpportunityStatusClosed    OpportunityStatus = "Closed"
	OpportunityStatusCompleted OpportunityStatus = "Completed"
)

// IsValid reports whether s belongs to the closed status set
func (s OpportunityStatus) IsValid() bool {
	switch s {
	case OpportunityStatusDraft, OpportunityStatusActive, OpportunityStatusPaused,
		OpportunityStatusClosed, OpportunityStatusCompleted:
		return true
	}
	return false
}

var opportunityTransitions = map[OpportunityStatus][]OpportunityStatus{
	OpportunityStatusDraft:  {OpportunityStatusActive, OpportunityStatusClosed},
	OpportunityStatusActive: {OpportunityStatusPaused, OpportunityStatusClosed, OpportunityStatusCompleted},
	OpportunityStatusPaused: {OpportunityStatusActive, OpportunityStatusClosed, OpportunityStatusCompleted},
	OpportunityStatusClosed: {OpportunityStatusCompleted},
}

// CanTransitionTo reports whether an organization may move an opportunity
// from s to next. Keeping the current status is always allowed.
func (s OpportunityStatus) CanTransitionTo(next OpportunityStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range opportunityTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// EndsEnrollment reports whether the status closes the opportunity for good
func (s OpportunityStatus) EndsEnrollment() bool {
	return s == OpportunityStatusClosed || s == OpportunityStatusCompleted
}

// Opportunity is a volunteering posting owned by one organization
type Opportunity struct {
	ID                    int64             `json:"id" dynamodbav:"id"`
	OrganizacionID        int64             `json:"organizacionId" dynamodbav:"organizacionId"`
	Titulo                string            `json:"titulo" dynamodbav:"titulo"`
	Descripcion           string            `json:"descripcion" dynamodbav:"descripcion"`
	Requisitos            string            `json:"requisitos,omitempty" dynamodbav:"requisitos,omitempty"`
	Habilidades           []string          `json:"habilidades,omitempty" dynamodbav:"habilidades,omitempty"`
	AreaInteres           string            `json:"areaInteres" dynamodbav:"areaInteres"`
	Ubicacion             string            `json:"ubicacion" dynamodbav:"ubicacion"`
	FechaInicio           time.Time         `json:"fechaInicio" dynamodbav:"fechaInicio"`
	FechaFin              time.Time         `json:"fechaFin" dynamodbav:"fechaFin"`
	DuracionHoras         float64           `json:"duracionHoras" dynamodbav:"duracionHoras"`
	VoluntariosRequeridos int               `json:"voluntariosRequeridos" dynamodbav:"voluntariosRequeridos"`
	VoluntariosInscritos  int               `json:"voluntariosInscritos" dynamodbav:"voluntariosInscritos"`
	Imagen                string            `json:"imagen,omitempty" dynamodbav:"imagen,omitempty"`
	Estado                OpportunityStatus `json:"estado" dynamodbav:"estado"`
	TotalAplicaciones     int               `json:"totalAplicaciones" dynamodbav:"totalAplicaciones"`
	FechaCreacion         time.Time         `json:"fechaCreacion" dynamodbav:"fechaCreacion"`
	FechaActualizacion    time.Time         `json:"fechaActualizacion" dynamodbav:"fechaActualizacion"`
}

// CuposDisponibles is the number of free slots
func (o *Opportunity) CuposDisponibles() int {
	if o.VoluntariosInscritos >= o.VoluntariosRequeridos {
		return 0
	}
	return o.VoluntariosRequeridos - o.VoluntariosInscritos
}

// OpportunityListDto is the summary row returned by listings
type OpportunityListDto struct {
	ID                    int64             `json:"id"`
	OrganizacionID        int64             `json:"organizacionId"`
	Titulo                string            `json:"titulo"`
	AreaInteres           string            `json:"areaInteres"`
	Ubicacion             string            `json:"ubicacion"`
	FechaInicio           time.Time         `json:"fechaInicio"`
	FechaFin              time.Time         `json:"fechaFin"`
	DuracionHoras         float64           `json:"duracionHoras"`
	VoluntariosRequeridos int               `json:"voluntariosRequeridos"`
	VoluntariosInscritos  int               `json:"voluntariosInscritos"`
	Imagen                string            `json:"imagen,omitempty"`
	Estado                OpportunityStatus `json:"estado"`
	FechaCreacion         time.Time         `json:"fechaCreacion"`
}

// OpportunityDetailDto extends the list row with the full description
type OpportunityDetailDto struct {
	OpportunityListDto
	Descripcion        string   `json:"descripcion"`
	Requisitos         string   `json:"requisitos,omitempty"`
	Habilidades        []string `json:"habilidades,omitempty"`
	OrganizacionNombre string   `json:"organizacionNombre"`
	CuposDisponibles   int      `json:"cuposDisponibles"`
	YaAplico           bool     `json:"yaAplico"`
}

// ToListDto builds the listing row
func (o *Opportunity) ToListDto() OpportunityListDto {
	return OpportunityListDto{
		ID:                    o.ID,
		OrganizacionID:        o.OrganizacionID,
		Titulo:                o.Titulo,
		AreaInteres:           o.AreaInteres,
		Ubicacion:             o.Ubicacion,
		FechaInicio:           o.FechaInicio,
		FechaFin:              o.FechaFin,
		DuracionHoras:         o.DuracionHoras,
		VoluntariosRequeridos: o.VoluntariosRequeridos,
		VoluntariosInscritos:  o.VoluntariosInscritos,
		Imagen:                o.Imagen,
		Estado:                o.Estado,
		FechaCreacion:         o.FechaCreacion,
	}
}

// OpportunityFilter holds the optional listing filters
type OpportunityFilter struct {
	SearchTerm  string            `form:"searchTerm"`
	AreaInteres string            `form:"areaInteres"`
	Ubicacion   string            `form:"ubicacion"`
	Status      OpportunityStatus `form:"status"`
	Pagination
}

// CreateOpportunityRequest creates a new posting
type CreateOpportunityRequest struct {
	Titulo                string    `json:"titulo" validate:"required,min=3,max=200" example:"Limpieza de playa"`
	Descripcion           string    `json:"descripcion" validate:"required,min=10,max=5000"`
	Requisitos            string    `json:"requisitos,omitempty" validate:"omitempty,max=2000"`
	Habilidades           []string  `json:"habilidades,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
	AreaInteres           string    `json:"areaInteres" validate:"required,max=100" example:"Medio Ambiente"`
	Ubicacion             string    `json:"ubicacion" validate:"required,max=200" example:"Valparaíso"`
	FechaInicio           time.Time `json:"fechaInicio" validate:"required"`
	FechaFin              time.Time `json:"fechaFin" validate:"required"`
	DuracionHoras         float64   `json:"duracionHoras" validate:"gte=0,lte=10000"`
	VoluntariosRequeridos int       `json:"voluntariosRequeridos" validate:"required,gt=0,lte=100000"`
}

// UpdateOpportunityRequest patches an existing posting
type UpdateOpportunityRequest struct {
	Titulo                *string            `json:"titulo,omitempty" validate:"omitempty,min=3,max=200"`
	Descripcion           *string            `json:"descripcion,omitempty" validate:"omitempty,min=10,max=5000"`
	Requisitos            *string            `json:"requisitos,omitempty" validate:"omitempty,max=2000"`
	Habilidades           []string           `json:"habilidades,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
	AreaInteres           *string            `json:"areaInteres,omitempty" validate:"omitempty,max=100"`
	Ubicacion             *string            `json:"ubicacion,omitempty" validate:"omitempty,max=200"`
	FechaInicio           *time.Time         `json:"fechaInicio,omitempty"`
	FechaFin              *time.Time         `json:"fechaFin,omitempty"`
	DuracionHoras         *float64           `json:"duracionHoras,omitempty" validate:"omitempty,gte=0,lte=10000"`
	VoluntariosRequeridos *int               `json:"voluntariosRequeridos,omitempty" validate:"omitempty,gt=0,lte=100000"`
	Estado                *OpportunityStatus `json:"estado,omitempty" validate:"omitempty,oneof=Draft Active Paused Closed Completed"`
}
