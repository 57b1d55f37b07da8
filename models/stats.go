package models

// AdminStats is the body of GET /admin/stats
type AdminStats struct {
	TotalUsuarios             int                       `json:"totalUsuarios"`
	UsuariosPorRol            map[UserRole]int          `json:"usuariosPorRol"`
	UsuariosPorEstado         map[UserStatus]int        `json:"usuariosPorEstado"`
	TotalOrganizaciones       int                       `json:"totalOrganizaciones"`
	OrganizacionesVerificadas int                       `json:"organizacionesVerificadas"`
	OportunidadesPorEstado    map[OpportunityStatus]int `json:"oportunidadesPorEstado"`
	AplicacionesPorEstado     map[ApplicationStatus]int `json:"aplicacionesPorEstado"`
	HorasVoluntariadoTotal    float64                   `json:"horasVoluntariadoTotal"`
	DonacionesTotal           Money                     `json:"donacionesTotal"`
	BadgesOtorgados           int                       `json:"badgesOtorgados"`
}
