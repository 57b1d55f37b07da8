package models

import "math"

// APIResponse is the envelope every endpoint answers with
type APIResponse struct {
	Success bool        `json:"success"`          // false on any failure
	Message string      `json:"message"`          // Human-readable message
	Data    interface{} `json:"data"`             // Any response data (can be map, struct, list, etc.)
	Errors  []APIError  `json:"errors,omitempty"` // Detailed error info (empty on success)
}

// APIError holds detailed error information
type APIError struct {
	Type    string `json:"type,omitempty"`    // e.g., "ValidationError", "DatabaseError"
	Details string `json:"details,omitempty"` // More context about the error
	Field   string `json:"field,omitempty"`   // For validation errors (which field failed)
}

// PagedResult wraps one page of a listing
type PagedResult[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrevious"`
}

// Pagination is the page/pageSize pair parsed from query strings
type Pagination struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"pageSize" json:"pageSize"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (Page-1)*PageSize inside int
	MaxPage = math.MaxInt / MaxPageSize
)

// Normalize clamps the values to sane defaults
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Paginate slices items into the requested page
func Paginate[T any](items []T, p Pagination) PagedResult[T] {
	p = p.Normalize()
	total := len(items)
	totalPages := (total + p.PageSize - 1) / p.PageSize
	offset := (p.Page - 1) * p.PageSize

	page := []T{}
	if offset < total {
		end := offset + p.PageSize
		if end > total {
			end = total
		}
		page = items[offset:end]
	}

	return PagedResult[T]{
		Items:      page,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
