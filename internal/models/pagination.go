package models

import "strings"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ListParams carries the paging and sorting options every list endpoint accepts
type ListParams struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// Normalize clamps page and limit and lowercases the sort order
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	p.SortOrder = strings.ToLower(p.SortOrder)
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

// Offset is the row offset of the current page
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta is the meta block of a list response
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPageMeta builds list metadata from a normalized ListParams
func NewPageMeta(total int, p ListParams) PageMeta {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return PageMeta{Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}
