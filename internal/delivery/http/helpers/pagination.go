package helpers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"eventhub/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the query string. Missing values take the
// defaults, page_size above MaxPageSize is clamped, and non-positive or non-numeric values are
// rejected.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	page, err := positiveQueryInt(r, "page", DefaultPage)
	if err != nil {
		return domain.PaginationParams{}, err
	}
	pageSize, err := positiveQueryInt(r, "page_size", DefaultPageSize)
	if err != nil {
		return domain.PaginationParams{}, err
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return domain.PaginationParams{Page: page, PageSize: pageSize}, nil
}

func positiveQueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return v, nil
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds PaginationMeta from the current page, page size, and total count.
func NewPaginationMeta(params domain.PaginationParams, total int) PaginationMeta {
	totalPages := 0
	if params.PageSize > 0 {
		totalPages = (total + params.PageSize - 1) / params.PageSize
	}
	return PaginationMeta{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// PageResponse is the data payload of a paginated list.
type PageResponse[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// NewPageResponse wraps one page of items with its metadata.
func NewPageResponse[T any](items []T, params domain.PaginationParams, total int) PageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{Items: items, Pagination: NewPaginationMeta(params, total)}
}
