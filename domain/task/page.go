package task

import (
	"math"
	"strings"
)

// Pagination defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortOrder orders a listing by one field.
type SortOrder struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// DefaultSort lists the newest tasks first.
var DefaultSort = []SortOrder{{Field: "createdAt", Desc: true}}

// SortColumns maps the sortable wire field names to column names.
var SortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
}

// PageRequest selects one page of a listing.
type PageRequest struct {
	Page int         `json:"page"`
	Size int         `json:"size"`
	Sort []SortOrder `json:"sort,omitempty"`
}

// Normalize clamps out-of-range values to the defaults and drops sort orders
// on unknown fields. Page is capped so Offset stays within an int32.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 || r.Size > MaxPageSize {
		r.Size = DefaultPageSize
	}
	if maxPage := math.MaxInt32 / r.Size; r.Page > maxPage {
		r.Page = maxPage
	}
	sort := make([]SortOrder, 0, len(r.Sort))
	for _, o := range r.Sort {
		if _, ok := SortColumns[o.Field]; ok {
			sort = append(sort, o)
		}
	}
	if len(sort) == 0 {
		sort = DefaultSort
	}
	r.Sort = sort
	return r
}

// Offset returns the number of rows to skip.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// ParseSort reads "field,dir" strings such as "title,asc" or "createdAt".
// The direction defaults to ascending.
func ParseSort(values []string) []SortOrder {
	var out []SortOrder
	for _, v := range values {
		parts := strings.Split(v, ",")
		field := strings.TrimSpace(parts[0])
		if field == "" {
			continue
		}
		order := SortOrder{Field: field}
		if len(parts) > 1 {
			order.Desc = strings.EqualFold(strings.TrimSpace(parts[1]), "desc")
		}
		out = append(out, order)
	}
	return out
}

// Filter narrows a listing.
type Filter struct {
	Status Status `json:"status,omitempty"`
}

// Page is one slice of a listing plus the metadata clients page with.
type Page struct {
	Content          []Task `json:"content"`
	TotalElements    int64  `json:"totalElements"`
	TotalPages       int    `json:"totalPages"`
	Number           int    `json:"number"`
	Size             int    `json:"size"`
	NumberOfElements int    `json:"numberOfElements"`
	First            bool   `json:"first"`
	Last             bool   `json:"last"`
}

// NewPage assembles a Page for req from its content and the total row count.
func NewPage(content []Task, req PageRequest, total int64) Page {
	if content == nil {
		content = []Task{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page{
		Content:          content,
		TotalElements:    total,
		TotalPages:       pages,
		Number:           req.Page,
		Size:             req.Size,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page+1 >= pages,
	}
}
