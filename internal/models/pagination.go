package models

import "math"

const (
	DefaultPage = 1
)

// Pagination describe una página de resultados
type Pagination struct {
	Current    int   `json:"current"`
	Total      int64 `json:"total"`
	TotalItems int64 `json:"totalItems"`
	Limit      int   `json:"limit"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Page normaliza page/limit; limit sin cota superior
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size, defaultSize int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if size < 1 {
		size = defaultSize
	}
	return Page{Number: number, Size: size}
}

// Skip se calcula en int64 y satura en math.MaxInt64 para page/limit enormes
func (p Page) Skip() int64 {
	n, size := int64(p.Number)-1, int64(p.Size)
	if n <= 0 || size <= 0 {
		return 0
	}
	if n > math.MaxInt64/size {
		return math.MaxInt64
	}
	return n * size
}

func TotalPages(total int64, size int) int64 {
	if size <= 0 {
		return 1
	}
	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	return pages
}

func (p Page) Paginate(total int64) Pagination {
	return Pagination{
		Current:    p.Number,
		Total:      TotalPages(total, p.Size),
		TotalItems: total,
		Limit:      p.Size,
		HasNext:    p.Skip() < total && total-p.Skip() > int64(p.Size),
		HasPrev:    p.Number > 1,
	}
}
