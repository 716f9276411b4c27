package entity

import "math"

// Límites de paginación. MaxPage mantiene el desplazamiento dentro de int32.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = math.MaxInt32 / MaxPageSize
)

// PageRequest página solicitada (1-based).
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize aplica valores por defecto y los topes de página y tamaño.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset desplazamiento SQL de la página ya normalizada.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Page resultado paginado con metadatos.
type Page[T any] struct {
	Items    []T   `json:"content"`
	Total    int64 `json:"total_elements"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// MapPage re-mapea el contenido conservando total, página y tamaño.
func MapPage[T, U any](p Page[T], items []U) Page[U] {
	return Page[U]{Items: items, Total: p.Total, Page: p.Page, PageSize: p.PageSize}
}
