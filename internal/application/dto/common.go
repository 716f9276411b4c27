package dto

// PageQuery paginación de listados (?page=&page_size=).
type PageQuery struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page          int   `json:"page"`
	PageSize      int   `json:"page_size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

// NewPageResponse calcula el total de páginas.
func NewPageResponse(page, pageSize int, total int64) PageResponse {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PageResponse{Page: page, PageSize: pageSize, TotalElements: total, TotalPages: pages}
}

// ErrorResponse cuerpo de error HTTP. Requested/Available sólo en INSUFFICIENT_INVENTORY.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Requested *int   `json:"requested,omitempty"`
	Available *int   `json:"available,omitempty"`
}

// LoginRequest body para POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token y datos básicos del actor.
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}
