package dto

// ErrorResponse cuerpo de error HTTP. Label lleva la etiqueta del rol contable faltante en
// los errores de configuración.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Label   string `json:"label,omitempty"`
}

// HealthResponse estado del servicio.
type HealthResponse struct {
	Status string `json:"status"`
	App    string `json:"app"`
}
