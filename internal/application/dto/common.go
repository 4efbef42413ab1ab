package dto

// ErrorResponse respuesta de error de la API: código estable + mensaje legible.
// Nunca expone texto crudo de la capa de persistencia.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
