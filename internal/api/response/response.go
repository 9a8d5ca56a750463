package response

import (
	"encoding/json"
	"net/http"
)

type collectionEnvelope struct {
	Data any            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

type errorBody struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error"`
}

type PaginationMeta struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
}

// JSON writes v as the response body with status 200.
func JSON(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, v)
}

func Collection(w http.ResponseWriter, data any, meta PaginationMeta) {
	WriteJSON(w, http.StatusOK, collectionEnvelope{Data: data, Meta: meta})
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorBody{Error: message})
}

// Failure writes {"message": message, "error": code}.
func Failure(w http.ResponseWriter, status int, message, code string) {
	WriteJSON(w, status, errorBody{Message: message, Error: code})
}

func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
