package utils

import (
	"encoding/json"
	"net/http"
)

// Json пишет v в ответ как JSON с заданным статусом.
func Json(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// Err пишет ошибку в ответ как {"error": "..."}.
func Err(w http.ResponseWriter, status int, err error) error {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	return Json(w, status, errorResponse{Error: msg})
}
