package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/simplehr/simplehr-backend-go/internal/handler/http/response"
	"github.com/simplehr/simplehr-backend-go/internal/pkg/validator"
)

// pathID reads the {id} path param. An id that is not a UUID cannot match any
// row, so it answers notFound without reaching the database.
func pathID(w http.ResponseWriter, r *http.Request, notFound string) (string, bool) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.NotFound(w, notFound)
		return "", false
	}
	return id, true
}

// employeeIDParam reads the optional ?employeeId= filter.
func employeeIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID != "" && !validator.IsValidUUID(employeeID) {
		response.BadRequest(w, "Invalid employee ID", map[string]string{"employeeId": "must be a valid UUID"})
		return "", false
	}
	return employeeID, true
}
