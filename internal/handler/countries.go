package handler

import (
	"net/http"

	"github.com/orbitchat-ai/demo-platform/internal/countries"
)

// CountryHandler serves the sign-in form's country metadata.
type CountryHandler struct {
	client *countries.Client
}

// NewCountryHandler creates a country handler.
func NewCountryHandler(client *countries.Client) *CountryHandler {
	return &CountryHandler{client: client}
}

// List handles GET /api/v1/countries. Upstream failures are invisible
// to the caller; the fallback list is served instead.
func (h *CountryHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"countries": h.client.List(r.Context()),
	})
}
