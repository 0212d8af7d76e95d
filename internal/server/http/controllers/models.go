package controllers

import (
	"net/http"

	"github.com/rzbill/partysearch/internal/reference"
)

// ModelsController serves the static reference catalog that viewers use to
// resolve map and profession ids.
type ModelsController struct {
	catalog *reference.Catalog
}

// NewModelsController creates a models controller over catalog.
func NewModelsController(catalog *reference.Catalog) *ModelsController {
	return &ModelsController{catalog: catalog}
}

// RegisterRoutes registers /models/maps and /models/professions.
func (c *ModelsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /models/maps", c.handleMaps)
	mux.HandleFunc("GET /models/professions", c.handleProfessions)
}

func (c *ModelsController) handleMaps(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, c.catalog.Maps())
}

func (c *ModelsController) handleProfessions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, c.catalog.Professions())
}
