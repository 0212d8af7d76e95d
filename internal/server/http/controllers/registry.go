package controllers

import (
	"net/http"

	"github.com/rzbill/partysearch/internal/runtime"
	partysearchsvc "github.com/rzbill/partysearch/internal/services/partysearch"
	logpkg "github.com/rzbill/partysearch/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes
// and manages the lifecycle of individual controllers.
type ControllerRegistry struct {
	general     *GeneralController
	partySearch *PartySearchController
	liveFeed    *LiveFeedController
	models      *ModelsController
}

// NewControllerRegistry creates a new controller registry.
func NewControllerRegistry(rt *runtime.Runtime, svc *partysearchsvc.Service, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general:     NewGeneralController(rt),
		partySearch: NewPartySearchController(rt, svc),
		liveFeed:    NewLiveFeedController(rt, logger),
		models:      NewModelsController(rt.Catalog()),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.partySearch.RegisterRoutes(mux)
	r.liveFeed.RegisterRoutes(mux)
	r.models.RegisterRoutes(mux)
}
