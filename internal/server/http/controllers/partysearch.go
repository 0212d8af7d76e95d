package controllers

import (
	"net/http"
	"strconv"

	"github.com/rzbill/partysearch/internal/feed"
	"github.com/rzbill/partysearch/internal/runtime"
	partysearchsvc "github.com/rzbill/partysearch/internal/services/partysearch"
)

// maxBodyBytes bounds a submission body.
const maxBodyBytes = 1 << 20

// PartySearchController serves submissions and snapshot reads.
type PartySearchController struct {
	rt      *runtime.Runtime
	svc     *partysearchsvc.Service
	limiter *limiterPool
}

// NewPartySearchController creates a party search controller. Submissions are
// rate limited per client address when the config enables it.
func NewPartySearchController(rt *runtime.Runtime, svc *partysearchsvc.Service) *PartySearchController {
	rl := rt.Config().RateLimit
	// Load rejects bad entries; a config built in code that still has them
	// trusts no proxy.
	trusted, _ := rl.TrustedPrefixes()
	return &PartySearchController{
		rt:      rt,
		svc:     svc,
		limiter: newLimiterPool(rl.RPS, rl.Burst, trusted),
	}
}

// RegisterRoutes registers:
// - POST /party-search
// - GET  /party-search
// - GET  /party-search/list
// - GET  /party-search/maps/{map}
// - GET  /party-search/characters/{sender}
func (c *PartySearchController) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /party-search", c.limiter.middleware(c.rt.Metrics(), http.HandlerFunc(c.handlePost)))
	mux.HandleFunc("GET /party-search", c.handleQuery)
	mux.HandleFunc("GET /party-search/list", c.handleList)
	mux.HandleFunc("GET /party-search/maps/{map}", c.handleByMap)
	mux.HandleFunc("GET /party-search/characters/{sender}", c.handleBySender)
}

func (c *PartySearchController) handlePost(w http.ResponseWriter, r *http.Request) {
	req, err := partysearchsvc.DecodePostRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeFailure(w, err)
		return
	}
	res, err := c.svc.Post(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, postResp{Message: res.Message, Changed: res.Changed, Deleted: res.Deleted, Upserted: res.Upserted})
}

// handleQuery returns the parties of one partition as a JSON array.
func (c *PartySearchController) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := c.svc.Query(r.Context(), partysearchsvc.QueryRequest{
		Campaign:  q.Get("campaign"),
		Continent: q.Get("continent"),
		Region:    q.Get("region"),
		Map:       q.Get("map"),
		District:  q.Get("district"),
		Language:  q.Get("language"),
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	parties := make([]feed.Party, 0, len(entries))
	for _, e := range entries {
		parties = append(parties, feed.PartyFromEntry(e))
	}
	writeJSON(w, parties)
}

// handleList returns the bulk baseline in live feed frame shape.
func (c *PartySearchController) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, feed.FromAggregates(c.svc.List(r.Context())...))
}

func (c *PartySearchController) handleByMap(w http.ResponseWriter, r *http.Request) {
	mapID, err := strconv.Atoi(r.PathValue("map"))
	if err != nil {
		writeFailure(w, &partysearchsvc.Failure{Kind: partysearchsvc.FailureInvalidMap, Message: "map must be a number"})
		return
	}
	writeJSON(w, feed.FromAggregates(c.svc.ByMap(r.Context(), mapID)...))
}

func (c *PartySearchController) handleBySender(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, feed.FromAggregates(c.svc.BySender(r.Context(), r.PathValue("sender"))...))
}
