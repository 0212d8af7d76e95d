package controllers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/netip"
	"strings"

	partysearchsvc "github.com/rzbill/partysearch/internal/services/partysearch"
)

// Helper functions for common HTTP responses

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResp{Error: message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeFailure maps a service error onto a status code. Errors that are not
// a *Failure are reported as 500.
func writeFailure(w http.ResponseWriter, err error) {
	var f *partysearchsvc.Failure
	if !errors.As(err, &f) {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(failureStatus(f.Kind))
	_ = json.NewEncoder(w).Encode(errorResp{Error: f.Message, Kind: f.Kind.String()})
}

func failureStatus(kind partysearchsvc.FailureKind) int {
	switch {
	case kind.Invalid():
		return http.StatusBadRequest
	case kind == partysearchsvc.FailureEntriesNotFound:
		return http.StatusNotFound
	case kind == partysearchsvc.FailureUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// clientIP returns the address a request is attributed to. X-Forwarded-For
// is only read when the direct peer is a trusted proxy; the hops are then
// walked from the right and the first untrusted one wins.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	if !isTrusted(peer, trusted) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrusted(hop, trusted) {
			return hop
		}
		peer = hop
	}
	return peer
}

func isTrusted(addr string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	a, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
