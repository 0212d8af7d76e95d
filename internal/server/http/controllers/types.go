package controllers

// Common request/response types for HTTP controllers

// errorResp is the body of every non-2xx JSON response.
type errorResp struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// postResp acknowledges an accepted submission.
type postResp struct {
	Message  string `json:"message"`
	Changed  bool   `json:"changed"`
	Deleted  int    `json:"deleted"`
	Upserted int    `json:"upserted"`
}

// healthResp is the /v1/healthz body.
type healthResp struct {
	Status      string `json:"status"`
	Subscribers int    `json:"subscribers"`
}
