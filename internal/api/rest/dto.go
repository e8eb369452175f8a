package rest

// DeleteMediaRequest is the body of DELETE /api/v1/media.
// URLs are public URLs of stored objects and are resolved to keys before deletion.
type DeleteMediaRequest struct {
	Keys []string `json:"keys"`
	URLs []string `json:"urls,omitempty"`
}

// DeleteMediaResponse reports the outcome of a deletion
type DeleteMediaResponse struct {
	Success    bool     `json:"success"`
	Deleted    []string `json:"deleted"`
	Missing    []string `json:"missing,omitempty"`
	FailedKeys []string `json:"failed_keys"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Storage    string `json:"storage,omitempty"`
	Transcoder string `json:"transcoder"`
}
