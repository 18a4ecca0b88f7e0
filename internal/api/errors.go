package api

// errorPayload mirrors the failure body every mutating endpoint is expected
// to return on a non-2xx status.
type errorPayload struct {
	Error string `json:"error"`
}

// ActionError reports a server-rejected request. The operator-facing message
// is the server's error string verbatim when present, else the per-action
// fallback; no automatic retry happens at this layer.
type ActionError struct {
	StatusCode int
	Message    string
	Fallback   string
}

// Error returns the operator-facing failure message.
func (e *ActionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Fallback
}
