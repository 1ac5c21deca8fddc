package model

type RequestLog struct {
	RequestID string `json:"request_id"`
	Path      string `json:"path"`
	Method    string `json:"method"`
	Body      string `json:"body,omitempty"`
	IPHash    string `json:"ip_hash,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Version   string `json:"version,omitempty"`
	RequestTS string `json:"request_ts"`
	LoggedAt  string `json:"logged_at"`
}
