package models

// Health is the GET /health payload.
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	Env       string `json:"env"`
}
