package response

import "time"

type BannerResponse struct {
	Message  string `json:"message"`
	Status   string `json:"status"`
	Database string `json:"database"`
	Storage  string `json:"storage"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Storage   string    `json:"storage"`
	Timestamp time.Time `json:"timestamp"`
}
