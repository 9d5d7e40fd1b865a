package response

import "time"

type UploadResponse struct {
	Message    string `json:"message"`
	MaterialID string `json:"material_id"`
	Filename   string `json:"filename"`
	ObjectKey  string `json:"object_key"`
}

type MaterialResponse struct {
	ID               string            `json:"id"`
	FileName         string            `json:"file_name"`
	FileType         string            `json:"file_type"`
	FileSize         int64             `json:"file_size"`
	UploadedAt       time.Time         `json:"uploaded_at"`
	IsProcessed      bool              `json:"is_processed"`
	ProcessingStatus string            `json:"processing_status"`
	Uploader         *UserInfoResponse `json:"uploader"`
}

type ListMaterialsResponse struct {
	Materials []MaterialResponse `json:"materials"`
}

type RefreshCourseResponse struct {
	Status             string `json:"status"`
	Message            string `json:"message"`
	TotalMaterials     int    `json:"total_materials"`
	ProcessedMaterials int    `json:"processed_materials"`
}

type ProcessMaterialsResponse struct {
	Message        string `json:"message"`
	ProcessedCount int    `json:"processed_count"`
}

type DownloadLinkResponse struct {
	URL string `json:"url"`
}
