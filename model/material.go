package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// File types are stored as the lowercased filename extension, dot included,
// so dispatching on either the column or the object key gives the same result.
type FileType string

const (
	FileTypePDF      FileType = ".pdf"
	FileTypeMarkdown FileType = ".md"
	FileTypeText     FileType = ".txt"
)

// MaterialMeta is the processing record attached to a material. Fields are
// pointers so that partial updates can be told apart from zero values; Merge
// folds a partial update into an existing record.
type MaterialMeta struct {
	TotalChunks    *int           `json:"total_chunks,omitempty"`
	AvgChunkLength *float64       `json:"avg_chunk_length,omitempty"`
	Error          *string        `json:"error,omitempty"`
	Diagnostics    map[string]any `json:"diagnostics,omitempty"`
}

// Merge returns a copy of m with the fields set on in applied over it.
// Unset fields on in leave the existing values untouched; Diagnostics keys
// are merged with in taking precedence.
func (m MaterialMeta) Merge(in MaterialMeta) MaterialMeta {
	out := m
	if in.TotalChunks != nil {
		out.TotalChunks = in.TotalChunks
	}
	if in.AvgChunkLength != nil {
		out.AvgChunkLength = in.AvgChunkLength
	}
	if in.Error != nil {
		out.Error = in.Error
	}
	if len(in.Diagnostics) > 0 {
		merged := make(map[string]any, len(m.Diagnostics)+len(in.Diagnostics))
		for k, v := range m.Diagnostics {
			merged[k] = v
		}
		for k, v := range in.Diagnostics {
			merged[k] = v
		}
		out.Diagnostics = merged
	}
	return out
}

func (m MaterialMeta) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MaterialMeta) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = MaterialMeta{}
		return nil
	case []byte:
		if len(v) == 0 {
			*m = MaterialMeta{}
			return nil
		}
		return json.Unmarshal(v, m)
	case string:
		if v == "" {
			*m = MaterialMeta{}
			return nil
		}
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported meta source type %T", src)
	}
}

// Ptr returns a pointer to v, for filling optional meta fields inline.
func Ptr[T any](v T) *T {
	return &v
}

type CourseMaterial struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"course_id"`
	UploadedBy       *uuid.UUID       `gorm:"type:uuid" json:"uploaded_by,omitempty"`
	FileName         string           `gorm:"size:255;not null" json:"file_name"`
	FileType         FileType         `gorm:"size:16" json:"file_type"`
	ObjectKey        string           `gorm:"size:512;index" json:"object_key"`
	FileSize         int64            `json:"file_size"`
	MimeType         string           `gorm:"size:128" json:"mime_type"`
	UploadedAt       time.Time        `gorm:"autoCreateTime" json:"uploaded_at"`
	IsProcessed      bool             `gorm:"not null;default:false" json:"is_processed"`
	ProcessingStatus ProcessingStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"processing_status"`
	Meta             MaterialMeta     `gorm:"type:jsonb" json:"meta"`

	Uploader *User `gorm:"foreignKey:UploadedBy" json:"-"`
}

func (CourseMaterial) TableName() string {
	return "course_materials"
}

func (m *CourseMaterial) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
