package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VectorEmbedding struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID       `gorm:"type:uuid;not null;index" json:"material_id"`
	CourseID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"course_id"`
	ChunkText  string          `gorm:"type:text;not null" json:"chunk_text"`
	ChunkIndex int             `gorm:"not null" json:"chunk_index"`
	Embedding  pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	Meta       datatypes.JSON  `gorm:"type:jsonb" json:"meta,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`

	Material *CourseMaterial `gorm:"foreignKey:MaterialID" json:"-"`
}

func (VectorEmbedding) TableName() string {
	return "vector_embeddings"
}

func (e *VectorEmbedding) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ChunkMeta is the per-chunk record stored alongside each embedding row.
type ChunkMeta struct {
	ChunkLength int `json:"chunk_length"`
	WordCount   int `json:"word_count"`
}

// EmbeddedChunk is a chunk that survived embedding, ready to be persisted.
// Its position in the slice handed to the store becomes the chunk index.
type EmbeddedChunk struct {
	Text   string
	Vector []float32
	Meta   ChunkMeta
}

type EmbeddingStats struct {
	TotalEmbeddings int64 `json:"total_embeddings"`
	TotalMaterials  int64 `json:"total_materials"`
}
