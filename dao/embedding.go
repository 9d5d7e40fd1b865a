package dao

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Vansh983/ai-ta/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 100

type EmbeddingDAO struct {
	db *gorm.DB
}

func NewEmbeddingDAO(db *gorm.DB) *EmbeddingDAO {
	return &EmbeddingDAO{db: db}
}

// CreateEmbeddings bulk-inserts chunk embeddings for a material. The chunk
// index of each row is its position in chunks.
func (d *EmbeddingDAO) CreateEmbeddings(ctx context.Context, materialID, courseID uuid.UUID, chunks []model.EmbeddedChunk) error {
	return insertEmbeddings(d.db.WithContext(ctx), materialID, courseID, chunks)
}

// CompleteIngestion persists a material's chunk embeddings and flips it to
// completed in a single transaction, so a partial failure can never leave
// the material completed with missing chunks.
func (d *EmbeddingDAO) CompleteIngestion(ctx context.Context, materialID, courseID uuid.UUID, chunks []model.EmbeddedChunk, meta model.MaterialMeta) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := insertEmbeddings(tx, materialID, courseID, chunks); err != nil {
			return err
		}

		var current model.CourseMaterial
		if err := tx.Where("id = ?", materialID).First(&current).Error; err != nil {
			return err
		}
		return tx.Model(&model.CourseMaterial{}).
			Where("id = ?", materialID).
			Updates(map[string]any{
				"is_processed":      true,
				"processing_status": model.StatusCompleted,
				"meta":              current.Meta.Merge(meta),
			}).Error
	})
}

// SimilaritySearch returns the k stored chunks closest to vec by cosine
// distance, scoped to one course. Distance ties break by insertion order.
func (d *EmbeddingDAO) SimilaritySearch(ctx context.Context, courseID uuid.UUID, vec []float32, k int) ([]model.VectorEmbedding, error) {
	var results []model.VectorEmbedding
	if err := d.db.WithContext(ctx).
		Preload("Material").
		Where("course_id = ?", courseID).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "embedding <=> ?, created_at",
			Vars: []interface{}{pgvector.NewVector(vec)},
		}}).
		Limit(k).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (d *EmbeddingDAO) DeleteMaterialEmbeddings(ctx context.Context, materialID uuid.UUID) error {
	return deleteEmbeddings(d.db.WithContext(ctx), materialID)
}

// ResetMaterial removes a material's embeddings and returns it to pending in
// a single transaction, so a crashed reset cannot strand stale chunks behind
// a pending material.
func (d *EmbeddingDAO) ResetMaterial(ctx context.Context, materialID uuid.UUID) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteEmbeddings(tx, materialID); err != nil {
			return err
		}
		return tx.Model(&model.CourseMaterial{}).
			Where("id = ?", materialID).
			Updates(map[string]any{
				"is_processed":      false,
				"processing_status": model.StatusPending,
			}).Error
	})
}

// Statistics reports how many embeddings a course has and how many distinct
// materials they came from.
func (d *EmbeddingDAO) Statistics(ctx context.Context, courseID uuid.UUID) (*model.EmbeddingStats, error) {
	var stats model.EmbeddingStats
	if err := d.db.WithContext(ctx).Model(&model.VectorEmbedding{}).
		Where("course_id = ?", courseID).
		Count(&stats.TotalEmbeddings).Error; err != nil {
		return nil, err
	}
	if err := d.db.WithContext(ctx).Model(&model.VectorEmbedding{}).
		Where("course_id = ?", courseID).
		Distinct("material_id").
		Count(&stats.TotalMaterials).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func insertEmbeddings(tx *gorm.DB, materialID, courseID uuid.UUID, chunks []model.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	rows := make([]model.VectorEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		metaJSON, err := json.Marshal(chunk.Meta)
		if err != nil {
			return fmt.Errorf("failed to marshal chunk meta: %v", err)
		}
		rows = append(rows, model.VectorEmbedding{
			MaterialID: materialID,
			CourseID:   courseID,
			ChunkText:  chunk.Text,
			ChunkIndex: i,
			Embedding:  pgvector.NewVector(chunk.Vector),
			Meta:       datatypes.JSON(metaJSON),
		})
	}
	return tx.CreateInBatches(&rows, insertBatchSize).Error
}

func deleteEmbeddings(tx *gorm.DB, materialID uuid.UUID) error {
	return tx.Where("material_id = ?", materialID).
		Delete(&model.VectorEmbedding{}).Error
}
