package dao

import (
	"context"
	"errors"

	"github.com/Vansh983/ai-ta/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialDAO struct {
	db *gorm.DB
}

func NewMaterialDAO(db *gorm.DB) *MaterialDAO {
	return &MaterialDAO{db: db}
}

func (d *MaterialDAO) Create(ctx context.Context, material *model.CourseMaterial) error {
	return d.db.WithContext(ctx).Create(material).Error
}

func (d *MaterialDAO) ByID(ctx context.Context, id uuid.UUID) (*model.CourseMaterial, error) {
	var material model.CourseMaterial
	if err := d.db.WithContext(ctx).
		Where("id = ?", id).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &material, nil
}

func (d *MaterialDAO) ByCourse(ctx context.Context, courseID uuid.UUID, processedOnly bool) ([]model.CourseMaterial, error) {
	q := d.db.WithContext(ctx).
		Preload("Uploader").
		Where("course_id = ?", courseID)
	if processedOnly {
		q = q.Where("is_processed = ?", true)
	}

	var materials []model.CourseMaterial
	if err := q.Order("uploaded_at DESC").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// Unprocessed returns materials awaiting ingestion, oldest first. Materials
// marked processing are in flight and left alone.
func (d *MaterialDAO) Unprocessed(ctx context.Context, limit int) ([]model.CourseMaterial, error) {
	if limit <= 0 {
		limit = 100
	}
	var materials []model.CourseMaterial
	if err := d.db.WithContext(ctx).
		Where("is_processed = ?", false).
		Where("processing_status IN ?", []model.ProcessingStatus{model.StatusPending, model.StatusFailed}).
		Order("uploaded_at ASC").
		Limit(limit).
		Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (d *MaterialDAO) SetObjectKey(ctx context.Context, id uuid.UUID, key string) error {
	return d.db.WithContext(ctx).Model(&model.CourseMaterial{}).
		Where("id = ?", id).
		Update("object_key", key).Error
}

// UpdateStatus moves a material through the processing state machine.
// processed and meta are optional; meta is merged into the existing record
// rather than replacing it.
func (d *MaterialDAO) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ProcessingStatus, processed *bool, meta *model.MaterialMeta) error {
	updates := map[string]any{"processing_status": status}
	if processed != nil {
		updates["is_processed"] = *processed
	}
	if meta == nil {
		return d.db.WithContext(ctx).Model(&model.CourseMaterial{}).
			Where("id = ?", id).
			Updates(updates).Error
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.CourseMaterial
		if err := tx.Where("id = ?", id).First(&current).Error; err != nil {
			return err
		}
		updates["meta"] = current.Meta.Merge(*meta)
		return tx.Model(&model.CourseMaterial{}).
			Where("id = ?", id).
			Updates(updates).Error
	})
}
