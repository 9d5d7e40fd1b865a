package dao

import (
	"context"
	"errors"

	"github.com/Vansh983/ai-ta/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseDAO struct {
	db *gorm.DB
}

func NewCourseDAO(db *gorm.DB) *CourseDAO {
	return &CourseDAO{db: db}
}

func (d *CourseDAO) Create(ctx context.Context, course *model.Course) error {
	return d.db.WithContext(ctx).Create(course).Error
}

func (d *CourseDAO) ByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	if err := d.db.WithContext(ctx).
		Preload("Instructor").
		Where("id = ?", id).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (d *CourseDAO) ByCode(ctx context.Context, code string) (*model.Course, error) {
	var course model.Course
	if err := d.db.WithContext(ctx).
		Where("course_code = ?", code).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (d *CourseDAO) Active(ctx context.Context, offset, limit int) ([]model.Course, error) {
	var courses []model.Course
	if err := d.db.WithContext(ctx).
		Preload("Instructor").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}
