package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseCode   string         `gorm:"size:50;uniqueIndex" json:"course_code"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	InstructorID *uuid.UUID     `gorm:"type:uuid" json:"instructor_id,omitempty"`
	Semester     string         `gorm:"size:50" json:"semester"`
	Year         int            `json:"year"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	IsActive     bool           `gorm:"not null;default:true;index" json:"is_active"`
	Meta         datatypes.JSON `gorm:"type:jsonb" json:"meta,omitempty"`

	Instructor *User `gorm:"foreignKey:InstructorID" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
