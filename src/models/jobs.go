package models

import (
	"time"
	"vrs/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobTask struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`

	Name       string      `json:"name"`
	JobType    string      `json:"job_type"`
	RunsAt     time.Time   `json:"runs_at"`
	PayloadID  string      `gorm:"index" json:"-"`
	Payload    types.JSONB `gorm:"type:jsonb" json:"-"`
	Source     string      `json:"source"`
	SourceType string      `json:"-"`
	SourceID   uint        `gorm:"index" json:"source_id"`
	Status     string      `gorm:"default:'pending'" json:"status"`
	Topic      string      `json:"topic"`

	types.Timestamps
}

func (j *JobTask) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
