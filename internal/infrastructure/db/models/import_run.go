package models

import "time"

type ImportRun struct {
	ID             string             `gorm:"type:uuid;primaryKey"`
	FileName       string             `gorm:"type:text;not null"`
	Roles          []string           `gorm:"type:jsonb;serializer:json;not null"`
	Status         string             `gorm:"type:text;not null"`
	ProcessedCount int64              `gorm:"not null;default:0"`
	ImportedCount  int64              `gorm:"not null;default:0"`
	SkippedCount   int64              `gorm:"not null;default:0"`
	FailedCount    int64              `gorm:"not null;default:0"`
	Failures       []ImportRunFailure `gorm:"type:jsonb;serializer:json;not null"`
	ErrorMessage   *string            `gorm:"type:text"`
	StartedAt      time.Time          `gorm:"not null"`
	FinishedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (ImportRun) TableName() string {
	return "import_runs"
}

type ImportRunFailure struct {
	Row       int64  `json:"row"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Reason    string `json:"reason"`
}
