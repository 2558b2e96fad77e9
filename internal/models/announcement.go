package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TargetMode selects how a broadcast audience is resolved
type TargetMode string

const (
	TargetAll      TargetMode = "all"
	TargetSpecific TargetMode = "specific"
	TargetCategory TargetMode = "category"
)

// Valid reports whether m is a known target mode
func (m TargetMode) Valid() bool {
	switch m {
	case TargetAll, TargetSpecific, TargetCategory:
		return true
	}
	return false
}

// BroadcastStatus summarizes a broadcast's delivery outcome
type BroadcastStatus string

const (
	BroadcastCompleted      BroadcastStatus = "completed"
	BroadcastPartialFailure BroadcastStatus = "partial_failure"
	BroadcastFailed         BroadcastStatus = "failed"
)

// Announcement is the write-once log entry for one admin broadcast.
// Its ID doubles as the broadcast id stamped on every delivered notification.
type Announcement struct {
	ID            string          `gorm:"primaryKey;size:64" json:"id"`
	AdminID       string          `gorm:"size:64;not null;index" json:"admin_id"`
	Title         string          `gorm:"not null" json:"title"`
	Description   string          `gorm:"type:text" json:"description"`
	Link          string          `json:"link"`
	TargetMode    TargetMode      `gorm:"size:16;not null" json:"target_mode"`
	TargetUserIDs []string        `gorm:"serializer:json" json:"target_user_ids,omitempty"`
	Category      string          `gorm:"size:64" json:"category,omitempty"`
	TotalTargeted int             `json:"total_targeted"`
	SuccessCount  int             `json:"success_count"`
	ErrorCount    int             `json:"error_count"`
	Status        BroadcastStatus `gorm:"size:32;not null" json:"status"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

func (a *Announcement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
