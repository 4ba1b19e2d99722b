package models

import (
	"time"

	"github.com/google/uuid"
)

// Report verification statuses
const (
	ReportPending  = "pending"
	ReportVerified = "verified"
	ReportRejected = "rejected"
)

// Report represents a citizen report attached to a disaster
// DB: reports
type Report struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DisasterID         uuid.UUID `gorm:"column:disaster_id;type:uuid;not null;index:idx_reports_disaster" json:"disaster_id"`
	UserID             string    `gorm:"column:user_id;size:100;not null" json:"user_id"`
	Content            string    `gorm:"column:content;type:text;not null" json:"content"`
	ImageURL           *string   `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	VerificationStatus string    `gorm:"column:verification_status;size:20;not null;default:pending;index:idx_reports_status" json:"verification_status"`
	CreatedAt          time.Time `gorm:"column:created_at;not null;index:idx_reports_created,sort:desc" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at;not null" json:"updated_at"`

	// Relations
	Disaster *Disaster `gorm:"foreignKey:DisasterID" json:"disaster,omitempty"`
}

func (Report) TableName() string {
	return "reports"
}
