package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Disaster represents a tracked disaster event
// DB: disasters
type Disaster struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title        string         `gorm:"column:title;size:255;not null" json:"title"`
	LocationName string         `gorm:"column:location_name;size:500;not null" json:"location_name"`
	Location     *string        `gorm:"column:location;type:text" json:"location,omitempty"` // POINT(lng lat)
	Description  string         `gorm:"column:description;type:text;not null" json:"description"`
	Tags         datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags,omitempty"`
	OwnerID      string         `gorm:"column:owner_id;size:100;not null;index:idx_disasters_owner" json:"owner_id"`
	AuditTrail   datatypes.JSON `gorm:"column:audit_trail;type:jsonb" json:"audit_trail,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null;index:idx_disasters_created,sort:desc" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`

	// Transient distance in km, set by the geospatial engine only
	Distance float64 `gorm:"-" json:"distance,omitempty"`

	// Relations
	Reports   []Report   `gorm:"foreignKey:DisasterID" json:"reports,omitempty"`
	Resources []Resource `gorm:"foreignKey:DisasterID" json:"resources,omitempty"`
}

func (Disaster) TableName() string {
	return "disasters"
}

// AuditEvent is one entry in a disaster's audit trail
type AuditEvent struct {
	Action    string `json:"action"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
	Details   string `json:"details"`
}
