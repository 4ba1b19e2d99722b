package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource represents an aid resource (shelter, food, medical, ...)
// mapped to a disaster
// DB: resources
type Resource struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DisasterID   uuid.UUID `gorm:"column:disaster_id;type:uuid;not null;index:idx_resources_disaster" json:"disaster_id"`
	Name         string    `gorm:"column:name;size:255;not null" json:"name"`
	LocationName string    `gorm:"column:location_name;size:500;not null" json:"location_name"`
	Location     *string   `gorm:"column:location;type:text" json:"location,omitempty"` // POINT(lng lat)
	Type         string    `gorm:"column:type;size:50;not null;index:idx_resources_type" json:"type"`
	CreatedBy    string    `gorm:"column:created_by;size:100;not null" json:"created_by"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" json:"created_at"`

	// Transient distance in km, set by the geospatial engine only
	Distance float64 `gorm:"-" json:"distance,omitempty"`

	// Relations
	Disaster *Disaster `gorm:"foreignKey:DisasterID" json:"disaster,omitempty"`
}

func (Resource) TableName() string {
	return "resources"
}
