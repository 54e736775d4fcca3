package model

import "time"

// DefaultCriticalLevel applies when a resupply event creates a resource without one.
const DefaultCriticalLevel = 10

// Resource is a consumable tracked by the registry. CriticalLevel is advisory;
// stock may fall below it.
type Resource struct {
	ID            int64     `db:"id" json:"id"`
	ResourceType  string    `db:"resource_type" json:"resource_type"`
	CurrentStock  int       `db:"current_stock" json:"current_stock"`
	CriticalLevel int       `db:"critical_level" json:"critical_level"`
	LastUpdated   time.Time `db:"last_updated" json:"last_updated"`
	Location      *string   `db:"location" json:"location"`
}

// Scarce reports whether stock is at or below the critical level.
func (r Resource) Scarce() bool {
	return r.CurrentStock <= r.CriticalLevel
}

type UpsertResourceRequest struct {
	ResourceType  string  `json:"resource_type" binding:"required"`
	CurrentStock  *int    `json:"current_stock" binding:"required,min=0"`
	CriticalLevel *int    `json:"critical_level" binding:"omitempty,min=0"`
	Location      *string `json:"location"`
}
