package model

import (
	"time"
)

// Base contains common fields for stored records
type Base struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Pagination represents offset pagination parameters
type Pagination struct {
	Skip  int `json:"skip" form:"skip" binding:"omitempty,gte=0"`
	Limit int `json:"limit" form:"limit" binding:"omitempty,gte=1,lte=1000"`
}

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// Normalize fills the default limit.
func (p Pagination) Normalize() Pagination {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
