package models

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Code      string      `json:"code"`
	Image     string      `json:"image"`
	CreatedBy uuid.UUID   `json:"created_by"`
	Members   []uuid.UUID `json:"members"`
	CreatedAt time.Time   `json:"created_at"`
}

// GroupDetails resolves member and creator IDs to display fields.
type GroupDetails struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Code      string        `json:"code"`
	Image     string        `json:"image"`
	CreatedBy UserProfile   `json:"created_by"`
	Members   []UserProfile `json:"members"`
	CreatedAt time.Time     `json:"created_at"`
}
