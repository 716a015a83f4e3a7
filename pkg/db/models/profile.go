package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/anvitsharma/trendora-backend/pkg/enums"
)

// Profile is the role record kept alongside the identity provider's users.
// The table may legitimately be absent in degraded environments; callers must
// treat a missing table as "fall back to the token claim", never as admin.
type Profile struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email     string         `gorm:"column:email;type:text;not null"`
	FullName  *string        `gorm:"column:full_name"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
