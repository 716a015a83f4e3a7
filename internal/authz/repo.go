package authz

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
)

// ProfileRepository looks up the stored role for a user.
type ProfileRepository interface {
	FindRole(ctx context.Context, userID uuid.UUID) (enums.UserRole, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository builds a profiles repository bound to the provided DB.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindRole(ctx context.Context, userID uuid.UUID) (enums.UserRole, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Select("role").
		Where("id = ?", userID).
		First(&profile).Error
	if err != nil {
		return "", err
	}
	return profile.Role, nil
}
