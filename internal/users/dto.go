package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/refriproject/refri-backend/pkg/db/models"
)

// UserDTO is the API-facing user shape. The password hash never leaves the
// service layer.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromModel maps a persisted user to its API shape.
func FromModel(user *models.User) UserDTO {
	if user == nil {
		return UserDTO{}
	}
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

// CreateUserDTO carries the fields needed to insert a user.
type CreateUserDTO struct {
	Email        string
	Username     string
	PasswordHash string
}

// ToModel builds the persistence model with a fresh ID.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
	}
}
