package auth

import "dinein/internal/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserPublic struct {
	ID    int64           `json:"id"`
	Role  domain.UserRole `json:"role"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
}

func toPublic(u *domain.User) UserPublic {
	return UserPublic{ID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}
