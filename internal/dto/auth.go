package dto

// LoginRequest defines the credentials payload for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the signed JWT returned on successful login.
type LoginResponse struct {
	Token string `json:"token"`
}
