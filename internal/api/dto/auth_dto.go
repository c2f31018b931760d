package dto

// SignupDTO for POST /auth/signup
type SignupDTO struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// TokenDTO for POST /auth/token
type TokenDTO struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// TokenResponse carries the issued access token
type TokenResponse struct {
	Token string `json:"token"`
}
