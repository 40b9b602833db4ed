package api

// CreateTokenRequest carries credentials exchanged for a token pair.
type CreateTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPairResponse is returned by the token-create endpoint.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshRequest carries the refresh token used to mint a new access token.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse is returned by the token-refresh endpoint.
// The refresh token itself is not rotated.
type RefreshResponse struct {
	Access string `json:"access"`
}

// RegisterRequest creates a new account. The server logs nobody in on
// registration; the client follows up with a token-create call.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// User is the server-sourced profile of the authenticated user.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
