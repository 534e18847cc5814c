package authrpc

import "time"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is empty: the refresh token travels as the bearer token.
type RefreshRequest struct{}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	// seconds until the access token expires
	ExpiresIn        int64 `json:"expires_in"`
	RefreshExpiresIn int64 `json:"refresh_expires_in"`
}

type MeRequest struct{}

type GetUserRequest struct {
	Username string `json:"username"`
}

type UserResponse struct {
	User *User `json:"user"`
}

type ListUsersRequest struct {
	Order  string `json:"order,omitempty"`
	Offset int32  `json:"offset,omitempty"`
	Limit  int32  `json:"limit,omitempty"`
}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

type UpdateUserRequest struct {
	ID       string  `json:"id"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type DeactivateUserRequest struct {
	ID string `json:"id"`
}

type DeleteUserRequest struct {
	ID string `json:"id"`
}

type DeleteUserResponse struct{}
