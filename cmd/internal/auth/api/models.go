package authapi

import "time"

type signupRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Nickname   string  `json:"nickname"`
	ProfileImg *string `json:"profile_img"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is the login/refresh body. The refresh token is cookie-only
// and never appears here.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Nickname   string    `json:"nickname"`
	ProfileImg *string   `json:"profile_img"`
	CreatedAt  time.Time `json:"created_at"`
}

// publicUserResponse omits the email: only the owner sees it.
type publicUserResponse struct {
	ID         string  `json:"id"`
	Nickname   string  `json:"nickname"`
	ProfileImg *string `json:"profile_img"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type updateMeRequest struct {
	Nickname   *string `json:"nickname"`
	ProfileImg *string `json:"profile_img"`
}
