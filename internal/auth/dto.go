package auth

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

// RefreshTokenDTO carries the refresh token exchanged for a new pair.
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refresh_token is required"}
	}
	return nil
}

// LoginResponse is the token payload returned on a successful login. Profile
// names only; the full nested profile list rides in User for clients that
// need it.
type LoginResponse struct {
	AccessToken    string             `json:"access_token"`
	RefreshToken   string             `json:"refresh_token"`
	UserName       string             `json:"user_name"`
	PrimaryProfile string             `json:"primary_profile"`
	Profiles       []string           `json:"profiles"`
	Resources      []string           `json:"resources"`
	User           *AuthenticatedUser `json:"user"`
}
