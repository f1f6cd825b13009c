package domain

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest payload for POST /auth/register.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	UserType    Role   `json:"userType"`
	Specialty   string `json:"medicalSpecialty,omitempty"`
	FullName    string `json:"fullName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

// AuthResponse is returned by login, register and refresh.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType,omitempty"`
	Username     string `json:"username,omitempty"`
	UserType     string `json:"userType,omitempty"`
}

// RefreshRequest carries the refresh token for refresh and logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateProfileRequest payload for PUT /auth/profile. Blank fields are ignored server side.
type UpdateProfileRequest struct {
	FullName     string `json:"fullName,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Address      string `json:"address,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
}

// PhotoUpload is the response of the profile photo upload.
type PhotoUpload struct {
	URL string `json:"url"`
}

// OAuth2Result is what the backend hands over on the OAuth2 redirect.
type OAuth2Result struct {
	Token string
	Email string
	Name  string
	Role  string
	Error string
}
