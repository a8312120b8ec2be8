package account

import "time"

// User is the stored account record. PasswordHash and RefreshToken never
// leave the process; serialize Public instead.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	AvatarURL    string
	CoverURL     string
	PasswordHash []byte
	// RefreshToken is the single currently-valid refresh token for the
	// user, empty when logged out. Overwritten on login and rotation,
	// cleared on logout and password change.
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public is the outward projection of a User: everything except the
// password hash and the stored refresh token. It is also the per-request
// identity attached by the auth middleware.
type Public struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullname"`
	AvatarURL string    `json:"avatar,omitempty"`
	CoverURL  string    `json:"coverImage,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public projects the user for serialization.
func (u User) Public() Public {
	return Public{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
