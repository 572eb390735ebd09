package models

// UserProfile mirrors the upstream profile record. Fields are partial by
// design: the upstream omits anything the user has not filled in yet.
type UserProfile struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Picture   string `json:"picture,omitempty"`
	Roles     string `json:"roles,omitempty"` // single role tag: "user" | "admin"
	IsActive  bool   `json:"isActive,omitempty"`
}

// IsZero reports whether no profile field is set.
func (u UserProfile) IsZero() bool {
	return u == UserProfile{}
}

// Merge overlays the non-empty fields of p onto u and returns the result.
// IsActive is overwritten only when p carries any other field, since a bare
// false is indistinguishable from "not sent".
func (u UserProfile) Merge(p UserProfile) UserProfile {
	if p.ID != "" {
		u.ID = p.ID
	}
	if p.Email != "" {
		u.Email = p.Email
	}
	if p.Username != "" {
		u.Username = p.Username
	}
	if p.BirthDate != "" {
		u.BirthDate = p.BirthDate
	}
	if p.Picture != "" {
		u.Picture = p.Picture
	}
	if p.Roles != "" {
		u.Roles = p.Roles
	}
	if p.IsActive {
		u.IsActive = true
	}
	return u
}

// LoginResponse is the upstream reply to a successful credential exchange.
type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	Data         UserProfile `json:"data"`
	Message      string      `json:"message,omitempty"`
}

// RefreshResponse carries the new token pair minted by /api/auth/refresh.
// Some upstream builds nest the pair under "data", so both shapes decode.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Data         struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"data"`
}

// Tokens normalizes the two refresh response shapes into one pair.
func (r RefreshResponse) Tokens() (access, refresh string) {
	access, refresh = r.AccessToken, r.RefreshToken
	if access == "" {
		access = r.Data.AccessToken
	}
	if refresh == "" {
		refresh = r.Data.RefreshToken
	}
	return access, refresh
}

// ProfileResponse wraps a profile fetch: {"data": {...profile}}.
type ProfileResponse struct {
	Message string      `json:"message,omitempty"`
	Data    UserProfile `json:"data"`
}

// ProfilesResponse wraps the admin listing of all profiles.
type ProfilesResponse struct {
	Message string        `json:"message,omitempty"`
	Data    []UserProfile `json:"data"`
}
