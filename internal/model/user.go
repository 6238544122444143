package model

import "time"

// User is a document in the users collection, keyed by the Firebase uid.
// Merges can leave arbitrary extra fields on the document; those are carried
// through the raw document map, not this struct.
type User struct {
	UID         string    `mapstructure:"uid"`
	Email       string    `mapstructure:"email"`
	DisplayName string    `mapstructure:"displayName"`
	AvatarURL   string    `mapstructure:"avatarUrl"`
	PhotoURL    string    `mapstructure:"photoURL"`
	GreenPoints int64     `mapstructure:"greenPoints"`
	OriginalUID string    `mapstructure:"originalUid"`
	MergedAt    string    `mapstructure:"mergedAt"`
	CreatedAt   time.Time `mapstructure:"createdAt"`
}

// Avatar returns the best avatar candidate, mirroring the frontend fallback
// chain avatarUrl -> photoURL.
func (u User) Avatar() string {
	if u.AvatarURL != "" {
		return u.AvatarURL
	}
	return u.PhotoURL
}

// Name returns the display label: displayName, falling back to email.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
