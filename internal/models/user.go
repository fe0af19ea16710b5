package models

import "time"

type MediaSlot string

const (
	MediaSlotAvatar MediaSlot = "avatar"
	MediaSlotCover  MediaSlot = "cover"
)

func (s MediaSlot) Valid() bool {
	return s == MediaSlotAvatar || s == MediaSlotCover
}

// User is the root of the aggregate. Posts and notifications hang off it in
// the store and are loaded separately.
type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash []byte
	Gender       string
	DOB          string
	City         string
	Country      string
	Bio          string
	AccessToken  string
	ProfileImage *Media
	CoverPhoto   *Media
	Friends      []string
	Pages        []string
	Groups       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Media returns the payload stored in slot, or nil.
func (u User) Media(slot MediaSlot) *Media {
	switch slot {
	case MediaSlotAvatar:
		return u.ProfileImage
	case MediaSlotCover:
		return u.CoverPhoto
	}
	return nil
}

// ProfileUpdate carries a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	Name    *string
	DOB     *string
	City    *string
	Country *string
	Bio     *string
}

func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.DOB != nil {
		u.DOB = *p.DOB
	}
	if p.City != nil {
		u.City = *p.City
	}
	if p.Country != nil {
		u.Country = *p.Country
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
}

const NotificationPhotoLiked = "photo-liked"

type Notification struct {
	ID           string
	Type         string
	Content      string
	ProfileImage *Media
	CreatedAt    time.Time
}
