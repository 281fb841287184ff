package models

import (
	"time"
)

// User is the profile of a registered candidate or administrator.
// UID is the identity provider's subject id.
type User struct {
	UID                  string    `gorm:"primaryKey;column:uid" json:"uid"`
	Email                string    `gorm:"uniqueIndex;not null" json:"email"`
	Name                 string    `json:"name"`
	TargetRole           string    `json:"targetRole"`
	ExperienceLevel      string    `json:"experienceLevel"`
	IndustriesOfInterest []string  `gorm:"serializer:json" json:"industriesOfInterest"`
	Role                 string    `gorm:"not null;default:user" json:"role"`
	CreatedAt            time.Time `json:"createdAt"`
	LastActive           time.Time `json:"lastActive"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
