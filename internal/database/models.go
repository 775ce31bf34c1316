package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a member's profile record. Everything used to authenticate it
// lives on the Credential, 1:1, created in the same transaction.
type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	PreferredName *string   `json:"preferred_name"`
	Phone         *string   `json:"phone"`
	Pronouns      *string   `json:"pronouns"`
	School        *string   `json:"school"`
	LinkedinURL   *string   `json:"linkedin_url"`
	GithubURL     *string   `json:"github_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Credential *Credential `json:"-" gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Credential is the authentication record bound to a User. A token column
// and its expiry are always both null or both set; consuming a token clears
// the pair.
type Credential struct {
	UserID       uuid.UUID `json:"-" gorm:"type:uuid;primaryKey"`
	PasswordHash string    `json:"-" gorm:"not null"`
	PasswordSalt string    `json:"-" gorm:"not null"`
	IsAdmin      bool      `json:"-" gorm:"default:false"`

	EmailVerified       bool       `json:"-" gorm:"default:false"`
	VerificationToken   *string    `json:"-" gorm:"index"`
	VerificationExpires *time.Time `json:"-"`
	ResetToken          *string    `json:"-" gorm:"index"`
	ResetExpires        *time.Time `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
