package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tech2gether/internal/database"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when a create collides with an existing email.
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrNoToken is returned when consuming a token that is not outstanding,
	// has expired, or was already consumed.
	ErrNoToken = errors.New("no token found")
)

// UserService is the relational credential store. All multi-step writes run
// in a single transaction.
type UserService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUserByID(userID uuid.UUID) (*database.User, error) {
	var user database.User
	result := s.db.Preload("Credential").First(&user, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *UserService) GetUserByEmail(email string) (*database.User, error) {
	var user database.User
	result := s.db.Preload("Credential").First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// CreateUser persists a user and its credential atomically: both rows or
// neither.
func (s *UserService) CreateUser(user *database.User, cred *database.Credential) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		cred.UserID = user.ID
		if err := tx.Create(cred).Error; err != nil {
			return err
		}

		user.Credential = cred
		return nil
	})
}

// UpdatePassword writes a new hash+salt pair and clears any outstanding
// reset token in the same transaction.
func (s *UserService) UpdatePassword(userID uuid.UUID, hash, salt string) error {
	result := s.db.Model(&database.Credential{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"password_hash": hash,
		"password_salt": salt,
		"reset_token":   nil,
		"reset_expires": nil,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVerificationToken records the outstanding email-verification token,
// replacing any previous one.
func (s *UserService) SetVerificationToken(userID uuid.UUID, token string, expires time.Time) error {
	result := s.db.Model(&database.Credential{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"verification_token":   token,
		"verification_expires": expires,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetToken records the outstanding password-reset token, replacing any
// previous one.
func (s *UserService) SetResetToken(userID uuid.UUID, token string, expires time.Time) error {
	result := s.db.Model(&database.Credential{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"reset_token":   token,
		"reset_expires": expires,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeVerificationToken marks the credential verified and clears the
// token pair. The clearing update is guarded on the token still being
// present, so the token is single-use: a concurrent second submission
// matches no row and fails with ErrNoToken.
func (s *UserService) ConsumeVerificationToken(token string) (*database.User, error) {
	var user *database.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cred database.Credential
		if err := tx.First(&cred, "verification_token = ? AND verification_expires > ?", token, time.Now()).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoToken
			}
			return err
		}

		result := tx.Model(&database.Credential{}).
			Where("user_id = ? AND verification_token = ?", cred.UserID, token).
			Updates(map[string]interface{}{
				"email_verified":       true,
				"verification_token":   nil,
				"verification_expires": nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoToken
		}

		var u database.User
		if err := tx.Preload("Credential").First(&u, "id = ?", cred.UserID).Error; err != nil {
			return err
		}
		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ConsumeResetToken writes the new hash+salt and clears the reset token pair
// in one transaction, guarded the same way as verification consumption.
func (s *UserService) ConsumeResetToken(token, hash, salt string) (*database.User, error) {
	var user *database.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cred database.Credential
		if err := tx.First(&cred, "reset_token = ? AND reset_expires > ?", token, time.Now()).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoToken
			}
			return err
		}

		result := tx.Model(&database.Credential{}).
			Where("user_id = ? AND reset_token = ?", cred.UserID, token).
			Updates(map[string]interface{}{
				"password_hash": hash,
				"password_salt": salt,
				"reset_token":   nil,
				"reset_expires": nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoToken
		}

		var u database.User
		if err := tx.Preload("Credential").First(&u, "id = ?", cred.UserID).Error; err != nil {
			return err
		}
		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile persists the user's mutable profile fields.
func (s *UserService) UpdateProfile(user *database.User) error {
	result := s.db.Model(&database.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"first_name":     user.FirstName,
		"last_name":      user.LastName,
		"preferred_name": user.PreferredName,
		"phone":          user.Phone,
		"pronouns":       user.Pronouns,
		"school":         user.School,
		"linkedin_url":   user.LinkedinURL,
		"github_url":     user.GithubURL,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
