package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"tech2gether/internal/auth"
	"tech2gether/internal/database"
	"tech2gether/internal/platform/user"
)

// Stand-in bcrypt digest compared against when the email is unknown, so a
// login attempt costs the same with or without a matching account.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// CredentialStore is the persistence capability set the service needs.
// The relational implementation lives in internal/platform/user.
type CredentialStore interface {
	GetUserByEmail(email string) (*database.User, error)
	GetUserByID(userID uuid.UUID) (*database.User, error)
	CreateUser(u *database.User, cred *database.Credential) error
	UpdatePassword(userID uuid.UUID, hash, salt string) error
	SetVerificationToken(userID uuid.UUID, token string, expires time.Time) error
	SetResetToken(userID uuid.UUID, token string, expires time.Time) error
	ConsumeVerificationToken(token string) (*database.User, error)
	ConsumeResetToken(token, hash, salt string) (*database.User, error)
	UpdateProfile(u *database.User) error
}

// Mailer is the delivery collaborator. Failures are logged, never surfaced.
type Mailer interface {
	SendVerificationEmail(u *database.User, token string) error
	SendPasswordResetEmail(u *database.User, token string) error
}

// TokenPair is what a successful login hands back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// RegisterInput carries the registration fields. Email and the names are
// required; everything else is optional.
type RegisterInput struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	PreferredName *string
	Phone         *string
	Pronouns      *string
	School        *string
	LinkedinURL   *string
	GithubURL     *string
}

// ProfileInput carries a partial profile update; nil fields are left alone.
type ProfileInput struct {
	FirstName     *string
	LastName      *string
	PreferredName *string
	Phone         *string
	Pronouns      *string
	School        *string
	LinkedinURL   *string
	GithubURL     *string
}

// Service orchestrates the credential and token lifecycle: registration,
// login, email verification, password reset, profile-bound token refresh.
type Service struct {
	store    CredentialStore
	issuer   *auth.TokenIssuer
	lockouts *auth.LockoutTracker
	mailer   Mailer
}

func NewService(store CredentialStore, issuer *auth.TokenIssuer, lockouts *auth.LockoutTracker, mailer Mailer) *Service {
	return &Service{
		store:    store,
		issuer:   issuer,
		lockouts: lockouts,
		mailer:   mailer,
	}
}

// NormalizeEmail lowercases and trims an email address. Emails are compared
// and stored in this form only.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	clean := auth.SanitizeInput(*value)
	if clean == "" {
		return nil
	}
	return &clean
}

// Register creates the identity and credential atomically, issues an
// email-verification token, and triggers delivery. Email delivery failure
// never rolls back registration. The token is returned so boundary layers
// can expose it in development builds.
func (s *Service) Register(input RegisterInput) (*database.User, string, error) {
	email := NormalizeEmail(input.Email)

	if _, err := s.store.GetUserByEmail(email); err == nil {
		return nil, "", ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, "", err
	}

	if violations := auth.ValidatePasswordStrength(input.Password); len(violations) > 0 {
		return nil, "", &WeakPasswordError{Violations: violations}
	}

	hash, salt, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	newUser := &database.User{
		Email:         email,
		FirstName:     auth.SanitizeInput(input.FirstName),
		LastName:      auth.SanitizeInput(input.LastName),
		PreferredName: sanitizeOptional(input.PreferredName),
		Phone:         sanitizeOptional(input.Phone),
		Pronouns:      sanitizeOptional(input.Pronouns),
		School:        sanitizeOptional(input.School),
		LinkedinURL:   sanitizeOptional(input.LinkedinURL),
		GithubURL:     sanitizeOptional(input.GithubURL),
	}
	cred := &database.Credential{
		PasswordHash: hash,
		PasswordSalt: salt,
	}

	if err := s.store.CreateUser(newUser, cred); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, "", ErrDuplicateEmail
		}
		return nil, "", err
	}

	token, err := s.mintVerificationToken(newUser)
	if err != nil {
		// The account exists; the user can request a fresh token later.
		log.Warnf("failed to mint verification token for %s: %v", email, err)
		return newUser, "", nil
	}

	s.deliverVerification(newUser, token)

	return newUser, token, nil
}

func (s *Service) mintVerificationToken(u *database.User) (string, error) {
	token, err := s.issuer.Issue(u.ID, u.Email, false, auth.KindEmailVerification)
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(s.issuer.TTL(auth.KindEmailVerification))
	if err := s.store.SetVerificationToken(u.ID, token, expires); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) deliverVerification(u *database.User, token string) {
	go func() {
		if err := s.mailer.SendVerificationEmail(u, token); err != nil {
			log.Warnf("verification email to %s not sent: %v", u.Email, err)
		}
	}()
}

// Login authenticates the credential and returns the user with a fresh
// access/refresh token pair. Unknown email and wrong password are
// indistinguishable to the caller; an active lockout wins over both.
func (s *Service) Login(email, password string) (*database.User, *TokenPair, error) {
	email = NormalizeEmail(email)

	if s.lockouts.IsLocked(email) {
		return nil, nil, ErrAccountLocked
	}

	u, err := s.store.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Burn the same hashing cost as the known-user path.
			auth.VerifyPassword(password, dummyHash, "0000000000000000")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if u.Credential == nil {
		return nil, nil, auth.ErrCorruptCredential
	}

	ok, err := auth.VerifyPassword(password, u.Credential.PasswordHash, u.Credential.PasswordSalt)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		s.lockouts.RecordFailure(email)
		return nil, nil, ErrInvalidCredentials
	}

	s.lockouts.RecordSuccess(email)

	tokens, err := s.issueSessionTokens(u)
	if err != nil {
		return nil, nil, err
	}

	return u, tokens, nil
}

func (s *Service) issueSessionTokens(u *database.User) (*TokenPair, error) {
	access, err := s.issuer.Issue(u.ID, u.Email, u.Credential.IsAdmin, auth.KindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.Issue(u.ID, u.Email, u.Credential.IsAdmin, auth.KindRefresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.issuer.TTL(auth.KindAccess).Seconds()),
	}, nil
}

// VerifyEmail consumes an email-verification token and marks the credential
// verified. The token is single-use; a second submission fails.
func (s *Service) VerifyEmail(token string) (*database.User, error) {
	if _, err := s.issuer.Verify(token, auth.KindEmailVerification); err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.store.ConsumeVerificationToken(token)
	if err != nil {
		if errors.Is(err, user.ErrNoToken) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return u, nil
}

// ResendVerification mints a fresh verification token and triggers delivery
// when the account exists and is unverified. It reports nothing about
// either condition to the caller.
func (s *Service) ResendVerification(email string) error {
	u, err := s.store.GetUserByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.Credential == nil || u.Credential.EmailVerified {
		return nil
	}

	token, err := s.mintVerificationToken(u)
	if err != nil {
		return err
	}

	s.deliverVerification(u, token)

	return nil
}

// RequestPasswordReset mints a reset token and triggers delivery when the
// account exists. It reports nothing about existence to the caller.
func (s *Service) RequestPasswordReset(email string) error {
	u, err := s.store.GetUserByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := s.issuer.Issue(u.ID, u.Email, false, auth.KindPasswordReset)
	if err != nil {
		return err
	}
	expires := time.Now().Add(s.issuer.TTL(auth.KindPasswordReset))
	if err := s.store.SetResetToken(u.ID, token, expires); err != nil {
		return err
	}

	go func() {
		if err := s.mailer.SendPasswordResetEmail(u, token); err != nil {
			log.Warnf("password reset email to %s not sent: %v", u.Email, err)
		}
	}()

	return nil
}

// ResetPassword consumes a reset token and re-hashes the password with a
// fresh salt; the consumption and the password write are one transaction.
func (s *Service) ResetPassword(token, newPassword string) (*database.User, error) {
	if _, err := s.issuer.Verify(token, auth.KindPasswordReset); err != nil {
		return nil, ErrInvalidToken
	}

	if violations := auth.ValidatePasswordStrength(newPassword); len(violations) > 0 {
		return nil, &WeakPasswordError{Violations: violations}
	}

	hash, salt, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	u, err := s.store.ConsumeResetToken(token, hash, salt)
	if err != nil {
		if errors.Is(err, user.ErrNoToken) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	s.lockouts.RecordSuccess(u.Email)

	return u, nil
}

// ChangePassword is the authenticated path: the current password must
// verify before the new one is hashed with a fresh salt.
func (s *Service) ChangePassword(userID uuid.UUID, currentPassword, newPassword string) error {
	u, err := s.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if u.Credential == nil {
		return auth.ErrCorruptCredential
	}

	ok, err := auth.VerifyPassword(currentPassword, u.Credential.PasswordHash, u.Credential.PasswordSalt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if violations := auth.ValidatePasswordStrength(newPassword); len(violations) > 0 {
		return &WeakPasswordError{Violations: violations}
	}

	hash, salt, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.store.UpdatePassword(userID, hash, salt)
}

// RefreshAccessToken verifies a refresh token and mints a new access token.
// The profile is re-fetched so the new token carries current claims.
func (s *Service) RefreshAccessToken(refreshToken string) (string, int, error) {
	claims, err := s.issuer.Verify(refreshToken, auth.KindRefresh)
	if err != nil {
		return "", 0, ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return "", 0, ErrInvalidToken
	}

	u, err := s.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", 0, ErrInvalidToken
		}
		return "", 0, err
	}

	isAdmin := u.Credential != nil && u.Credential.IsAdmin
	access, err := s.issuer.Issue(u.ID, u.Email, isAdmin, auth.KindAccess)
	if err != nil {
		return "", 0, err
	}

	return access, int(s.issuer.TTL(auth.KindAccess).Seconds()), nil
}

// Authenticate resolves a bearer access token to its user. Used by the HTTP
// middleware.
func (s *Service) Authenticate(accessToken string) (*database.User, error) {
	claims, err := s.issuer.Verify(accessToken, auth.KindAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return u, nil
}

// GetProfile returns the current profile for an authenticated identity.
func (s *Service) GetProfile(userID uuid.UUID) (*database.User, error) {
	u, err := s.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile sanitizes and applies the provided fields, leaving nil
// fields untouched.
func (s *Service) UpdateProfile(userID uuid.UUID, input ProfileInput) (*database.User, error) {
	u, err := s.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.FirstName != nil {
		u.FirstName = auth.SanitizeInput(*input.FirstName)
	}
	if input.LastName != nil {
		u.LastName = auth.SanitizeInput(*input.LastName)
	}
	if input.PreferredName != nil {
		u.PreferredName = sanitizeOptional(input.PreferredName)
	}
	if input.Phone != nil {
		u.Phone = sanitizeOptional(input.Phone)
	}
	if input.Pronouns != nil {
		u.Pronouns = sanitizeOptional(input.Pronouns)
	}
	if input.School != nil {
		u.School = sanitizeOptional(input.School)
	}
	if input.LinkedinURL != nil {
		u.LinkedinURL = sanitizeOptional(input.LinkedinURL)
	}
	if input.GithubURL != nil {
		u.GithubURL = sanitizeOptional(input.GithubURL)
	}

	if err := s.store.UpdateProfile(u); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return u, nil
}
