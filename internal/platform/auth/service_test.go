package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authcore "tech2gether/internal/auth"
	"tech2gether/internal/database"
	"tech2gether/internal/platform/user"
)

type fakeMailer struct {
	mu            sync.Mutex
	verifications []string
	resets        []string
}

func (m *fakeMailer) SendVerificationEmail(u *database.User, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, u.Email)
	return nil
}

func (m *fakeMailer) SendPasswordResetEmail(u *database.User, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, u.Email)
	return nil
}

func (m *fakeMailer) verificationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.verifications)
}

func (m *fakeMailer) resetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resets)
}

func newTestIssuer() *authcore.TokenIssuer {
	return authcore.NewTokenIssuer("session-secret", "action-secret",
		24*time.Hour, 7*24*time.Hour, 24*time.Hour, time.Hour)
}

func newTestService(t *testing.T, issuer *authcore.TokenIssuer) (*Service, *fakeMailer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mailer := &fakeMailer{}
	svc := NewService(user.NewService(db), issuer,
		authcore.NewLockoutTracker(5, 30*time.Minute), mailer)
	return svc, mailer
}

func register(t *testing.T, svc *Service, email string) (*database.User, string) {
	t.Helper()

	u, token, err := svc.Register(RegisterInput{
		Email:     email,
		Password:  "Str0ng!Pass",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return u, token
}

func TestRegister(t *testing.T) {
	svc, mailer := newTestService(t, newTestIssuer())

	u, token := register(t, svc, "alice@example.com")
	assert.Equal(t, "alice@example.com", u.Email)
	require.NotNil(t, u.Credential)
	assert.False(t, u.Credential.EmailVerified)
	assert.NotEqual(t, "Str0ng!Pass", u.Credential.PasswordHash)

	// The verification token is outstanding on the credential.
	stored, err := svc.GetProfile(u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Credential.VerificationToken)
	assert.Equal(t, token, *stored.Credential.VerificationToken)
	require.NotNil(t, stored.Credential.VerificationExpires)

	assert.Eventually(t, func() bool { return mailer.verificationCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	register(t, svc, "alice@example.com")

	_, _, err := svc.Register(RegisterInput{
		Email:     "Alice@Example.com", // same address, different case
		Password:  "Str0ng!Pass",
		FirstName: "Other",
		LastName:  "Alice",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())

	_, _, err := svc.Register(RegisterInput{
		Email:     "alice@example.com",
		Password:  "password",
		FirstName: "Alice",
		LastName:  "Smith",
	})

	var weak *WeakPasswordError
	require.ErrorAs(t, err, &weak)
	assert.Len(t, weak.Violations, 3)
}

func TestRegisterSanitizesProfile(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())

	school := "  <b>State University</b>  "
	u, _, err := svc.Register(RegisterInput{
		Email:     "alice@example.com",
		Password:  "Str0ng!Pass",
		FirstName: "<script>Alice</script>",
		LastName:  "Smith",
		School:    &school,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.FirstName)
	require.NotNil(t, u.School)
	assert.Equal(t, "State University", *u.School)
}

func TestLoginSuccessBeforeVerification(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	register(t, svc, "alice@example.com")

	// Verification is not a login gate.
	u, tokens, err := svc.Login("alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.False(t, u.Credential.EmailVerified)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, int((24 * time.Hour).Seconds()), tokens.ExpiresIn)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	register(t, svc, "alice@example.com")

	_, _, unknownErr := svc.Login("nobody@example.com", "Str0ng!Pass")
	_, _, wrongErr := svc.Login("alice@example.com", "Wr0ng!Pass")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginLockout(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	register(t, svc, "bob@example.com")

	for i := 0; i < 5; i++ {
		_, _, err := svc.Login("bob@example.com", "Wr0ng!Pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Even the correct password is refused while locked.
	_, _, err := svc.Login("bob@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLoginSuccessResetsFailureCount(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	register(t, svc, "bob@example.com")

	for i := 0; i < 4; i++ {
		svc.Login("bob@example.com", "Wr0ng!Pass")
	}
	_, _, err := svc.Login("bob@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	// The counter restarted; four more failures do not lock.
	for i := 0; i < 4; i++ {
		svc.Login("bob@example.com", "Wr0ng!Pass")
	}
	_, _, err = svc.Login("bob@example.com", "Str0ng!Pass")
	assert.NoError(t, err)
}

func TestVerifyEmail(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	_, token := register(t, svc, "alice@example.com")

	u, err := svc.VerifyEmail(token)
	require.NoError(t, err)
	assert.True(t, u.Credential.EmailVerified)

	// Single use: the same token fails the second time.
	_, err = svc.VerifyEmail(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyEmailRejectsWrongKind(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	register(t, svc, "alice@example.com")

	_, tokens, err := svc.Login("alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	_, err = svc.VerifyEmail(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResendVerification(t *testing.T) {
	svc, mailer := newTestService(t, newTestIssuer())
	u, first := register(t, svc, "alice@example.com")

	require.NoError(t, svc.ResendVerification("alice@example.com"))

	// A fresh token replaced the original; the old one no longer consumes.
	stored, err := svc.GetProfile(u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Credential.VerificationToken)
	assert.NotEqual(t, first, *stored.Credential.VerificationToken)

	_, err = svc.VerifyEmail(first)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.Eventually(t, func() bool { return mailer.verificationCount() == 2 },
		time.Second, 10*time.Millisecond)
}

func TestResendVerificationUnknownOrVerified(t *testing.T) {
	svc, mailer := newTestService(t, newTestIssuer())
	_, token := register(t, svc, "alice@example.com")

	assert.Eventually(t, func() bool { return mailer.verificationCount() == 1 },
		time.Second, 10*time.Millisecond)

	// Unknown address: generic success, nothing sent.
	require.NoError(t, svc.ResendVerification("nobody@example.com"))

	// Already verified: generic success, nothing sent.
	_, err := svc.VerifyEmail(token)
	require.NoError(t, err)
	require.NoError(t, svc.ResendVerification("alice@example.com"))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, mailer.verificationCount())
}

func TestPasswordResetFlow(t *testing.T) {
	svc, mailer := newTestService(t, newTestIssuer())
	u, _ := register(t, svc, "alice@example.com")

	require.NoError(t, svc.RequestPasswordReset("alice@example.com"))

	stored, err := svc.GetProfile(u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Credential.ResetToken)
	token := *stored.Credential.ResetToken

	_, err = svc.ResetPassword(token, "N3w!Password")
	require.NoError(t, err)

	// New password works, old one does not, token is consumed.
	_, _, err = svc.Login("alice@example.com", "N3w!Password")
	assert.NoError(t, err)
	_, _, err = svc.Login("alice@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.ResetPassword(token, "An0ther!Pass")
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.Eventually(t, func() bool { return mailer.resetCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	svc, mailer := newTestService(t, newTestIssuer())
	register(t, svc, "alice@example.com")

	require.NoError(t, svc.RequestPasswordReset("nobody@example.com"))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, mailer.resetCount())
}

func TestResetPasswordExpiredToken(t *testing.T) {
	// Reset tokens come out already expired with this issuer.
	issuer := authcore.NewTokenIssuer("session-secret", "action-secret",
		24*time.Hour, 7*24*time.Hour, 24*time.Hour, -time.Minute)
	svc, _ := newTestService(t, issuer)
	u, _ := register(t, svc, "alice@example.com")

	require.NoError(t, svc.RequestPasswordReset("alice@example.com"))
	stored, err := svc.GetProfile(u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Credential.ResetToken)

	_, err = svc.ResetPassword(*stored.Credential.ResetToken, "N3w!Password")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Password unchanged.
	_, _, err = svc.Login("alice@example.com", "Str0ng!Pass")
	assert.NoError(t, err)
}

func TestResetPasswordWeakPassword(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	u, _ := register(t, svc, "alice@example.com")

	require.NoError(t, svc.RequestPasswordReset("alice@example.com"))
	stored, err := svc.GetProfile(u.ID)
	require.NoError(t, err)
	token := *stored.Credential.ResetToken

	var weak *WeakPasswordError
	_, err = svc.ResetPassword(token, "weak")
	require.ErrorAs(t, err, &weak)

	// A weak attempt does not burn the token.
	_, err = svc.ResetPassword(token, "N3w!Password")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	u, _ := register(t, svc, "alice@example.com")

	err := svc.ChangePassword(u.ID, "Wr0ng!Pass", "N3w!Password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var weak *WeakPasswordError
	err = svc.ChangePassword(u.ID, "Str0ng!Pass", "weak")
	require.ErrorAs(t, err, &weak)

	require.NoError(t, svc.ChangePassword(u.ID, "Str0ng!Pass", "N3w!Password"))

	_, _, err = svc.Login("alice@example.com", "N3w!Password")
	assert.NoError(t, err)
	_, _, err = svc.Login("alice@example.com", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePasswordFreshSalt(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	u, _ := register(t, svc, "alice@example.com")

	before, err := svc.GetProfile(u.ID)
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(u.ID, "Str0ng!Pass", "Str0ng!Pass"))

	after, err := svc.GetProfile(u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.Credential.PasswordSalt, after.Credential.PasswordSalt)
	assert.NotEqual(t, before.Credential.PasswordHash, after.Credential.PasswordHash)
}

func TestRefreshAccessToken(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	register(t, svc, "alice@example.com")

	_, tokens, err := svc.Login("alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)

	access, expiresIn, err := svc.RefreshAccessToken(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.Equal(t, int((24 * time.Hour).Seconds()), expiresIn)

	// The minted token authenticates.
	u, err := svc.Authenticate(access)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	// An access token is not accepted in place of a refresh token.
	_, _, err = svc.RefreshAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.RefreshAccessToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	u, _ := register(t, svc, "alice@example.com")

	pronouns := " she/her "
	linkedin := "https://linkedin.com/in/alice"
	updated, err := svc.UpdateProfile(u.ID, ProfileInput{
		Pronouns:    &pronouns,
		LinkedinURL: &linkedin,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Pronouns)
	assert.Equal(t, "she/her", *updated.Pronouns)
	require.NotNil(t, updated.LinkedinURL)
	assert.Equal(t, linkedin, *updated.LinkedinURL)
	// Untouched fields survive.
	assert.Equal(t, "Alice", updated.FirstName)
}

func TestUpdateProfileIdempotent(t *testing.T) {
	svc, _ := newTestService(t, newTestIssuer())
	u, _ := register(t, svc, "alice@example.com")

	first, err := svc.UpdateProfile(u.ID, ProfileInput{})
	require.NoError(t, err)

	second, err := svc.UpdateProfile(u.ID, ProfileInput{})
	require.NoError(t, err)

	assert.Equal(t, first.FirstName, second.FirstName)
	assert.Equal(t, first.LastName, second.LastName)
	assert.Equal(t, first.Pronouns, second.Pronouns)
}
