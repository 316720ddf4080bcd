package auth_test

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	auth "github.com/contactdeck/go-auth"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// testLogger swallows log output so test runs stay quiet
type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// testConfig implements auth.Config with fixture values
type testConfig struct{}

func (testConfig) GetSigningKey() string { return "test-signing-key" }
func (testConfig) GetSigningMethod() string { return "HS256" }
func (testConfig) GetContextKey() string { return "user" }
func (testConfig) GetTokenLookup() string { return "header:Authorization,cookie:user" }
func (testConfig) GetAuthScheme() string { return "Bearer" }
func (testConfig) GetIssuer() string { return "test-issuer" }
func (testConfig) GetAudience() []string { return []string{"test-audience"} }
func (testConfig) GetAccessTokenTTL() time.Duration { return time.Hour }
func (testConfig) GetVerificationTokenTTL() time.Duration { return 24 * time.Hour }
func (testConfig) GetResetTokenTTL() time.Duration { return 30 * time.Minute }

func newTestConfig() auth.Config {
	return testConfig{}
}

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (string, error) {
	args := m.Called(ctx, identifier, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) SessionFromToken(token string) (auth.Session, error) {
	args := m.Called(token)
	if s, ok := args.Get(0).(auth.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) IdentityFromSession(ctx context.Context, session auth.Session) (auth.Identity, error) {
	args := m.Called(ctx, session)
	if id, ok := args.Get(0).(auth.Identity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if id, ok := args.Get(0).(auth.Identity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	if id, ok := args.Get(0).(auth.Identity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockLoginPayload implements auth.LoginPayload
type MockLoginPayload struct {
	Identifier      string
	Password        string
	ExtendedSession bool
}

func (m MockLoginPayload) GetIdentifier() string {
	return m.Identifier
}

func (m MockLoginPayload) GetPassword() string {
	return m.Password
}

func (m MockLoginPayload) GetExtendedSession() bool {
	return m.ExtendedSession
}

// MockUserTracker implements auth.UserTracker
type MockUserTracker struct {
	mock.Mock
}

func (m *MockUserTracker) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserTracker) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserTracker) TrackSucccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockMailer implements auth.Mailer and records outgoing links
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationLink(ctx context.Context, email, username, link string) error {
	args := m.Called(ctx, email, username, link)
	return args.Error(0)
}

func (m *MockMailer) SendResetLink(ctx context.Context, email, username, link string) error {
	args := m.Called(ctx, email, username, link)
	return args.Error(0)
}

// MockUsers implements auth.Users. The embedded repository interface covers
// generic CRUD methods the tests never touch, calling one of those without
// an override panics on the nil interface, which is exactly what we want.
type MockUsers struct {
	mock.Mock
	repository.Repository[*auth.User]
}

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, tx, identifier)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *auth.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSucccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSucccessfulLoginTx(ctx context.Context, tx bun.IDB, user *auth.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, tx, user)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *auth.User, criteria ...repository.InsertCriteria) (*auth.User, error) {
	args := m.Called(ctx, record)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *auth.User, criteria ...repository.InsertCriteria) (*auth.User, error) {
	args := m.Called(ctx, tx, record)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) ConfirmEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) ConfirmEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.User, error) {
	args := m.Called(ctx, tx, email)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) (*auth.User, error) {
	args := m.Called(ctx, id, avatarURL)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

// MockContacts implements auth.Contacts
type MockContacts struct {
	mock.Mock
}

func (m *MockContacts) List(ctx context.Context, userID uuid.UUID, filter auth.ContactFilter) ([]*auth.Contact, int, error) {
	args := m.Called(ctx, userID, filter)
	if c, ok := args.Get(0).([]*auth.Contact); ok {
		return c, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockContacts) GetByID(ctx context.Context, userID, contactID uuid.UUID) (*auth.Contact, error) {
	args := m.Called(ctx, userID, contactID)
	if c, ok := args.Get(0).(*auth.Contact); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContacts) Create(ctx context.Context, record *auth.Contact) (*auth.Contact, error) {
	args := m.Called(ctx, record)
	if c, ok := args.Get(0).(*auth.Contact); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContacts) CreateTx(ctx context.Context, tx bun.IDB, record *auth.Contact) (*auth.Contact, error) {
	args := m.Called(ctx, tx, record)
	if c, ok := args.Get(0).(*auth.Contact); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContacts) Update(ctx context.Context, userID uuid.UUID, record *auth.Contact) (*auth.Contact, error) {
	args := m.Called(ctx, userID, record)
	if c, ok := args.Get(0).(*auth.Contact); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContacts) Delete(ctx context.Context, userID, contactID uuid.UUID) error {
	args := m.Called(ctx, userID, contactID)
	return args.Error(0)
}

func (m *MockContacts) UpcomingBirthdays(ctx context.Context, userID uuid.UUID, days int) ([]*auth.Contact, error) {
	args := m.Called(ctx, userID, days)
	if c, ok := args.Get(0).([]*auth.Contact); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRepositoryManager implements auth.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Users() auth.Users {
	args := m.Called()
	return args.Get(0).(auth.Users)
}

func (m *MockRepositoryManager) Contacts() auth.Contacts {
	args := m.Called()
	return args.Get(0).(auth.Contacts)
}

// MockTokenService implements auth.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(identity auth.Identity, purpose auth.TokenPurpose) (string, error) {
	args := m.Called(identity, purpose)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) IssueWithTTL(identity auth.Identity, purpose auth.TokenPurpose, ttl time.Duration) (string, error) {
	args := m.Called(identity, purpose, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string, expected auth.TokenPurpose) (auth.AuthClaims, error) {
	args := m.Called(tokenString, expected)
	if claims, ok := args.Get(0).(auth.AuthClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) SignClaims(claims *auth.JWTClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

// recordLogger renders entries the way a printf backend would, so tests can
// assert on the final formatted output.
type recordLogger struct {
	entries []string
}

func (l *recordLogger) Debug(format string, args ...any) { l.append(format, args...) }
func (l *recordLogger) Info(format string, args ...any)  { l.append(format, args...) }
func (l *recordLogger) Warn(format string, args ...any)  { l.append(format, args...) }
func (l *recordLogger) Error(format string, args ...any) { l.append(format, args...) }

func (l *recordLogger) append(format string, args ...any) {
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}
