// Package auth implements the account directory and the single active
// login session over the two key-value storage scopes.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sweetcupcakes/storefront/internal/kv"
	"github.com/sweetcupcakes/storefront/internal/model"
	"github.com/sweetcupcakes/storefront/internal/validation"
)

const (
	usersKey   = "sweetcupcakes_users"
	sessionKey = "sweetcupcakes_user"

	// passwordSalt is the fixed application-wide salt of the placeholder
	// password obfuscation. Not a secret and not cryptographic.
	passwordSalt = "sweetcupcakes_salt"
)

// ErrInvalidCredentials is returned on login when the email is unknown or
// the password does not verify. Both cases share one error on purpose, so
// responses do not reveal which part was wrong.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail is returned when registering an email that already
	// has an account. Matching is case-insensitive.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidEmail is returned when the registration email is malformed.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrNotLoggedIn is returned by operations that need an active session.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrAccountNotFound is returned when the session points at an account
	// that no longer exists in the directory.
	ErrAccountNotFound = errors.New("account not found")
	// ErrWrongPassword is returned when the current password does not verify
	// on a password change.
	ErrWrongPassword = errors.New("current password incorrect")
)

// SessionStore owns the registered-account directory (durable scope) and the
// active session, which lives in the durable scope for remembered logins and
// in the ephemeral scope otherwise.
type SessionStore struct {
	durable   kv.Store
	ephemeral kv.Store
}

// NewSessionStore creates a session store over the two storage scopes.
func NewSessionStore(durable, ephemeral kv.Store) *SessionStore {
	return &SessionStore{
		durable:   durable,
		ephemeral: ephemeral,
	}
}

// Obfuscate transforms a password into its stored text form: base64 of the
// password concatenated with the fixed salt. This is a demo placeholder, not
// password hashing; it is trivially reversible and must not be relied on for
// security.
func Obfuscate(password string) string {
	return base64.StdEncoding.EncodeToString([]byte(password + passwordSalt))
}

// Verify reports whether the password obfuscates to the stored hash.
func Verify(password, hash string) bool {
	return Obfuscate(password) == hash
}

// RegistrationForm is the input of Register.
type RegistrationForm struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// ProfileUpdate carries the fields a user may change on their profile.
// Empty fields keep their current value; email cannot be changed at all.
type ProfileUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

func (s *SessionStore) loadAccounts(ctx context.Context) ([]model.UserAccount, error) {
	raw, err := s.durable.Get(ctx, usersKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	var accounts []model.UserAccount
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, nil
	}
	return accounts, nil
}

func (s *SessionStore) saveAccounts(ctx context.Context, accounts []model.UserAccount) error {
	raw, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}
	if err := s.durable.Set(ctx, usersKey, string(raw)); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return nil
}

// EnsureSeeded populates the account directory with the demo accounts when
// it is empty or absent. Repeated calls never duplicate or reset accounts.
func (s *SessionStore) EnsureSeeded(ctx context.Context) error {
	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) > 0 {
		return nil
	}

	now := time.Now().UTC()
	seed := []model.UserAccount{
		{
			ID:           "1",
			FirstName:    "Admin",
			LastName:     "Sweet Cupcakes",
			Email:        "admin@sweetcupcakes.com",
			Phone:        "(11) 99999-9999",
			PasswordHash: Obfuscate("admin123"),
			CreatedAt:    now,
			IsAdmin:      true,
		},
		{
			ID:           "2",
			FirstName:    "João",
			LastName:     "Silva",
			Email:        "joao@email.com",
			Phone:        "(11) 98888-8888",
			PasswordHash: Obfuscate("123456"),
			CreatedAt:    now,
			IsAdmin:      false,
		},
	}

	return s.saveAccounts(ctx, seed)
}

// Register creates a new non-admin account with a fresh id and the email
// lower-cased. Registering an email that already has an account fails with
// ErrDuplicateEmail regardless of case.
func (s *SessionStore) Register(ctx context.Context, form RegistrationForm) (*model.AccountInfo, error) {
	if !validation.IsValidEmail(form.Email) {
		return nil, ErrInvalidEmail
	}

	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(form.Email))
	for _, a := range accounts {
		if strings.ToLower(a.Email) == email {
			return nil, ErrDuplicateEmail
		}
	}

	account := model.UserAccount{
		ID:           uuid.NewString(),
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        email,
		Phone:        form.Phone,
		PasswordHash: Obfuscate(form.Password),
		CreatedAt:    time.Now().UTC(),
		IsAdmin:      false,
	}

	accounts = append(accounts, account)
	if err := s.saveAccounts(ctx, accounts); err != nil {
		return nil, err
	}

	info := projectAccount(account)
	return &info, nil
}

// Login authenticates by case-insensitive email lookup and password
// verification. Unknown email and wrong password produce the same error. On
// success the session projection is stored in the durable scope when
// rememberMe is set, in the ephemeral scope otherwise; the other scope is
// cleared so exactly one holds the session.
func (s *SessionStore) Login(ctx context.Context, email, password string, rememberMe bool) (*model.Session, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(email))
	var account *model.UserAccount
	for i := range accounts {
		if strings.ToLower(accounts[i].Email) == needle {
			account = &accounts[i]
			break
		}
	}

	if account == nil || !Verify(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	session := model.Session{
		ID:         account.ID,
		FirstName:  account.FirstName,
		LastName:   account.LastName,
		Email:      account.Email,
		Phone:      account.Phone,
		IsAdmin:    account.IsAdmin,
		LoginAt:    time.Now().UTC(),
		RememberMe: rememberMe,
	}

	if err := s.clearSession(ctx); err != nil {
		return nil, err
	}
	if err := s.writeSession(ctx, session); err != nil {
		return nil, err
	}

	return &session, nil
}

// Logout removes the session from both scopes, whichever held it.
func (s *SessionStore) Logout(ctx context.Context) error {
	return s.clearSession(ctx)
}

func (s *SessionStore) clearSession(ctx context.Context) error {
	if err := s.durable.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("clear durable session: %w", err)
	}
	if err := s.ephemeral.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("clear ephemeral session: %w", err)
	}
	return nil
}

func (s *SessionStore) writeSession(ctx context.Context, session model.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	scope := s.ephemeral
	if session.RememberMe {
		scope = s.durable
	}

	if err := scope.Set(ctx, sessionKey, string(raw)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// CurrentSession returns the active session, reading the durable scope first
// and falling back to the ephemeral one. An absent or unparseable stored
// session yields nil rather than an error, so corrupted state self-heals to
// anonymous.
func (s *SessionStore) CurrentSession(ctx context.Context) (*model.Session, error) {
	for _, scope := range []kv.Store{s.durable, s.ephemeral} {
		raw, err := scope.Get(ctx, sessionKey)
		if err != nil {
			if errors.Is(err, kv.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load session: %w", err)
		}

		var session model.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			continue
		}
		return &session, nil
	}
	return nil, nil
}

// IsLoggedIn reports whether a session is active.
func (s *SessionStore) IsLoggedIn(ctx context.Context) bool {
	session, err := s.CurrentSession(ctx)
	return err == nil && session != nil
}

// IsAdmin reports whether the active session belongs to an administrator.
func (s *SessionStore) IsAdmin(ctx context.Context) bool {
	session, err := s.CurrentSession(ctx)
	return err == nil && session != nil && session.IsAdmin
}

// FullName returns "first last" for the active session, or "" when
// anonymous.
func (s *SessionStore) FullName(ctx context.Context) string {
	session, err := s.CurrentSession(ctx)
	if err != nil || session == nil {
		return ""
	}
	return session.FirstName + " " + session.LastName
}

// UpdateProfile merges the permitted fields into the backing account and
// refreshes the live session in whichever scope it occupies. Email is
// preserved from the stored record no matter what the update carries.
func (s *SessionStore) UpdateProfile(ctx context.Context, update ProfileUpdate) (*model.Session, error) {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotLoggedIn
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range accounts {
		if accounts[i].ID == session.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrAccountNotFound
	}

	if update.FirstName != "" {
		accounts[idx].FirstName = update.FirstName
	}
	if update.LastName != "" {
		accounts[idx].LastName = update.LastName
	}
	if update.Phone != "" {
		accounts[idx].Phone = update.Phone
	}

	if err := s.saveAccounts(ctx, accounts); err != nil {
		return nil, err
	}

	session.FirstName = accounts[idx].FirstName
	session.LastName = accounts[idx].LastName
	session.Phone = accounts[idx].Phone

	if err := s.writeSession(ctx, *session); err != nil {
		return nil, err
	}
	return session, nil
}

// ChangePassword replaces the account's password after verifying the
// current one.
func (s *SessionStore) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNotLoggedIn
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range accounts {
		if accounts[i].ID == session.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrAccountNotFound
	}

	if !Verify(currentPassword, accounts[idx].PasswordHash) {
		return ErrWrongPassword
	}

	accounts[idx].PasswordHash = Obfuscate(newPassword)
	return s.saveAccounts(ctx, accounts)
}

// ListAccounts returns every account without its password hash. Non-admin
// callers get an empty list.
func (s *SessionStore) ListAccounts(ctx context.Context) ([]model.AccountInfo, error) {
	if !s.IsAdmin(ctx) {
		return nil, nil
	}

	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]model.AccountInfo, 0, len(accounts))
	for _, a := range accounts {
		res = append(res, projectAccount(a))
	}
	return res, nil
}

// RequireLogin reports whether the caller may access a page that needs a
// session. Navigation on failure is the caller's responsibility.
func (s *SessionStore) RequireLogin(ctx context.Context) bool {
	return s.IsLoggedIn(ctx)
}

// RequireAdmin reports whether the caller may access an admin page.
func (s *SessionStore) RequireAdmin(ctx context.Context) bool {
	return s.IsLoggedIn(ctx) && s.IsAdmin(ctx)
}

func projectAccount(a model.UserAccount) model.AccountInfo {
	return model.AccountInfo{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Phone:     a.Phone,
		CreatedAt: a.CreatedAt,
		IsAdmin:   a.IsAdmin,
	}
}
