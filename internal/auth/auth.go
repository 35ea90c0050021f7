// Package auth implements credential storage, password verification, and
// session issuance/revocation for the HTTP surface.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"feedkeep/backend/internal/registry"
)

// Header names the reference implementation's redesign uses in place of
// the original rss_r's underscored headers, since some reverse proxies
// strip headers containing underscores.
const (
	UserIDHeader   = "userid"
	UserPassHeader = "userpass"
	CookieName     = "auth_id"
)

// SessionTTL matches the reference implementation's login deadline.
const SessionTTL = 14 * 24 * time.Hour

var (
	// ErrInvalidCredentials is returned when a username/password pair does
	// not match a stored user.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrSessionInvalid is returned when a session token does not verify,
	// or has been revoked.
	ErrSessionInvalid = errors.New("auth: invalid or expired session")
)

// PasswordHasher verifies a candidate password against a stored verifier.
// The core never interprets the verifier's bytes itself.
type PasswordHasher interface {
	Compare(verifier, candidate string) bool
	Hash(password string) (string, error)
}

// User is one account's credential record.
type User struct {
	ID       registry.UserID
	Name     string
	Verifier string
}

// CredentialsDocument is the on-disk shape of auth.yaml.
type CredentialsDocument struct {
	Users map[registry.UserID]StoredUser `yaml:"users"`
}

// StoredUser is a User without its ID (the ID is the map key).
type StoredUser struct {
	Name     string `yaml:"name"`
	Verifier string `yaml:"verifier"`
}

// CredentialStore holds every account's name and password verifier.
type CredentialStore struct {
	mu     sync.RWMutex
	users  map[registry.UserID]User
	hasher PasswordHasher
}

// NewCredentialStore returns an empty store using hasher to verify
// passwords.
func NewCredentialStore(hasher PasswordHasher) *CredentialStore {
	return &CredentialStore{users: map[registry.UserID]User{}, hasher: hasher}
}

// NewCredentialStoreFromSnapshot rebuilds a store from a persisted
// document.
func NewCredentialStoreFromSnapshot(doc CredentialsDocument, hasher PasswordHasher) *CredentialStore {
	store := NewCredentialStore(hasher)
	for id, u := range doc.Users {
		store.users[id] = User{ID: id, Name: u.Name, Verifier: u.Verifier}
	}
	return store
}

// Snapshot returns a copy of the store suitable for persistence.
func (s *CredentialStore) Snapshot() CredentialsDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := CredentialsDocument{Users: make(map[registry.UserID]StoredUser, len(s.users))}
	for id, u := range s.users {
		doc.Users[id] = StoredUser{Name: u.Name, Verifier: u.Verifier}
	}
	return doc
}

// AddUser registers a new account with the given name and plaintext
// password, hashing it with the store's PasswordHasher. It returns
// ErrInvalidCredentials if the name is already taken.
func (s *CredentialStore) AddUser(id registry.UserID, name, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Name == name {
			return ErrInvalidCredentials
		}
	}

	verifier, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	s.users[id] = User{ID: id, Name: name, Verifier: verifier}
	return nil
}

// ValidatePassword returns the UserID whose name and password match, or
// ErrInvalidCredentials.
func (s *CredentialStore) ValidatePassword(name, password string) (registry.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, u := range s.users {
		if u.Name == name {
			if s.hasher.Compare(u.Verifier, password) {
				return id, nil
			}
			return 0, ErrInvalidCredentials
		}
	}
	return 0, ErrInvalidCredentials
}

// UserName returns the display name for id.
func (s *CredentialStore) UserName(id registry.UserID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u.Name, ok
}

// sessionClaims is the JWT payload carried by a session cookie.
type sessionClaims struct {
	UserID    registry.UserID `json:"user_id"`
	SessionID string          `json:"session_id"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates session tokens. A JWT alone cannot
// express "logged out before natural expiry", so an in-memory set of
// active session ids is consulted alongside JWT verification: logout
// removes a session id from that set, which invalidates the token
// immediately even though its signature still checks out.
type SessionManager struct {
	signingKey []byte

	mu     sync.Mutex
	active map[string]registry.UserID
}

// NewSessionManager returns a SessionManager signing tokens with key.
func NewSessionManager(key []byte) *SessionManager {
	return &SessionManager{signingKey: key, active: map[string]registry.UserID{}}
}

// Issue creates a new session for id and returns its signed token.
func (m *SessionManager) Issue(id registry.UserID) (string, error) {
	sessionID, err := randomSessionID()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.active[sessionID] = id
	m.mu.Unlock()

	now := time.Now().UTC()
	claims := sessionClaims{
		UserID:    id,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// Validate verifies token and checks that its session has not been
// revoked, returning the associated UserID.
func (m *SessionManager) Validate(token string) (registry.UserID, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		return m.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrSessionInvalid
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok {
		return 0, ErrSessionInvalid
	}

	m.mu.Lock()
	userID, active := m.active[claims.SessionID]
	m.mu.Unlock()

	if !active || userID != claims.UserID {
		return 0, ErrSessionInvalid
	}
	return userID, nil
}

// Revoke invalidates token's session immediately, regardless of its
// remaining JWT lifetime.
func (m *SessionManager) Revoke(token string) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &sessionClaims{})
	if err != nil {
		return
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok {
		return
	}
	m.mu.Lock()
	delete(m.active, claims.SessionID)
	m.mu.Unlock()
}

func randomSessionID() (string, error) {
	// uuid gives a readable, collision-resistant session identifier; the
	// bytes backing it come from crypto/rand via the uuid package.
	id, err := uuid.NewRandom()
	if err != nil {
		raw := make([]byte, 16)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		return hex.EncodeToString(raw), nil
	}
	return id.String(), nil
}
