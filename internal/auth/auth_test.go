package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUserAndValidatePassword(t *testing.T) {
	store := NewCredentialStore(NewBcryptHasher())
	require.NoError(t, store.AddUser(1, "alice", "hunter2"))

	id, err := store.ValidatePassword("alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, 1, int(id))
}

func TestValidatePasswordRejectsWrongPassword(t *testing.T) {
	store := NewCredentialStore(NewBcryptHasher())
	require.NoError(t, store.AddUser(1, "alice", "hunter2"))

	_, err := store.ValidatePassword("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidatePasswordUnknownUser(t *testing.T) {
	store := NewCredentialStore(NewBcryptHasher())
	_, err := store.ValidatePassword("nobody", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAddUserRejectsDuplicateName(t *testing.T) {
	store := NewCredentialStore(NewBcryptHasher())
	require.NoError(t, store.AddUser(1, "alice", "a"))
	err := store.AddUser(2, "alice", "b")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewCredentialStore(NewBcryptHasher())
	require.NoError(t, store.AddUser(1, "alice", "hunter2"))

	doc := store.Snapshot()
	restored := NewCredentialStoreFromSnapshot(doc, NewBcryptHasher())

	id, err := restored.ValidatePassword("alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, 1, int(id))
}

func TestSessionIssueAndValidate(t *testing.T) {
	mgr := NewSessionManager([]byte("secret"))
	token, err := mgr.Issue(7)
	require.NoError(t, err)

	id, err := mgr.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, 7, int(id))
}

func TestSessionRevokeInvalidatesImmediately(t *testing.T) {
	mgr := NewSessionManager([]byte("secret"))
	token, err := mgr.Issue(7)
	require.NoError(t, err)

	mgr.Revoke(token)

	_, err = mgr.Validate(token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionValidateRejectsBadSignature(t *testing.T) {
	mgrA := NewSessionManager([]byte("secret-a"))
	mgrB := NewSessionManager([]byte("secret-b"))

	token, err := mgrA.Issue(1)
	require.NoError(t, err)

	_, err = mgrB.Validate(token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher()
	hashed, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, h.Compare(hashed, "correct horse battery staple"))
	assert.False(t, h.Compare(hashed, "wrong"))
}

func TestSessionTTLMatchesReference(t *testing.T) {
	assert.Equal(t, 14*24*time.Hour, SessionTTL)
}
