package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDirectory_FindByCredential(t *testing.T) {
	dir := NewLocalDirectory()
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	created, err := dir.InsertIfAbsent("Alice", hash, RoleSalesperson)
	require.NoError(t, err)
	assert.True(t, created)

	role, err := dir.FindByCredential("alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, RoleSalesperson, role)

	// Username lookups fold casing and whitespace.
	role, err = dir.FindByCredential("  ALICE ", "secret")
	require.NoError(t, err)
	assert.Equal(t, RoleSalesperson, role)
}

func TestLocalDirectory_InvalidCredentials(t *testing.T) {
	dir := NewLocalDirectory()
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	_, err = dir.InsertIfAbsent("alice", hash, RoleSalesperson)
	require.NoError(t, err)

	_, err = dir.FindByCredential("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = dir.FindByCredential("nobody", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown user and wrong password must be indistinguishable")
}

func TestLocalDirectory_InsertIfAbsentKeepsExisting(t *testing.T) {
	dir := NewLocalDirectory()
	first, err := HashPassword("first")
	require.NoError(t, err)
	second, err := HashPassword("second")
	require.NoError(t, err)

	created, err := dir.InsertIfAbsent("alice", first, RoleSalesperson)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = dir.InsertIfAbsent("alice", second, RoleRegionManager)
	require.NoError(t, err)
	assert.False(t, created)

	role, err := dir.FindByCredential("alice", "first")
	require.NoError(t, err)
	assert.Equal(t, RoleSalesperson, role, "existing entries keep their credential and role")
}

func TestLocalDirectory_RejectsEmptyUsername(t *testing.T) {
	dir := NewLocalDirectory()
	_, err := dir.InsertIfAbsent("   ", "hash", RoleSalesperson)
	assert.Error(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	dir := NewLocalDirectory()
	require.NoError(t, EnsureAdmin(dir, "admin", "admin123"))

	role, err := dir.FindByCredential("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, RoleRegionManager, role)

	// A second bootstrap is a no-op.
	require.NoError(t, EnsureAdmin(dir, "admin", "other-password"))
	_, err = dir.FindByCredential("admin", "admin123")
	assert.NoError(t, err)
}
