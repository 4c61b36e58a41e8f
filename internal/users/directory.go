// Package users is the user directory: one table of (username, password
// hash, role) entries checked at login and provisioned by the sync engine.
// Entries are never overwritten or deleted by this service.
package users

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the username is unknown or the
// password does not match the stored hash.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Role tags a directory entry and drives the capability set of a session.
type Role string

const (
	RoleSalesperson   Role = "salesperson"
	RoleRegionManager Role = "region_manager"
)

// Entry is one user-directory record.
type Entry struct {
	ID           uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:64"`
	PasswordHash string    `json:"-" gorm:"size:191"`
	Role         Role      `json:"role" gorm:"size:32"`
	CreatedAt    time.Time `json:"created_at"`
}

// Directory exposes the two operations the core needs from the user store.
type Directory interface {
	// FindByCredential resolves a username/password pair to the entry's
	// role. Unknown users and wrong passwords are indistinguishable:
	// both return ErrInvalidCredentials.
	FindByCredential(username, password string) (Role, error)

	// InsertIfAbsent creates an entry unless the username already exists,
	// reporting whether a new entry was created. Existing credentials are
	// never overwritten.
	InsertIfAbsent(username, passwordHash string, role Role) (bool, error)
}

// NormalizeUsername folds a username the same way identifier fields are
// folded in sales rows, so directory lookups match imported values.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// EnsureAdmin provisions the bootstrap administrator (region manager role)
// if the directory does not already hold it.
func EnsureAdmin(dir Directory, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	_, err = dir.InsertIfAbsent(username, hash, RoleRegionManager)
	return err
}
