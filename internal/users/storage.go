package users

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LocalDirectory is an in-memory Directory, used in tests and wherever no
// database is configured.
type LocalDirectory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

var _ Directory = (*LocalDirectory)(nil)

func NewLocalDirectory() *LocalDirectory {
	return &LocalDirectory{entries: map[string]*Entry{}}
}

func (l *LocalDirectory) FindByCredential(username, password string) (Role, error) {
	l.mu.RLock()
	e, ok := l.entries[NormalizeUsername(username)]
	l.mu.RUnlock()
	if !ok {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return e.Role, nil
}

func (l *LocalDirectory) InsertIfAbsent(username, passwordHash string, role Role) (bool, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return false, errors.New("empty username")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[username]; ok {
		return false, nil
	}
	l.entries[username] = &Entry{Username: username, PasswordHash: passwordHash, Role: role}
	return true, nil
}

// GormDirectory persists directory entries in a relational table.
type GormDirectory struct {
	db *gorm.DB
}

var _ Directory = (*GormDirectory)(nil)

// NewGormDirectory migrates the user table and returns a directory handle.
func NewGormDirectory(db *gorm.DB) (*GormDirectory, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate users table: %w", err)
	}
	return &GormDirectory{db: db}, nil
}

func (g *GormDirectory) FindByCredential(username, password string) (Role, error) {
	var e Entry
	err := g.db.Where("username = ?", NormalizeUsername(username)).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return e.Role, nil
}

func (g *GormDirectory) InsertIfAbsent(username, passwordHash string, role Role) (bool, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return false, errors.New("empty username")
	}
	e := Entry{Username: username, PasswordHash: passwordHash, Role: role}
	res := g.db.Where("username = ?", username).FirstOrCreate(&e)
	if res.Error != nil {
		return false, fmt.Errorf("insert user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
