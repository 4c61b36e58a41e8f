// Package config reads service configuration from the environment.
// main imports godotenv's autoload, so a local .env file is honored.
package config

import "os"

// Config carries everything the router needs to wire the service.
type Config struct {
	Addr            string // HTTP listen address
	DBPath          string // SQLite database file
	WorkbookPath    string // xlsx row source for the bootstrap sync
	AdminUser       string // bootstrap administrator (region manager role)
	AdminPassword   string
	DefaultPassword string // shared credential for sync-provisioned users
	SyncDedup       bool   // fingerprint dedup instead of plain append
}

// Load builds a Config from environment variables with local-friendly
// defaults.
func Load() Config {
	return Config{
		Addr:            getenvDefault("ADDR", ":8081"),
		DBPath:          getenvDefault("SALES_DB", "sales.db"),
		WorkbookPath:    getenvDefault("SALES_WORKBOOK", "customers.xlsx"),
		AdminUser:       getenvDefault("ADMIN_USER", "admin"),
		AdminPassword:   getenvDefault("ADMIN_PASSWORD", "admin123"),
		DefaultPassword: getenvDefault("DEFAULT_PASSWORD", "password123"),
		SyncDedup:       os.Getenv("SYNC_DEDUP") == "true",
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
