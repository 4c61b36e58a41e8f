// Package importer reconciles the external row source with the sales table
// once per session bootstrap.
package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"sales_desk/internal/rowsource"
	"sales_desk/internal/sales"
	"sales_desk/internal/users"
)

// SyncError reports a row source that could not be read. It is non-fatal:
// the session proceeds with whatever was in the sales table beforehand.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string { return fmt.Sprintf("sync: %v", e.Err) }
func (e *SyncError) Unwrap() error { return e.Err }

// Result reports what one sync pass did.
type Result struct {
	RowsImported int `json:"rows_imported"`
	RowsSkipped  int `json:"rows_skipped"`
	UsersCreated int `json:"users_created"`
}

// Engine pulls rows from an external source into the sales table and
// provisions directory entries for every salesperson and region manager
// name seen for the first time.
//
// The default policy is append-only, mirroring the source system: repeated
// syncs over overlapping data re-add the rows. WithFingerprintDedup opts
// into skipping rows already present by content fingerprint instead.
type Engine struct {
	store       sales.Storage
	directory   users.Directory
	logger      *zap.Logger
	defaultHash string
	dedup       bool
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithFingerprintDedup makes Sync skip rows whose normalized-field
// fingerprint already exists in the store.
func WithFingerprintDedup() Option {
	return func(e *Engine) { e.dedup = true }
}

// NewEngine creates a sync engine. defaultPassword is the shared credential
// for provisioned directory entries; it is hashed once here rather than per
// row.
func NewEngine(store sales.Storage, directory users.Directory, logger *zap.Logger, defaultPassword string, opts ...Option) (*Engine, error) {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	hash, err := users.HashPassword(defaultPassword)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		store:       store,
		directory:   directory,
		logger:      logger,
		defaultHash: hash,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Sync reads every row from the source, normalizes it, derives the order
// identifier and total, and appends it to the sales table. Existing rows
// are never replaced or deleted. Malformed rows are skipped and counted,
// not fatal; a row source that cannot be read at all yields a *SyncError.
func (e *Engine) Sync(source rowsource.Source) (Result, error) {
	rows, err := source.Rows()
	if err != nil {
		e.logger.Warn("row source unreadable, continuing without import", zap.Error(err))
		return Result{}, &SyncError{Err: err}
	}

	seen := map[string]struct{}{}
	if e.dedup {
		existing, err := e.store.ScanAll()
		if err != nil {
			return Result{}, &SyncError{Err: err}
		}
		for _, o := range existing {
			if o.Fingerprint != "" {
				seen[o.Fingerprint] = struct{}{}
			}
		}
	}

	var res Result
	provisioned := map[string]struct{}{}
	for _, raw := range rows {
		row, err := sales.NormalizeRow(raw)
		if err != nil {
			e.logger.Warn("skipping malformed row", zap.Error(err), zap.String("customer", raw.CustomerName))
			res.RowsSkipped++
			continue
		}
		fp := fingerprint(row)
		if e.dedup {
			if _, ok := seen[fp]; ok {
				res.RowsSkipped++
				continue
			}
			seen[fp] = struct{}{}
		}

		now := e.now()
		o, err := sales.BuildOrder(row, sales.NewOrderID(now), now)
		if err != nil {
			e.logger.Warn("skipping malformed row", zap.Error(err), zap.String("customer", raw.CustomerName))
			res.RowsSkipped++
			continue
		}
		o.Fingerprint = fp
		if err := e.store.Insert(o); err != nil {
			if !errors.Is(err, sales.ErrDuplicateID) {
				e.logger.Warn("skipping row, insert failed", zap.Error(err), zap.String("order_id", o.OrderID))
				res.RowsSkipped++
				continue
			}
			o.OrderID = sales.RetryOrderID(e.now())
			if err := e.store.Insert(o); err != nil {
				e.logger.Warn("skipping row, insert failed", zap.Error(err), zap.String("order_id", o.OrderID))
				res.RowsSkipped++
				continue
			}
		}
		res.RowsImported++

		res.UsersCreated += e.provision(provisioned, row.Salesperson, users.RoleSalesperson)
		res.UsersCreated += e.provision(provisioned, row.RegionManager, users.RoleRegionManager)
	}

	e.logger.Info("sync completed",
		zap.Int("rows_imported", res.RowsImported),
		zap.Int("rows_skipped", res.RowsSkipped),
		zap.Int("users_created", res.UsersCreated),
	)
	return res, nil
}

// provision ensures a directory entry exists for the given name, with
// insert-if-absent semantics so existing credentials are never overwritten.
func (e *Engine) provision(done map[string]struct{}, username string, role users.Role) int {
	key := string(role) + ":" + username
	if _, ok := done[key]; ok {
		return 0
	}
	done[key] = struct{}{}
	created, err := e.directory.InsertIfAbsent(username, e.defaultHash, role)
	if err != nil {
		e.logger.Warn("failed to provision user", zap.String("username", username), zap.Error(err))
		return 0
	}
	if !created {
		return 0
	}
	return 1
}

// fingerprint hashes the normalized row fields. Two rows with the same
// fingerprint carry the same content regardless of source formatting.
func fingerprint(r sales.Row) string {
	parts := []string{
		r.CustomerName,
		r.CustomerType,
		r.Product,
		strconv.Itoa(r.Quantity),
		strconv.FormatFloat(r.UnitPrice, 'f', -1, 64),
		strconv.FormatFloat(r.Discount, 'f', -1, 64),
		strconv.FormatFloat(r.ShippingCost, 'f', -1, 64),
		sales.NormalizeKey(r.Region),
		sales.NormalizeKey(r.StoreLocation),
		sales.NormalizeKey(r.Salesperson),
		sales.NormalizeKey(r.RegionManager),
		r.PaymentMethod,
		r.Promotion,
		r.Returned,
		r.OrderDate.UTC().Format("2006-01-02"),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
