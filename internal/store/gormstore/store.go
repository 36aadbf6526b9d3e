// Package gormstore implements importer.Session on SQLite through GORM, for
// loading the registry into a local file without a PostgreSQL server.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/univinfo/univload/internal/registry"
)

// ErrClosed is returned by every Session method after Close.
var ErrClosed = errors.New("session closed")

// Open opens (creating if needed) the SQLite database at path and brings
// its tables up to date. Use ":memory:" for a throwaway database.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One connection: keeps ":memory:" databases alive and the pragma below in effect.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := db.AutoMigrate(&corporationModel{}, &universityModel{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return db, nil
}

// Close closes the underlying database handle.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Session is an importer.Session backed by GORM. A transaction is opened on
// first use; each statement runs under a savepoint so a failed row leaves
// the rest of the transaction intact. Not safe for concurrent use.
type Session struct {
	db     *gorm.DB
	tx     *gorm.DB
	seq    int
	closed bool
}

// NewSession returns a Session over db.
func NewSession(db *gorm.DB) *Session {
	return &Session{db: db}
}

func (s *Session) FindCorporation(ctx context.Context, name string) (registry.Corporation, bool, error) {
	var m corporationModel
	err := s.inSavepoint(ctx, func(tx *gorm.DB) error {
		return tx.Where("name = ?", name).Take(&m).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return registry.Corporation{}, false, nil
	}
	if err != nil {
		return registry.Corporation{}, false, err
	}
	return registry.Corporation{ID: m.ID, Name: m.Name}, true, nil
}

func (s *Session) CreateCorporation(ctx context.Context, name string) (registry.Corporation, error) {
	m := corporationModel{Name: name}
	if err := s.inSavepoint(ctx, func(tx *gorm.DB) error { return tx.Create(&m).Error }); err != nil {
		return registry.Corporation{}, err
	}
	return registry.Corporation{ID: m.ID, Name: m.Name}, nil
}

func (s *Session) AddUniversity(ctx context.Context, u *registry.University) error {
	m := toModel(u)
	if err := s.inSavepoint(ctx, func(tx *gorm.DB) error { return tx.Omit("Corporation").Create(m).Error }); err != nil {
		return err
	}
	u.ID = m.ID
	return nil
}

func (s *Session) Commit(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Session) Close(ctx context.Context) error {
	s.closed = true
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Rollback().Error
}

func (s *Session) inSavepoint(ctx context.Context, fn func(*gorm.DB) error) error {
	if s.closed {
		return ErrClosed
	}
	if s.tx == nil {
		tx := s.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fmt.Errorf("begin: %w", tx.Error)
		}
		s.tx = tx
	}

	s.seq++
	name := fmt.Sprintf("sp_%d", s.seq)
	if err := s.tx.SavePoint(name).Error; err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(s.tx.WithContext(ctx)); err != nil {
		if rbErr := s.tx.RollbackTo(name).Error; rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to savepoint: %w", rbErr))
		}
		return err
	}
	return nil
}

// ListCorporations returns every corporation ordered by name.
func ListCorporations(ctx context.Context, db *gorm.DB) ([]registry.Corporation, error) {
	var models []corporationModel
	if err := db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list corporations: %w", err)
	}
	out := make([]registry.Corporation, len(models))
	for i, m := range models {
		out[i] = registry.Corporation{ID: m.ID, Name: m.Name}
	}
	return out, nil
}

// ListUniversities returns every stored record ordered by id.
func ListUniversities(ctx context.Context, db *gorm.DB) ([]registry.University, error) {
	var models []universityModel
	if err := db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	out := make([]registry.University, len(models))
	for i := range models {
		out[i] = fromModel(&models[i])
	}
	return out, nil
}
