// Package pgstore implements importer.Session on PostgreSQL through pgx.
//
// A Session holds one transaction at a time, opened on first use and
// finished by Commit. Every statement runs inside its own savepoint, so a
// failed row is rolled back alone and the transaction stays usable.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/univinfo/univload/internal/registry"
)

const (
	queryFindCorporation   = `SELECT id, name FROM tbl_corporations WHERE name = $1`
	queryInsertCorporation = `INSERT INTO tbl_corporations (name) VALUES ($1) RETURNING id`
	queryInsertUniversity  = `
		INSERT INTO tbl_university_info (
			u_code, u_type, u_name, main_branch, academic_system, is_remote,
			region, establishment_type, related_laws, corporation_id, u_status
		) VALUES (
			$1, $2::text::school_type_enum, $3, $4::text::main_branch_enum, $5, $6,
			$7::text::region_enum, $8::text::establishment_type_enum, $9, $10,
			$11::text::school_status_enum
		) RETURNING id`
	queryListCorporations = `SELECT id, name FROM tbl_corporations ORDER BY name`
)

// ErrClosed is returned by every method after Close.
var ErrClosed = errors.New("session closed")

// Session is an importer.Session backed by a pgx pool.
// Not safe for concurrent use.
type Session struct {
	pool   *pgxpool.Pool
	tx     pgx.Tx
	closed bool
}

// NewSession returns a Session. No connection is held until the first write.
func NewSession(pool *pgxpool.Pool) *Session {
	return &Session{pool: pool}
}

func (s *Session) FindCorporation(ctx context.Context, name string) (registry.Corporation, bool, error) {
	var c registry.Corporation
	err := s.inSavepoint(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, queryFindCorporation, name).Scan(&c.ID, &c.Name)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return registry.Corporation{}, false, nil
	}
	if err != nil {
		return registry.Corporation{}, false, err
	}
	return c, true, nil
}

func (s *Session) CreateCorporation(ctx context.Context, name string) (registry.Corporation, error) {
	c := registry.Corporation{Name: name}
	err := s.inSavepoint(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, queryInsertCorporation, name).Scan(&c.ID)
	})
	if err != nil {
		return registry.Corporation{}, describe(err)
	}
	return c, nil
}

func (s *Session) AddUniversity(ctx context.Context, u *registry.University) error {
	err := s.inSavepoint(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, queryInsertUniversity,
			u.Code, string(u.Type), u.Name, string(u.Campus), u.AcademicSystem, u.IsRemote,
			string(u.Region), string(u.EstablishmentType), u.RelatedLaws, u.CorporationID,
			string(u.Status),
		).Scan(&u.ID)
	})
	if err != nil {
		return describe(err)
	}
	return nil
}

// Commit commits the open transaction, if any.
func (s *Session) Commit(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close rolls back anything uncommitted and returns the connection.
func (s *Session) Close(ctx context.Context) error {
	s.closed = true
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

func (s *Session) inSavepoint(ctx context.Context, fn func(pgx.Tx) error) error {
	if s.closed {
		return ErrClosed
	}
	if s.tx == nil {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		s.tx = tx
	}

	// Begin on a pgx.Tx issues SAVEPOINT; Rollback and Commit on it map
	// to ROLLBACK TO SAVEPOINT and RELEASE SAVEPOINT.
	sp, err := s.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(sp); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to savepoint: %w", rbErr))
		}
		return err
	}
	return sp.Commit(ctx)
}

// describe prefixes constraint violations with the constraint name.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName != "" {
		return fmt.Errorf("violates %s: %w", pgErr.ConstraintName, err)
	}
	return err
}

// ListCorporations returns every corporation ordered by name.
func ListCorporations(ctx context.Context, pool *pgxpool.Pool) ([]registry.Corporation, error) {
	rows, err := pool.Query(ctx, queryListCorporations)
	if err != nil {
		return nil, fmt.Errorf("list corporations: %w", err)
	}
	corps, err := pgx.CollectRows(rows, pgx.RowToStructByPos[registry.Corporation])
	if err != nil {
		return nil, fmt.Errorf("list corporations: %w", err)
	}
	return corps, nil
}
