package importer

import (
	"context"
	"fmt"
	"sort"

	"github.com/univinfo/univload/internal/registry"
	"github.com/univinfo/univload/internal/sheet"
	"github.com/univinfo/univload/pkg/univload"
)

// Importer loads registry rows into a Session.
// An Importer holds no per-run state and may be reused.
type Importer struct {
	batchSize int
	logger    univload.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithBatchSize sets the number of rows between checkpoint commits.
func WithBatchSize(n int) Option {
	return func(im *Importer) { im.batchSize = n }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l univload.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// New creates an Importer. It fails with univload.ErrInvalidConfig when the
// batch size is below 1.
func New(opts ...Option) (*Importer, error) {
	im := &Importer{
		batchSize: univload.DefaultBatchSize,
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.batchSize < 1 {
		return nil, fmt.Errorf("batch size must be at least 1, got %d: %w", im.batchSize, univload.ErrInvalidConfig)
	}
	if im.logger == nil {
		im.logger = nopLogger{}
	}
	return im, nil
}

// Result summarizes one Import call.
type Result struct {
	Total               int
	Inserted            int
	CorporationsCreated int
	Failures            []RowFailure
	Checkpoints         []int
	Commits             int
}

// Failed returns the number of rows that were not stored.
func (r *Result) Failed() int { return len(r.Failures) }

// staged is a row written to the session but not yet committed.
type staged struct {
	index int
	line  int
	code  string
}

type run struct {
	*Importer
	sess    Session
	res     *Result
	pending []staged
}

// Import writes every row of table through sess.
//
// Row failures are logged and collected in the Result; they never stop the
// run. The returned error is non-nil only when the header lacks required
// columns (nothing is written) or ctx is cancelled (uncommitted rows are
// discarded). The caller owns sess and must Close it.
func (im *Importer) Import(ctx context.Context, table *sheet.Table, sess Session) (*Result, error) {
	if missing := table.MissingColumns(RequiredColumns); len(missing) > 0 {
		for _, col := range missing {
			im.logger.Error("required column %q is missing from the spreadsheet", col)
		}
		return nil, &MissingColumnsError{Columns: missing}
	}

	r := &run{Importer: im, sess: sess, res: &Result{Total: table.Len()}}
	im.logger.Verbose("importing %d rows with batch size %d", table.Len(), im.batchSize)

	for i, row := range table.Rows() {
		if err := ctx.Err(); err != nil {
			im.logger.Error("import cancelled before row %d, discarding %d uncommitted rows", i, len(r.pending))
			r.pending = nil
			r.finish()
			return r.res, err
		}

		if err := r.importRow(ctx, i, row); err != nil {
			r.fail(RowFailure{Index: i, Line: row.Line, Code: row.Get(ColCode), Err: err})
		}

		if i%im.batchSize == 0 {
			if r.commit(ctx) {
				r.res.Checkpoints = append(r.res.Checkpoints, i)
				im.logger.Info("%d rows inserted.", r.res.Inserted)
			}
		}
	}

	r.commit(ctx)
	r.finish()
	im.logger.Info("import finished: %d of %d rows inserted, %d failed, %d corporations created",
		r.res.Inserted, r.res.Total, r.res.Failed(), r.res.CorporationsCreated)
	return r.res, nil
}

func (r *run) importRow(ctx context.Context, i int, row sheet.Row) error {
	corpID, err := r.resolveCorporation(ctx, row)
	if err != nil {
		return err
	}
	u, err := mapRow(row, corpID)
	if err != nil {
		return err
	}
	if err := r.sess.AddUniversity(ctx, u); err != nil {
		return err
	}
	r.pending = append(r.pending, staged{index: i, line: row.Line, code: row.Get(ColCode)})
	return nil
}

// resolveCorporation returns the id of the row's corporation, creating and
// committing it on first reference. An empty name yields nil.
func (r *run) resolveCorporation(ctx context.Context, row sheet.Row) (*int64, error) {
	name := row.Get(ColCorporation)
	if name == "" {
		return nil, nil
	}
	if err := registry.CheckLength(ColCorporation, name); err != nil {
		return nil, &FieldError{Column: ColCorporation, Value: name, Err: err}
	}

	corp, ok, err := r.sess.FindCorporation(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find corporation %q: %w", name, err)
	}
	if ok {
		return &corp.ID, nil
	}

	corp, err = r.sess.CreateCorporation(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create corporation %q: %w", name, err)
	}
	if !r.commit(ctx) {
		return nil, fmt.Errorf("commit corporation %q: not persisted", name)
	}
	r.res.CorporationsCreated++
	r.logger.Info("new corporation %q added", name)
	return &corp.ID, nil
}

// commit persists everything staged. On failure the staged rows are moved
// to Failures and false is returned.
func (r *run) commit(ctx context.Context) bool {
	if err := r.sess.Commit(ctx); err != nil {
		r.logger.Error("commit failed, %d staged rows lost: %v", len(r.pending), err)
		for _, p := range r.pending {
			r.res.Failures = append(r.res.Failures, RowFailure{
				Index: p.index,
				Line:  p.line,
				Code:  p.code,
				Err:   fmt.Errorf("commit: %w", err),
			})
		}
		r.pending = nil
		return false
	}
	r.res.Commits++
	r.res.Inserted += len(r.pending)
	r.pending = nil
	return true
}

func (r *run) fail(f RowFailure) {
	r.logger.Error("Error inserting row %d: %v", f.Index, f.Err)
	r.res.Failures = append(r.res.Failures, f)
}

func (r *run) finish() {
	sort.SliceStable(r.res.Failures, func(a, b int) bool {
		return r.res.Failures[a].Index < r.res.Failures[b].Index
	})
}

type nopLogger struct{}

func (nopLogger) Verbose(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})    {}
func (nopLogger) Warn(string, ...interface{})    {}
func (nopLogger) Error(string, ...interface{})   {}
