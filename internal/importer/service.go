package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/logging"
	"github.com/rpattn/klinik/internal/repository"
	"github.com/rpattn/klinik/internal/tabular"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrUnknownKind is returned for a kind code that is not registered.
	ErrUnknownKind = errors.New("unknown import kind")
	// ErrTooManyRows is returned when the file exceeds the row cap. Nothing is written.
	ErrTooManyRows = errors.New("too many rows")

	ErrSourceUnreadable = tabular.ErrSourceUnreadable
	ErrEmptyDataset     = tabular.ErrEmptyDataset

	errRollback = errors.New("import has row errors")
	errDryRun   = errors.New("dry run")
)

// State is a step of the import state machine.
type State string

const (
	StateNotStarted  State = "not_started"
	StateReading     State = "reading"
	StateProcessing  State = "processing"
	StateCommitting  State = "committing"
	StateRollingBack State = "rolling_back"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
)

// Config bounds a run.
type Config struct {
	MaxRows  int
	ErrorCap int
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{MaxRows: 5000, ErrorCap: 50}
}

// Request describes one import run.
type Request struct {
	Kind     string
	FilePath string
	// FileName is the name shown in logs and the audit trail; defaults to the base of FilePath.
	FileName string
	Scope    domain.Scope
	Actor    uuid.UUID
	// RemoveFile deletes FilePath once the run ends, whatever the outcome.
	RemoveFile bool
	// DryRun validates and reconciles everything, then rolls back.
	DryRun bool
}

func (r Request) displayName() string {
	if r.FileName != "" {
		return r.FileName
	}
	return filepath.Base(r.FilePath)
}

// Service runs bulk imports of clinic master data.
type Service struct {
	store    repository.Store
	logRepo  repository.ImportLogRepository
	registry *Registry
	cfg      Config
}

// NewService creates a new import service.
func NewService(store repository.Store, registry *Registry, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = defaults.MaxRows
	}
	if cfg.ErrorCap <= 0 {
		cfg.ErrorCap = defaults.ErrorCap
	}
	return &Service{
		store:    store,
		logRepo:  store.ImportLogs(),
		registry: registry,
		cfg:      cfg,
	}
}

// Registry exposes the registered kinds.
func (s *Service) Registry() *Registry {
	return s.registry
}

type run struct {
	state  State
	logger zerolog.Logger
}

func (r *run) transition(to State) {
	r.logger.Debug().Str("from", string(r.state)).Str("to", string(to)).Msg("import state")
	r.state = to
}

// Import reads the file, then validates and reconciles every row inside one
// transaction. Source problems (ErrSourceUnreadable, ErrEmptyDataset,
// ErrTooManyRows) are returned as errors before any transaction is opened.
// Row problems are reported in Report.Errors and roll the whole run back.
func (s *Service) Import(ctx context.Context, req Request) (Report, error) {
	if req.RemoveFile {
		defer s.removeFile(ctx, req.FilePath)
	}

	imp, ok := s.registry.Get(req.Kind)
	if !ok {
		return *newReport(req.Kind, s.cfg.ErrorCap), fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}

	r := &run{
		state: StateNotStarted,
		logger: logging.FromContext(ctx).With().
			Str("kind", req.Kind).
			Str("file", req.displayName()).
			Bool("dry_run", req.DryRun).
			Logger(),
	}
	report := newReport(req.Kind, s.cfg.ErrorCap)
	report.DryRun = req.DryRun
	started := time.Now()

	r.transition(StateReading)
	rows, err := s.read(req.FilePath)
	if err != nil {
		r.transition(StateFailed)
		r.logger.Warn().Err(err).Msg("import source rejected")
		s.audit(ctx, req, *report, err)
		return *report, err
	}
	report.TotalRows = len(rows)

	r.transition(StateProcessing)
	err = s.store.InTx(ctx, func(tx repository.Tx) error {
		s.process(ctx, r, tx, imp, req, rows, report)

		if report.ErrorCount > 0 {
			r.transition(StateRollingBack)
			return errRollback
		}
		if req.DryRun {
			r.transition(StateRollingBack)
			return errDryRun
		}
		r.transition(StateCommitting)
		return nil
	})

	var runErr error
	switch {
	case err == nil, errors.Is(err, errDryRun):
		report.Status = StatusSucceeded
		r.transition(StateSucceeded)
	case errors.Is(err, errRollback):
		if !req.DryRun {
			report.discardWrites()
		}
		r.transition(StateFailed)
	default:
		if r.state != StateRollingBack {
			r.transition(StateRollingBack)
		}
		report.discardWrites()
		report.addError(fmt.Sprintf("gagal menyimpan - %v", err))
		r.transition(StateFailed)
		runErr = fmt.Errorf("import %s: %w", req.Kind, err)
	}
	report.finalize()

	r.logger.Info().
		Str("status", string(report.Status)).
		Int("total_rows", report.TotalRows).
		Int("imported", report.Imported).
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("error_count", report.ErrorCount).
		Dur("duration", time.Since(started)).
		Msg("import finished")

	s.audit(ctx, req, *report, runErr)
	return *report, runErr
}

// read drains the whole file before any database work, enforcing the row cap.
func (s *Service) read(path string) ([]tabular.Row, error) {
	it, err := tabular.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()

	rows := make([]tabular.Row, 0, 64)
	for it.Next() {
		if len(rows) >= s.cfg.MaxRows {
			return nil, fmt.Errorf("%w: maksimal %d baris per file", ErrTooManyRows, s.cfg.MaxRows)
		}
		rows = append(rows, it.Row())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) process(ctx context.Context, r *run, tx repository.Tx, imp Importer, req Request, rows []tabular.Row, report *Report) {
	rc := NewRunContext(req.Scope, req.Actor)

	for _, row := range rows {
		if imp.IsBlank(row) {
			report.Skipped++
			continue
		}

		var result RowResult
		err := tx.Savepoint(ctx, func(repos repository.Repositories) error {
			var procErr error
			result, procErr = processRow(ctx, imp, rc, repos, row)
			return procErr
		})
		if err != nil {
			r.logger.Warn().Err(err).Int("row", row.Number).Msg("row persistence failed")
			report.addError(rowMessage(row.Number, fmt.Sprintf("gagal menyimpan - %v", err)))
			continue
		}

		switch result.Status {
		case RowSkipped:
			report.Skipped++
		case RowInvalid:
			report.addError(result.Message)
		case RowImported:
			report.recordAction(result.Action)
		}
	}
}

// processRow turns a panic while handling one row into that row's error.
func processRow(ctx context.Context, imp Importer, rc *RunContext, repos repository.Repositories, row tabular.Row) (result RowResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unexpected failure: %v", p)
		}
	}()
	return imp.Process(ctx, rc, repos, row)
}

func (s *Service) removeFile(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.FromContext(ctx).Warn().Err(err).Str("file", path).Msg("failed to remove uploaded file")
	}
}

// audit records the run outside its transaction so failed runs leave a trace.
func (s *Service) audit(ctx context.Context, req Request, report Report, runErr error) {
	if s.logRepo == nil || req.DryRun {
		return
	}

	errs := report.Errors
	if runErr != nil && len(errs) == 0 {
		errs = []string{runErr.Error()}
	}

	entry := domain.ImportLogEntry{
		ID:         uuid.New(),
		Kind:       req.Kind,
		FileName:   req.displayName(),
		Scope:      req.Scope,
		ActorID:    req.Actor,
		Status:     string(report.Status),
		TotalRows:  report.TotalRows,
		Imported:   report.Imported,
		Created:    report.Created,
		Updated:    report.Updated,
		ErrorCount: report.ErrorCount,
		Errors:     errs,
		CreatedAt:  time.Now(),
	}
	if err := s.logRepo.Record(ctx, entry); err != nil {
		logging.FromContext(ctx).Error().Err(err).Str("kind", req.Kind).Msg("failed to record import log")
	}
}
