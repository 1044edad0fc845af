package importer

import (
	"context"
	"fmt"

	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/repository"
	"github.com/rpattn/klinik/internal/tabular"
	"github.com/rpattn/klinik/pkg/validator"

	"github.com/google/uuid"
)

// Action tells whether reconciliation inserted or updated a record.
type Action int

const (
	ActionCreated Action = iota + 1
	ActionUpdated
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

type outcomeKind int

const (
	outcomeSkip outcomeKind = iota
	outcomeInvalid
	outcomeValid
)

// Outcome classifies one row: skipped, invalid with a message, or valid with typed fields.
type Outcome[T any] struct {
	kind    outcomeKind
	message string
	fields  T
}

func Skip[T any]() Outcome[T] {
	return Outcome[T]{kind: outcomeSkip}
}

func Invalid[T any](message string) Outcome[T] {
	return Outcome[T]{kind: outcomeInvalid, message: message}
}

func Valid[T any](fields T) Outcome[T] {
	return Outcome[T]{kind: outcomeValid, fields: fields}
}

func (o Outcome[T]) IsSkip() bool    { return o.kind == outcomeSkip }
func (o Outcome[T]) IsInvalid() bool { return o.kind == outcomeInvalid }
func (o Outcome[T]) IsValid() bool   { return o.kind == outcomeValid }

// Message is the row error for invalid outcomes.
func (o Outcome[T]) Message() string { return o.message }

// Fields returns the typed record of a valid outcome.
func (o Outcome[T]) Fields() T { return o.fields }

// RunContext carries the tenant, the acting user and the natural keys already
// accepted in the current file.
type RunContext struct {
	Scope domain.Scope
	Actor uuid.UUID

	seen map[string]int
}

// NewRunContext starts a fresh per-file context.
func NewRunContext(scope domain.Scope, actor uuid.UUID) *RunContext {
	return &RunContext{Scope: scope, Actor: actor, seen: make(map[string]int)}
}

// RowStatus is the per-row result handed back to the orchestrator.
type RowStatus int

const (
	RowSkipped RowStatus = iota
	RowInvalid
	RowImported
)

type RowResult struct {
	Status   RowStatus
	Message  string
	Action   Action
	EntityID uuid.UUID
}

// Importer is the kind-agnostic view of a Kind used by the orchestrator and registry.
type Importer interface {
	Name() string
	Title() string
	Fields() []validator.FieldDefinition
	IsBlank(row tabular.Row) bool
	Process(ctx context.Context, rc *RunContext, repos repository.Repositories, row tabular.Row) (RowResult, error)
}

// Kind describes how one entity type is validated and reconciled.
type Kind[T any] struct {
	// Code is the kind key used in URLs and CLI flags, e.g. "diagnosa".
	Code  string
	Label string
	// KeyField is the natural key column as it appears in messages, e.g. "kode".
	KeyField  string
	Validator *validator.RowValidator

	Decode     func(validator.ValidationResult) T
	NaturalKey func(T) string
	// Resolve checks references against persisted data. A non-empty message
	// marks the row invalid; an error is an infrastructure failure.
	Resolve   func(ctx context.Context, rc *RunContext, repos repository.Repositories, fields *T) (string, error)
	Reconcile func(ctx context.Context, rc *RunContext, repos repository.Repositories, fields T) (Action, uuid.UUID, error)
}

var _ Importer = (*Kind[struct{}])(nil)

func (k *Kind[T]) Name() string { return k.Code }

func (k *Kind[T]) Title() string { return k.Label }

func (k *Kind[T]) Fields() []validator.FieldDefinition { return k.Validator.Fields() }

func (k *Kind[T]) IsBlank(row tabular.Row) bool {
	return k.Validator.IsBlank(row.Values)
}

// Validate classifies row. Lookups run against repos, normally inside the
// run's transaction.
func (k *Kind[T]) Validate(ctx context.Context, rc *RunContext, repos repository.Repositories, row tabular.Row) (Outcome[T], error) {
	if k.IsBlank(row) {
		return Skip[T](), nil
	}

	result := k.Validator.Validate(row.Values)
	if !result.IsValid {
		return Invalid[T](rowMessage(row.Number, result.Messages())), nil
	}

	fields := k.Decode(result)

	key := k.NaturalKey(fields)
	if first, dup := rc.seen[key]; dup {
		msg := fmt.Sprintf("%s '%s' duplikat dengan baris %d", k.KeyField, result.String(k.KeyField), first)
		return Invalid[T](rowMessage(row.Number, msg)), nil
	}

	if k.Resolve != nil {
		msg, err := k.Resolve(ctx, rc, repos, &fields)
		if err != nil {
			return Outcome[T]{}, err
		}
		if msg != "" {
			return Invalid[T](rowMessage(row.Number, msg)), nil
		}
	}

	rc.seen[key] = row.Number
	return Valid(fields), nil
}

// Process validates row and reconciles it when valid.
func (k *Kind[T]) Process(ctx context.Context, rc *RunContext, repos repository.Repositories, row tabular.Row) (RowResult, error) {
	outcome, err := k.Validate(ctx, rc, repos, row)
	if err != nil {
		return RowResult{}, err
	}

	switch {
	case outcome.IsSkip():
		return RowResult{Status: RowSkipped}, nil
	case outcome.IsInvalid():
		return RowResult{Status: RowInvalid, Message: outcome.Message()}, nil
	}

	action, id, err := k.Reconcile(ctx, rc, repos, outcome.Fields())
	if err != nil {
		return RowResult{}, err
	}
	return RowResult{Status: RowImported, Action: action, EntityID: id}, nil
}

func rowMessage(number int, message string) string {
	return fmt.Sprintf("Baris %d: %s", number, message)
}
