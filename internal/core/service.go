package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"estatecore/internal/adapters/records"
	"estatecore/internal/infra/persistence/memory"
	"estatecore/pkg/domain"

	"go.uber.org/zap"
)

// Service exposes higher-level transactional catalog operations. Every
// operation is instrumented: a trace span, a metrics observation, a
// structured log line, and an audit entry.
type Service struct {
	store   PersistentStore
	logger  *zap.Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
	clock   Clock
}

type serviceOptions struct {
	logger  *zap.Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
	clock   Clock
}

// ServiceOption customizes service construction.
type ServiceOption func(*serviceOptions)

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		logger:  zap.NewNop(),
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
		audit:   noopAuditRecorder{},
		clock:   ClockFunc(time.Now),
	}
}

// WithLogger overrides the structured logger (defaults to a no-op).
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRecorder overrides the metrics sink.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if rec != nil {
			o.metrics = rec
		}
	}
}

// WithTracer overrides the tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithAuditRecorder overrides the audit sink.
func WithAuditRecorder(rec AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if rec != nil {
			o.audit = rec
		}
	}
}

// WithClock overrides the time source for deterministic tests.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	options := defaultServiceOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Service{
		store:   store,
		logger:  options.logger,
		metrics: options.metrics,
		tracer:  options.tracer,
		audit:   options.audit,
		clock:   options.clock,
	}
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

func (s *Service) instrument(ctx context.Context, operation string, fn func(context.Context) error) error {
	started := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	err := fn(ctx)
	duration := s.clock.Now().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)

	entry := AuditEntry{Operation: operation, Status: AuditStatusSucceeded, At: started, Duration: duration}
	if err != nil {
		entry.Status = AuditStatusFailed
		entry.Error = err.Error()
		s.logger.Warn("catalog operation failed",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Error(err))
	} else {
		s.logger.Debug("catalog operation complete",
			zap.String("operation", operation),
			zap.Duration("duration", duration))
	}
	s.audit.Record(ctx, entry)
	return err
}

// ImportRecords rebuilds the whole catalog from flat records. Malformed
// records are skipped, logged, and returned; they never fail the batch.
// Structural conflicts and blocking rule violations roll the import back.
func (s *Service) ImportRecords(ctx context.Context, recs []RawRecord) ([]Unit, []RecordError, Result, error) {
	var forest []Unit
	var skipped []RecordError
	var res Result
	err := s.instrument(ctx, "import_records", func(ctx context.Context) error {
		built, recordErrs, err := domain.BuildForest(recs)
		if err != nil {
			return err
		}
		skipped = recordErrs
		for _, recordErr := range recordErrs {
			s.logger.Info("skipping malformed record",
				zap.String("address", recordErr.Record.Address),
				zap.String("reason", recordErr.Reason))
		}
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.ReplaceForest(built)
		})
		if err != nil {
			return err
		}
		forest = built
		return nil
	})
	return forest, skipped, res, err
}

// ImportCSV reads flat CSV records from r and rebuilds the catalog.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) ([]Unit, []RecordError, Result, error) {
	recs, readErrs, err := records.Read(r)
	if err != nil {
		return nil, nil, Result{}, err
	}
	forest, skipped, res, err := s.ImportRecords(ctx, recs)
	return forest, append(readErrs, skipped...), res, err
}

// ExportRecords flattens the committed catalog into flat records.
func (s *Service) ExportRecords(ctx context.Context) ([]RawRecord, error) {
	var recs []RawRecord
	err := s.instrument(ctx, "export_records", func(ctx context.Context) error {
		return s.store.View(ctx, func(view TransactionView) error {
			var err error
			recs, err = domain.FlattenForest(view.ListUnits())
			return err
		})
	})
	return recs, err
}

// ExportCSV flattens the committed catalog and writes it as CSV to w.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	recs, err := s.ExportRecords(ctx)
	if err != nil {
		return err
	}
	return records.Write(w, recs)
}

// RegisterUnit persists a new top-level unit tree.
func (s *Service) RegisterUnit(ctx context.Context, unit Unit) (Unit, Result, error) {
	var created Unit
	var res Result
	err := s.instrument(ctx, "register_unit", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.RegisterUnit(unit)
			return txErr
		})
		return err
	})
	return created, res, err
}

// RemoveUnit deletes a top-level unit tree.
func (s *Service) RemoveUnit(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "remove_unit", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.RemoveUnit(id)
		})
		return err
	})
	return res, err
}

// AttachUnit adds child under the node addressed by parent within the
// top-level unit rootID.
func (s *Service) AttachUnit(ctx context.Context, rootID string, parent Address, child Unit) (Unit, Result, error) {
	var updated Unit
	var res Result
	err := s.instrument(ctx, "attach_unit", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateUnit(rootID, func(root Unit) error {
				target := root.FindByAddress(parent)
				if target == nil {
					return ErrNotFound{Entity: EntityUnit, ID: parent.String()}
				}
				return target.Add(child)
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// DetachUnit removes the node addressed by target from its parent within the
// top-level unit rootID.
func (s *Service) DetachUnit(ctx context.Context, rootID string, target Address) (Unit, Result, error) {
	var updated Unit
	var res Result
	err := s.instrument(ctx, "detach_unit", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateUnit(rootID, func(root Unit) error {
				child := root.FindByAddress(target)
				if child == nil {
					return ErrNotFound{Entity: EntityUnit, ID: target.String()}
				}
				parentAddr, err := target.ParentAddress()
				if err != nil {
					return fmt.Errorf("cannot detach top-level address %s: %w", target, err)
				}
				parent := root.FindByAddress(parentAddr)
				if parent == nil {
					return ErrNotFound{Entity: EntityUnit, ID: parentAddr.String()}
				}
				return parent.Remove(child)
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// SetUnitStatus updates the sale status of a top-level unit; groups propagate
// the status to every descendant.
func (s *Service) SetUnitStatus(ctx context.Context, id string, status Status) (Unit, Result, error) {
	var updated Unit
	var res Result
	err := s.instrument(ctx, "set_unit_status", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateUnit(id, func(u Unit) error {
				u.SetStatus(status)
				return nil
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// SetUnitPricePerArea updates the unit price of a top-level unit; groups
// propagate the price to every descendant and recompute aggregates.
func (s *Service) SetUnitPricePerArea(ctx context.Context, id string, price float64) (Unit, Result, error) {
	var updated Unit
	var res Result
	err := s.instrument(ctx, "set_unit_price_per_area", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateUnit(id, func(u Unit) error {
				return u.SetPricePerArea(price)
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// SetLeafArea updates the floor area of the leaf addressed by target within
// the top-level unit rootID.
func (s *Service) SetLeafArea(ctx context.Context, rootID string, target Address, area float64) (Unit, Result, error) {
	var updated Unit
	var res Result
	err := s.instrument(ctx, "set_leaf_area", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateUnit(rootID, func(root Unit) error {
				leaf := root.FindByAddress(target)
				if leaf == nil {
					return ErrNotFound{Entity: EntityUnit, ID: target.String()}
				}
				return leaf.SetArea(area)
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// GetUnit returns the top-level unit with the given id.
func (s *Service) GetUnit(ctx context.Context, id string) (Unit, error) {
	var unit Unit
	err := s.instrument(ctx, "get_unit", func(context.Context) error {
		found, ok := s.store.GetUnit(id)
		if !ok {
			return ErrNotFound{Entity: EntityUnit, ID: id}
		}
		unit = found
		return nil
	})
	return unit, err
}

// ListUnits returns all top-level units in registration order.
func (s *Service) ListUnits(ctx context.Context) ([]Unit, error) {
	var units []Unit
	err := s.instrument(ctx, "list_units", func(context.Context) error {
		units = s.store.ListUnits()
		return nil
	})
	return units, err
}

// FindByAddress searches every tree for the node with the given address.
func (s *Service) FindByAddress(ctx context.Context, target Address) (Unit, error) {
	var unit Unit
	err := s.instrument(ctx, "find_by_address", func(context.Context) error {
		found := s.store.FindByAddress(target)
		if found == nil {
			return ErrNotFound{Entity: EntityUnit, ID: target.String()}
		}
		unit = found
		return nil
	})
	return unit, err
}

// ErrNotFound is returned when reference validation fails within
// transactional helpers.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
