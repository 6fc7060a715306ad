package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/variant-catalog/pkg/db"
	"github.com/angelmondragon/variant-catalog/pkg/db/models"
	"github.com/angelmondragon/variant-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/variant-catalog/pkg/errors"
	"github.com/angelmondragon/variant-catalog/pkg/logger"
	"github.com/angelmondragon/variant-catalog/pkg/metrics"
	"github.com/angelmondragon/variant-catalog/pkg/pagination"
	"github.com/angelmondragon/variant-catalog/pkg/validators"
)

// Entry is the quantity of one variant at one location.
type Entry struct {
	VariantID  uint64 `json:"variant_id"`
	LocationID string `json:"location_id"`
	OnHand     int64  `json:"on_hand"`
	Reserved   int64  `json:"reserved"`
	Available  int64  `json:"available"`
}

// MovementResult reports whether an operation applied and the entry after it.
// An INSUFFICIENT_STOCK outcome leaves the entry untouched.
type MovementResult struct {
	Outcome    enums.MovementOutcome `json:"outcome"`
	Entry      Entry                 `json:"entry"`
	MovementID uint64                `json:"movement_id,omitempty"`
}

func (r *MovementResult) Applied() bool {
	return r != nil && r.Outcome == enums.MovementOutcomeApplied
}

// Option decorates the journal row written by an operation.
type Option func(*models.StockMovement)

// WithReference tags the journal row, e.g. with an order or legacy row id.
func WithReference(ref string) Option {
	return func(m *models.StockMovement) {
		if ref != "" {
			m.Reference = &ref
		}
	}
}

// Service is the per-location stock ledger.
type Service interface {
	Receive(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64, opts ...Option) (*MovementResult, error)
	Reserve(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64, opts ...Option) (*MovementResult, error)
	CommitReservation(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64, opts ...Option) (*MovementResult, error)
	ReleaseReservation(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64, opts ...Option) (*MovementResult, error)
	Adjust(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, delta int64, opts ...Option) (*MovementResult, error)
	Level(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string) (*Entry, error)
	LevelsByVariant(ctx context.Context, tenantID uuid.UUID, variantID uint64) ([]Entry, error)
	Movements(ctx context.Context, tenantID uuid.UUID, variantID uint64, limit int) ([]models.StockMovement, error)
	WithTx(tx *gorm.DB) Service
}

type service struct {
	repo    *Repository
	conn    *gorm.DB
	logg    *logger.Logger
	metrics *metrics.StockMetrics
}

// NewService constructs the stock ledger.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger, m *metrics.StockMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, conn: dbClient.DB(), logg: logg, metrics: m}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), conn: tx, logg: s.logg, metrics: s.metrics}
}

type entryKey struct {
	VariantID  uint64 `json:"variant_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required,max=64,location"`
}

// writeFunc performs the conditional write and reports whether its guard held.
type writeFunc func(ctx context.Context, repo *Repository) (bool, error)

type operation struct {
	kind     enums.MovementKind
	quantity int64
	// strict operations treat a failed guard as a protocol violation.
	strict bool
	write  writeFunc
}

func (s *service) Receive(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64, opts ...Option) (*MovementResult, error) {
	if err := validators.Var("quantity", qty, "gt=0"); err != nil {
		return nil, err
	}
	return s.apply(ctx, tenantID, variantID, locationID, operation{
		kind:     enums.MovementKindReceive,
		quantity: qty,
		write: func(ctx context.Context, repo *Repository) (bool, error) {
			return true, repo.AddOnHand(ctx, tenantID, variantID, locationID, qty)
		},
	}, opts)
}

func (s *service) Reserve(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64, opts ...Option) (*MovementResult, error) {
	if err := validators.Var("quantity", qty, "gt=0"); err != nil {
		return nil, err
	}
	return s.apply(ctx, tenantID, variantID, locationID, operation{
		kind:     enums.MovementKindReserve,
		quantity: qty,
		write: func(ctx context.Context, repo *Repository) (bool, error) {
			return repo.Reserve(ctx, tenantID, variantID, locationID, qty)
		},
	}, opts)
}

func (s *service) CommitReservation(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64, opts ...Option) (*MovementResult, error) {
	if err := validators.Var("quantity", qty, "gt=0"); err != nil {
		return nil, err
	}
	return s.apply(ctx, tenantID, variantID, locationID, operation{
		kind:     enums.MovementKindCommit,
		quantity: qty,
		strict:   true,
		write: func(ctx context.Context, repo *Repository) (bool, error) {
			return repo.Commit(ctx, tenantID, variantID, locationID, qty)
		},
	}, opts)
}

func (s *service) ReleaseReservation(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, qty int64, opts ...Option) (*MovementResult, error) {
	if err := validators.Var("quantity", qty, "gt=0"); err != nil {
		return nil, err
	}
	return s.apply(ctx, tenantID, variantID, locationID, operation{
		kind:     enums.MovementKindRelease,
		quantity: qty,
		strict:   true,
		write: func(ctx context.Context, repo *Repository) (bool, error) {
			return repo.Release(ctx, tenantID, variantID, locationID, qty)
		},
	}, opts)
}

// Adjust corrects on_hand by delta. Positive deltas create the entry on first
// use; negative deltas never take on_hand below reserved.
func (s *service) Adjust(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, delta int64, opts ...Option) (*MovementResult, error) {
	if err := validators.Var("delta", delta, "ne=0"); err != nil {
		return nil, err
	}
	return s.apply(ctx, tenantID, variantID, locationID, operation{
		kind:     enums.MovementKindAdjust,
		quantity: delta,
		write: func(ctx context.Context, repo *Repository) (bool, error) {
			if delta > 0 {
				return true, repo.AddOnHand(ctx, tenantID, variantID, locationID, delta)
			}
			return repo.Adjust(ctx, tenantID, variantID, locationID, delta)
		},
	}, opts)
}

// apply runs one ledger operation: conditional write, read-back and journal
// row inside a single transaction.
func (s *service) apply(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string, op operation, opts []Option) (*MovementResult, error) {
	if err := validators.Struct(entryKey{VariantID: variantID, LocationID: locationID}); err != nil {
		return nil, err
	}

	var result *MovementResult
	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := ensureVariant(ctx, repo, tenantID, variantID); err != nil {
			return err
		}

		applied, err := op.write(ctx, repo)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("db: %s stock", op.kind))
		}

		entry, err := s.readEntry(ctx, repo, tenantID, variantID, locationID)
		if err != nil {
			return err
		}

		if !applied {
			if op.strict {
				return pkgerrors.New(pkgerrors.CodeInconsistentReservation, fmt.Sprintf("%s exceeds reserved quantity", op.kind)).
					WithDetails(map[string]any{
						"variant_id":  variantID,
						"location_id": locationID,
						"quantity":    op.quantity,
						"reserved":    entry.Reserved,
					})
			}
			result = &MovementResult{Outcome: enums.MovementOutcomeInsufficientStock, Entry: *entry}
			return nil
		}

		movement := &models.StockMovement{
			TenantID:      tenantID,
			VariantID:     variantID,
			LocationID:    locationID,
			Kind:          op.kind,
			Quantity:      op.quantity,
			OnHandAfter:   entry.OnHand,
			ReservedAfter: entry.Reserved,
		}
		for _, opt := range opts {
			opt(movement)
		}
		if err := repo.CreateMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: write stock movement")
		}
		result = &MovementResult{Outcome: enums.MovementOutcomeApplied, Entry: *entry, MovementID: movement.ID}
		return nil
	})
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeInconsistentReservation) {
			s.metrics.IncInconsistentReservation()
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"tenant_id":   tenantID.String(),
				"variant_id":  variantID,
				"location_id": locationID,
				"kind":        string(op.kind),
				"quantity":    op.quantity,
			})
			s.logg.Error(logCtx, "reservation protocol violated", err)
		}
		return nil, err
	}

	s.metrics.IncMovement(string(op.kind), string(result.Outcome))
	return result, nil
}

func (s *service) readEntry(ctx context.Context, repo *Repository, tenantID uuid.UUID, variantID uint64, locationID string) (*Entry, error) {
	row, err := repo.FindEntry(ctx, tenantID, variantID, locationID)
	if err != nil {
		if db.IsNotFound(err) {
			return &Entry{VariantID: variantID, LocationID: locationID}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: read stock entry")
	}
	entry := toEntry(*row)
	return &entry, nil
}

// Level returns the entry for the location, zero valued when it was never
// created.
func (s *service) Level(ctx context.Context, tenantID uuid.UUID, variantID uint64, locationID string) (*Entry, error) {
	if err := validators.Struct(entryKey{VariantID: variantID, LocationID: locationID}); err != nil {
		return nil, err
	}
	if err := ensureVariant(ctx, s.repo, tenantID, variantID); err != nil {
		return nil, err
	}
	return s.readEntry(ctx, s.repo, tenantID, variantID, locationID)
}

func (s *service) LevelsByVariant(ctx context.Context, tenantID uuid.UUID, variantID uint64) ([]Entry, error) {
	if err := ensureVariant(ctx, s.repo, tenantID, variantID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListEntries(ctx, tenantID, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stock entries")
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toEntry(row))
	}
	return entries, nil
}

func (s *service) Movements(ctx context.Context, tenantID uuid.UUID, variantID uint64, limit int) ([]models.StockMovement, error) {
	if err := ensureVariant(ctx, s.repo, tenantID, variantID); err != nil {
		return nil, err
	}
	movements, err := s.repo.ListMovements(ctx, tenantID, variantID, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stock movements")
	}
	return movements, nil
}

func ensureVariant(ctx context.Context, repo *Repository, tenantID uuid.UUID, variantID uint64) error {
	exists, err := repo.VariantExists(ctx, tenantID, variantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check variant")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeVariantNotFound, "variant not found").
			WithDetails(map[string]any{"variant_id": variantID})
	}
	return nil
}

func toEntry(row models.StockEntry) Entry {
	return Entry{
		VariantID:  row.VariantID,
		LocationID: row.LocationID,
		OnHand:     row.OnHand,
		Reserved:   row.Reserved,
		Available:  row.Available(),
	}
}
