package legacy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/angelmondragon/variant-catalog/internal/catalog"
	"github.com/angelmondragon/variant-catalog/internal/inventory"
	"github.com/angelmondragon/variant-catalog/internal/variants"
	"github.com/angelmondragon/variant-catalog/pkg/db"
	"github.com/angelmondragon/variant-catalog/pkg/db/models"
	"github.com/angelmondragon/variant-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/variant-catalog/pkg/errors"
	"github.com/angelmondragon/variant-catalog/pkg/logger"
	"github.com/angelmondragon/variant-catalog/pkg/metrics"
	"github.com/angelmondragon/variant-catalog/pkg/types"
)

const (
	JobName = "legacy-migration"

	ColorAttributeCode = "color"
	SizeAttributeCode  = "talla"

	colorDisplayOrder = 0
	sizeDisplayOrder  = 1

	defaultParallelism = 4
)

// Params wires the migrator.
type Params struct {
	DB          *db.Client
	Source      Source
	Catalog     catalog.Service
	Variants    variants.Service
	Ledger      inventory.Service
	Locks       TenantLocks
	Metrics     *metrics.CronJobMetrics
	Logger      *logger.Logger
	Parallelism int
	// SeedValues creates the color/size attributes and one value per legacy
	// color and size before mapping.
	SeedValues bool
}

// Migrator folds the flat color/size stock tables into variants and ledger
// entries, one transaction per tenant.
type Migrator struct {
	db          *db.Client
	source      Source
	catalog     catalog.Service
	variants    variants.Service
	ledger      inventory.Service
	locks       TenantLocks
	metrics     *metrics.CronJobMetrics
	logg        *logger.Logger
	parallelism int
	seedValues  bool
}

func NewMigrator(p Params) (*Migrator, error) {
	if p.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if p.Source == nil {
		return nil, fmt.Errorf("legacy source required")
	}
	if p.Catalog == nil || p.Variants == nil || p.Ledger == nil {
		return nil, fmt.Errorf("catalog, variant and ledger services required")
	}
	if p.Locks == nil {
		return nil, fmt.Errorf("tenant locks required")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	parallelism := p.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	return &Migrator{
		db:          p.DB,
		source:      p.Source,
		catalog:     p.Catalog,
		variants:    p.Variants,
		ledger:      p.Ledger,
		locks:       p.Locks,
		metrics:     p.Metrics,
		logg:        logg,
		parallelism: parallelism,
		seedValues:  p.SeedValues,
	}, nil
}

// Tenants lists every tenant with legacy stock rows.
func (m *Migrator) Tenants(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := m.source.Tenants(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list legacy tenants")
	}
	return ids, nil
}

// Run migrates tenants concurrently. A failing tenant never stops the others;
// the returned error combines every tenant failure.
func (m *Migrator) Run(ctx context.Context, tenantIDs []uuid.UUID) (*RunReport, error) {
	report := &RunReport{Tenants: make([]*TenantReport, len(tenantIDs))}

	var (
		mu   sync.Mutex
		errs error
	)
	var g errgroup.Group
	g.SetLimit(m.parallelism)
	for i, tenantID := range tenantIDs {
		i, tenantID := i, tenantID
		g.Go(func() error {
			rep := m.runTenant(ctx, tenantID)
			report.Tenants[i] = rep
			if rep.Err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("tenant %s: %w", tenantID, rep.Err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return report, errs
}

func (m *Migrator) runTenant(ctx context.Context, tenantID uuid.UUID) *TenantReport {
	ctx = m.logg.WithTenantID(ctx, tenantID.String())
	ctx = m.logg.WithJob(ctx, JobName)

	lock, err := m.locks.ForTenant(tenantID)
	if err != nil {
		return &TenantReport{TenantID: tenantID, Err: fmt.Errorf("tenant lock: %w", err)}
	}
	locked, err := lock.Acquire(ctx)
	if err != nil {
		return &TenantReport{TenantID: tenantID, Err: fmt.Errorf("tenant lock acquire: %w", err)}
	}
	if !locked {
		m.logg.Info(ctx, "legacy migration already running for tenant; skipping")
		return &TenantReport{TenantID: tenantID, Skipped: true}
	}
	defer func() {
		if relErr := lock.Release(ctx); relErr != nil {
			m.logg.Error(ctx, "failed to release tenant lock", relErr)
		}
	}()

	var rep *TenantReport
	_ = m.metrics.Track(JobName, func() error {
		var err error
		rep, err = m.MigrateTenant(ctx, tenantID)
		return err
	})
	return rep
}

// MigrateTenant runs the whole tenant inside one transaction holding the
// tenant's database lock. Rows already marked are ignored, so a second run
// over the same data changes nothing; a run that still tries to mark one
// rolls back.
func (m *Migrator) MigrateTenant(ctx context.Context, tenantID uuid.UUID) (*TenantReport, error) {
	start := time.Now()
	var rep *TenantReport
	err := m.db.WithTx(ctx, func(tx *gorm.DB) error {
		run := &tenantRun{
			m:        m,
			tenantID: tenantID,
			source:   m.source.WithTx(tx),
			catalog:  m.catalog.WithTx(tx),
			variants: m.variants.WithTx(tx),
			ledger:   m.ledger.WithTx(tx),
			report:   &TenantReport{TenantID: tenantID},
		}
		if err := run.execute(ctx); err != nil {
			return err
		}
		rep = run.report
		return nil
	})
	if err != nil {
		m.logg.Error(m.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "legacy migration rolled back", err)
		rep = &TenantReport{TenantID: tenantID, Err: err}
	}
	rep.Duration = time.Since(start)
	if err == nil {
		logCtx := m.logg.WithFields(ctx, map[string]any{
			"variants_created": rep.VariantsCreated,
			"variants_reused":  rep.VariantsReused,
			"rows_migrated":    rep.RowsMigrated,
			"rows_skipped":     rep.RowsSkipped,
			"duration_ms":      rep.Duration.Milliseconds(),
		})
		m.logg.Info(logCtx, "legacy migration committed")
	}
	return rep, err
}

type tenantRun struct {
	m        *Migrator
	tenantID uuid.UUID
	source   Source
	catalog  catalog.Service
	variants variants.Service
	ledger   inventory.Service
	report   *TenantReport

	colorAttr *models.Attribute
	sizeAttr  *models.Attribute
	colorMap  map[uint64]uint64
	sizeMap   map[uint64]uint64
}

type triple struct {
	productID uint64
	colorID   uint64
	sizeID    uint64
	hasColor  bool
	hasSize   bool
}

func (r *tenantRun) execute(ctx context.Context) error {
	if err := r.source.LockTenant(ctx, r.tenantID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock legacy tenant")
	}
	colors, err := r.source.Colors(ctx, r.tenantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: read legacy colors")
	}
	sizes, err := r.source.Sizes(ctx, r.tenantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: read legacy sizes")
	}
	if err := r.loadAttributes(ctx); err != nil {
		return err
	}
	if err := r.buildMaps(ctx, colors, sizes); err != nil {
		return err
	}

	rows, err := r.source.PendingStock(ctx, r.tenantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: read legacy stock")
	}
	order, groups := groupRows(rows)
	for _, key := range order {
		if err := r.migrateGroup(ctx, key, groups[key]); err != nil {
			return err
		}
	}
	return nil
}

// loadAttributes resolves the color and size attributes, creating them when
// seeding is enabled.
func (r *tenantRun) loadAttributes(ctx context.Context) error {
	if r.m.seedValues {
		color, err := r.catalog.EnsureAttribute(ctx, r.tenantID, ColorAttributeCode, "Color", enums.InputKindColor)
		if err != nil {
			return err
		}
		size, err := r.catalog.EnsureAttribute(ctx, r.tenantID, SizeAttributeCode, "Talla", enums.InputKindButton)
		if err != nil {
			return err
		}
		r.colorAttr, r.sizeAttr = color, size
		return nil
	}

	attrs, err := r.catalog.ListAttributes(ctx, r.tenantID)
	if err != nil {
		return err
	}
	for i := range attrs {
		switch attrs[i].Code {
		case ColorAttributeCode:
			r.colorAttr = &attrs[i]
		case SizeAttributeCode:
			r.sizeAttr = &attrs[i]
		}
	}
	return nil
}

// buildMaps maps legacy color and size ids to attribute values by normalised
// name.
func (r *tenantRun) buildMaps(ctx context.Context, colors []models.LegacyColor, sizes []models.LegacySize) error {
	r.colorMap = make(map[uint64]uint64, len(colors))
	r.sizeMap = make(map[uint64]uint64, len(sizes))

	if r.colorAttr != nil {
		for _, color := range colors {
			var metadata types.JSONObject
			if color.Hex != nil && strings.TrimSpace(*color.Hex) != "" {
				metadata = types.JSONObject{"hex": strings.TrimSpace(*color.Hex)}
			}
			valueID, ok, err := r.mapValue(ctx, r.colorAttr.ID, color.Name, metadata)
			if err != nil {
				return err
			}
			if ok {
				r.colorMap[color.ID] = valueID
			}
		}
	}
	if r.sizeAttr != nil {
		for _, size := range sizes {
			valueID, ok, err := r.mapValue(ctx, r.sizeAttr.ID, size.Name, nil)
			if err != nil {
				return err
			}
			if ok {
				r.sizeMap[size.ID] = valueID
			}
		}
	}
	return nil
}

func (r *tenantRun) mapValue(ctx context.Context, attributeID uint64, name string, metadata types.JSONObject) (uint64, bool, error) {
	if strings.TrimSpace(name) == "" {
		return 0, false, nil
	}
	var (
		value *models.AttributeValue
		err   error
	)
	if r.m.seedValues {
		value, err = r.catalog.EnsureValue(ctx, r.tenantID, attributeID, name, metadata)
	} else {
		value, err = r.catalog.FindValueByText(ctx, r.tenantID, attributeID, name)
	}
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) || pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return value.ID, true, nil
}

func (r *tenantRun) migrateGroup(ctx context.Context, key triple, rows []models.LegacyStockRow) error {
	var selection []variants.Selection

	if key.hasColor {
		valueID, ok := r.colorMap[key.colorID]
		if !ok {
			r.skip(ctx, rows, pkgerrors.CodeMigrationMappingMissing, fmt.Sprintf("legacy color %d has no attribute value", key.colorID))
			return nil
		}
		selection = append(selection, variants.Selection{AttributeID: r.colorAttr.ID, ValueID: valueID})
	}
	if key.hasSize {
		valueID, ok := r.sizeMap[key.sizeID]
		if !ok {
			r.skip(ctx, rows, pkgerrors.CodeMigrationMappingMissing, fmt.Sprintf("legacy size %d has no attribute value", key.sizeID))
			return nil
		}
		selection = append(selection, variants.Selection{AttributeID: r.sizeAttr.ID, ValueID: valueID})
	}

	if _, err := r.catalog.GetProduct(ctx, r.tenantID, key.productID); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeProductNotFound) {
			r.skip(ctx, rows, pkgerrors.CodeProductNotFound, fmt.Sprintf("product %d does not exist", key.productID))
			return nil
		}
		return err
	}

	for _, sel := range selection {
		order := colorDisplayOrder
		if r.sizeAttr != nil && sel.AttributeID == r.sizeAttr.ID {
			order = sizeDisplayOrder
		}
		if _, err := r.catalog.LinkProductAttribute(ctx, r.tenantID, key.productID, sel.AttributeID, true, order); err != nil {
			return err
		}
		if err := r.catalog.AllowProductAttributeValues(ctx, r.tenantID, key.productID, sel.AttributeID, []uint64{sel.ValueID}); err != nil {
			return err
		}
	}

	variant, err := r.variants.FindBySelection(ctx, r.tenantID, key.productID, selection)
	switch {
	case err == nil:
		r.report.VariantsReused++
	case pkgerrors.HasCode(err, pkgerrors.CodeVariantNotFound):
		variant, err = r.variants.Resolve(ctx, r.tenantID, key.productID, selection)
		if err != nil {
			return err
		}
		r.report.VariantsCreated++
	default:
		return err
	}

	for _, row := range rows {
		if row.Stock > 0 {
			_, err := r.ledger.Receive(ctx, r.tenantID, variant.ID, row.LocationID, row.Stock,
				inventory.WithReference(fmt.Sprintf("legacy:%d", row.ID)))
			if err != nil {
				if pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
					r.skip(ctx, []models.LegacyStockRow{row}, pkgerrors.CodeValidation, fmt.Sprintf("invalid location %q", row.LocationID))
					continue
				}
				return err
			}
			r.report.UnitsReceived += row.Stock
		}
		variantID := variant.ID
		if err := r.source.MarkMigrated(ctx, r.tenantID, row.ID, &variantID); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark legacy row")
		}
		r.report.RowsMigrated++
	}
	return nil
}

// skip records a warning per row and leaves the rows unmarked for a later run.
func (r *tenantRun) skip(ctx context.Context, rows []models.LegacyStockRow, code pkgerrors.Code, message string) {
	for _, row := range rows {
		r.report.Warnings = append(r.report.Warnings, Warning{
			LegacyRowID: row.ID,
			ProductID:   row.ProductID,
			Code:        code,
			Message:     message,
		})
		r.report.RowsSkipped++
		logCtx := r.m.logg.WithFields(ctx, map[string]any{
			"legacy_row_id": row.ID,
			"product_id":    row.ProductID,
			"code":          string(code),
		})
		r.m.logg.Warn(logCtx, message)
	}
}

func groupRows(rows []models.LegacyStockRow) ([]triple, map[triple][]models.LegacyStockRow) {
	var order []triple
	groups := make(map[triple][]models.LegacyStockRow)
	for _, row := range rows {
		key := triple{productID: row.ProductID}
		if row.ColorID != nil {
			key.colorID, key.hasColor = *row.ColorID, true
		}
		if row.SizeID != nil {
			key.sizeID, key.hasSize = *row.SizeID, true
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}
	return order, groups
}
