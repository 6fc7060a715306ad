package variants

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/variant-catalog/pkg/db"
	"github.com/angelmondragon/variant-catalog/pkg/db/models"
	pkgerrors "github.com/angelmondragon/variant-catalog/pkg/errors"
	"github.com/angelmondragon/variant-catalog/pkg/logger"
	"github.com/angelmondragon/variant-catalog/pkg/metrics"
	"github.com/angelmondragon/variant-catalog/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	variantKeyConstraint = "uq_variants_tenant_product_key"
	maxSKULength         = 64
	skuSeparator         = " - "
)

// Service resolves attribute selections into variants and maintains the
// variants' derived caches.
type Service interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, productID uint64, selection []Selection) (*models.Variant, error)
	Get(ctx context.Context, tenantID uuid.UUID, variantID uint64) (*models.Variant, error)
	FindBySelection(ctx context.Context, tenantID uuid.UUID, productID uint64, selection []Selection) (*models.Variant, error)
	ListByProduct(ctx context.Context, tenantID uuid.UUID, productID uint64) ([]models.Variant, error)
	RebuildSnapshot(ctx context.Context, tenantID uuid.UUID, variantID uint64) (*models.Variant, error)
	RebuildSnapshots(ctx context.Context, tenantID uuid.UUID) (int, error)
	RefreshStockCache(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Tenants(ctx context.Context) ([]uuid.UUID, error)
	WithTx(tx *gorm.DB) Service
}

type service struct {
	repo    *Repository
	conn    *gorm.DB
	logg    *logger.Logger
	metrics *metrics.VariantMetrics
}

// NewService constructs the variant resolver.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger, m *metrics.VariantMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, conn: dbClient.DB(), logg: logg, metrics: m}, nil
}

// WithTx returns a service that joins tx. Variant creation then runs in a
// savepoint so a lost race does not abort the caller's transaction.
func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), conn: tx, logg: s.logg, metrics: s.metrics}
}

// resolution is a validated selection ready to be looked up or created.
type resolution struct {
	product  *models.Product
	key      string
	pairs    []Selection
	snapshot types.AttributeSnapshot
	sku      string
}

func (s *service) Resolve(ctx context.Context, tenantID uuid.UUID, productID uint64, selection []Selection) (*models.Variant, error) {
	res, err := s.validate(ctx, tenantID, productID, selection)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByKey(ctx, tenantID, productID, res.key)
	if err == nil {
		s.metrics.IncResolution(metrics.ResolutionExisting)
		return existing, nil
	}
	if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find variant by key")
	}

	return s.create(ctx, tenantID, res)
}

// create inserts the variant with its pairs. When a concurrent caller wins
// the insert, the winner's row is returned instead.
func (s *service) create(ctx context.Context, tenantID uuid.UUID, res *resolution) (*models.Variant, error) {
	variant := &models.Variant{
		TenantID:   tenantID,
		ProductID:  res.product.ID,
		AttrsKey:   res.key,
		SKU:        res.sku,
		Price:      res.product.BasePrice,
		Attributes: res.snapshot,
		IsActive:   true,
	}
	pairs := make([]models.VariantAttributeValue, 0, len(res.pairs))
	for _, pair := range res.pairs {
		pairs = append(pairs, models.VariantAttributeValue{
			TenantID:    tenantID,
			AttributeID: pair.AttributeID,
			ValueID:     pair.ValueID,
		})
	}

	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateVariant(ctx, variant, pairs)
	})
	if err == nil {
		s.metrics.IncResolution(metrics.ResolutionCreated)
		return variant, nil
	}
	if !db.IsUniqueViolation(err, variantKeyConstraint) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert variant")
	}

	winner, rereadErr := s.repo.FindByKey(ctx, tenantID, res.product.ID, res.key)
	if rereadErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, rereadErr, "db: reread variant after conflict")
	}
	s.metrics.IncResolution(metrics.ResolutionConflictReread)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"tenant_id":  tenantID.String(),
		"product_id": res.product.ID,
		"attrs_key":  res.key,
		"variant_id": winner.ID,
	})
	s.logg.Info(logCtx, "variant created concurrently, returning existing row")
	return winner, nil
}

func (s *service) validate(ctx context.Context, tenantID uuid.UUID, productID uint64, selection []Selection) (*resolution, error) {
	product, err := s.repo.FindProduct(ctx, tenantID, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find product")
	}

	links, err := s.repo.VariantLinks(ctx, tenantID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variant attributes")
	}
	order := make(map[uint64]int, len(links))
	for i, link := range links {
		order[link.AttributeID] = i
	}

	attrIDs := make([]uint64, 0, len(selection))
	valueIDs := make([]uint64, 0, len(selection))
	seen := make(map[uint64]struct{}, len(selection))
	for _, pair := range selection {
		if _, dup := seen[pair.AttributeID]; dup {
			return nil, invalidSelection(pair, "attribute selected more than once")
		}
		seen[pair.AttributeID] = struct{}{}
		if _, ok := order[pair.AttributeID]; !ok {
			return nil, invalidSelection(pair, "attribute is not a variant attribute of the product")
		}
		attrIDs = append(attrIDs, pair.AttributeID)
		valueIDs = append(valueIDs, pair.ValueID)
	}

	attrs, err := s.repo.AttributesByIDs(ctx, tenantID, attrIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load attributes")
	}
	attrByID := make(map[uint64]models.Attribute, len(attrs))
	for _, attr := range attrs {
		attrByID[attr.ID] = attr
	}

	values, err := s.repo.ValuesByIDs(ctx, tenantID, valueIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load values")
	}
	valueByID := make(map[uint64]models.AttributeValue, len(values))
	for _, value := range values {
		valueByID[value.ID] = value
	}

	allowedRows, err := s.repo.AllowedValues(ctx, tenantID, productID, attrIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load allowed values")
	}
	allowed := make(map[Selection]struct{}, len(allowedRows))
	for _, row := range allowedRows {
		allowed[Selection{AttributeID: row.AttributeID, ValueID: row.ValueID}] = struct{}{}
	}

	for _, pair := range selection {
		attr, ok := attrByID[pair.AttributeID]
		if !ok {
			return nil, invalidSelection(pair, "attribute not found")
		}
		value, ok := valueByID[pair.ValueID]
		if !ok || value.AttributeID != attr.ID {
			return nil, invalidSelection(pair, "value does not belong to attribute")
		}
		if _, ok := allowed[pair]; !ok {
			return nil, invalidSelection(pair, "value is not offered for this product")
		}
	}

	sorted := sortSelection(selection)
	snapshot := make(types.AttributeSnapshot, 0, len(sorted))
	for _, pair := range sorted {
		attr := attrByID[pair.AttributeID]
		snapshot = append(snapshot, types.AttributeSnapshotEntry{
			AttributeID:   attr.ID,
			AttributeCode: attr.Code,
			AttributeName: attr.Name,
			ValueID:       pair.ValueID,
			Value:         valueByID[pair.ValueID].Value,
		})
	}

	displayValues := make([]string, len(links))
	for _, pair := range selection {
		displayValues[order[pair.AttributeID]] = valueByID[pair.ValueID].Value
	}

	return &resolution{
		product:  product,
		key:      CanonicalKey(selection),
		pairs:    sorted,
		snapshot: snapshot,
		sku:      BuildSKU(product.Description, displayValues),
	}, nil
}

// BuildSKU joins the description and the non-empty value texts with " - ",
// truncated to 64 runes.
func BuildSKU(description string, values []string) string {
	parts := []string{strings.TrimSpace(description)}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	sku := strings.Join(parts, skuSeparator)
	runes := []rune(sku)
	if len(runes) > maxSKULength {
		sku = strings.TrimSpace(string(runes[:maxSKULength]))
	}
	return sku
}

func (s *service) Get(ctx context.Context, tenantID uuid.UUID, variantID uint64) (*models.Variant, error) {
	variant, err := s.repo.FindByID(ctx, tenantID, variantID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeVariantNotFound, "variant not found").
				WithDetails(map[string]any{"variant_id": variantID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find variant")
	}
	return variant, nil
}

// FindBySelection looks a variant up by its pairs without creating it.
func (s *service) FindBySelection(ctx context.Context, tenantID uuid.UUID, productID uint64, selection []Selection) (*models.Variant, error) {
	variant, err := s.repo.FindByKey(ctx, tenantID, productID, CanonicalKey(selection))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeVariantNotFound, "variant not found").
				WithDetails(map[string]any{"product_id": productID, "attrs_key": CanonicalKey(selection)})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find variant by key")
	}
	return variant, nil
}

func (s *service) ListByProduct(ctx context.Context, tenantID uuid.UUID, productID uint64) ([]models.Variant, error) {
	if _, err := s.repo.FindProduct(ctx, tenantID, productID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find product")
	}
	variants, err := s.repo.ListByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list variants")
	}
	return variants, nil
}

// RebuildSnapshot recomputes one variant's snapshot from its pairs.
func (s *service) RebuildSnapshot(ctx context.Context, tenantID uuid.UUID, variantID uint64) (*models.Variant, error) {
	variant, err := s.Get(ctx, tenantID, variantID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.SnapshotRows(ctx, tenantID, &variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variant pairs")
	}
	snapshot := snapshotsByVariant(rows)[variantID]
	if snapshot == nil {
		snapshot = types.AttributeSnapshot{}
	}
	if err := s.repo.UpdateSnapshot(ctx, tenantID, variantID, snapshot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update snapshot")
	}
	variant.Attributes = snapshot
	return variant, nil
}

// RebuildSnapshots recomputes every snapshot of the tenant and returns how
// many variants were written.
func (s *service) RebuildSnapshots(ctx context.Context, tenantID uuid.UUID) (int, error) {
	ids, err := s.repo.VariantIDs(ctx, tenantID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list variant ids")
	}
	rows, err := s.repo.SnapshotRows(ctx, tenantID, nil)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variant pairs")
	}
	byVariant := snapshotsByVariant(rows)
	for _, id := range ids {
		snapshot := byVariant[id]
		if snapshot == nil {
			snapshot = types.AttributeSnapshot{}
		}
		if err := s.repo.UpdateSnapshot(ctx, tenantID, id, snapshot); err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update snapshot")
		}
	}
	return len(ids), nil
}

func (s *service) RefreshStockCache(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	n, err := s.repo.RefreshStockCache(ctx, tenantID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: refresh stock cache")
	}
	return n, nil
}

func (s *service) Tenants(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.repo.TenantIDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list tenants")
	}
	return ids, nil
}

func snapshotsByVariant(rows []snapshotRow) map[uint64]types.AttributeSnapshot {
	out := make(map[uint64]types.AttributeSnapshot)
	for _, row := range rows {
		out[row.VariantID] = append(out[row.VariantID], types.AttributeSnapshotEntry{
			AttributeID:   row.AttributeID,
			AttributeCode: row.AttributeCode,
			AttributeName: row.AttributeName,
			ValueID:       row.ValueID,
			Value:         row.Value,
		})
	}
	return out
}

func invalidSelection(pair Selection, reason string) error {
	return pkgerrors.New(pkgerrors.CodeInvalidAttributeSelection, reason).
		WithDetails(map[string]any{"attribute_id": pair.AttributeID, "value_id": pair.ValueID})
}
