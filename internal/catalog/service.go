package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/variant-catalog/pkg/db"
	"github.com/angelmondragon/variant-catalog/pkg/db/models"
	"github.com/angelmondragon/variant-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/variant-catalog/pkg/errors"
	"github.com/angelmondragon/variant-catalog/pkg/logger"
	"github.com/angelmondragon/variant-catalog/pkg/textnorm"
	"github.com/angelmondragon/variant-catalog/pkg/types"
	"github.com/angelmondragon/variant-catalog/pkg/validators"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	attributeCodeConstraint = "uq_attributes_tenant_code"
	valueConstraint         = "uq_attribute_values_normalized"
)

// Service configures attributes, their values and how products use them.
type Service interface {
	DefineAttribute(ctx context.Context, tenantID uuid.UUID, input DefineAttributeInput) (*models.Attribute, error)
	UpdateAttribute(ctx context.Context, tenantID uuid.UUID, attributeID uint64, input UpdateAttributeInput) (*models.Attribute, error)
	EnsureAttribute(ctx context.Context, tenantID uuid.UUID, code, name string, kind enums.InputKind) (*models.Attribute, error)
	GetAttribute(ctx context.Context, tenantID uuid.UUID, attributeID uint64) (*models.Attribute, error)
	ListAttributes(ctx context.Context, tenantID uuid.UUID) ([]models.Attribute, error)

	AddValue(ctx context.Context, tenantID uuid.UUID, attributeID uint64, input AddValueInput) (*models.AttributeValue, error)
	EnsureValue(ctx context.Context, tenantID uuid.UUID, attributeID uint64, value string, metadata types.JSONObject) (*models.AttributeValue, error)
	ListValues(ctx context.Context, tenantID uuid.UUID, attributeID uint64) ([]models.AttributeValue, error)
	FindValueByText(ctx context.Context, tenantID uuid.UUID, attributeID uint64, text string) (*models.AttributeValue, error)
	DeleteValue(ctx context.Context, tenantID uuid.UUID, attributeID, valueID uint64) error

	CreateProduct(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, tenantID uuid.UUID, productID uint64) (*models.Product, error)
	LinkProductAttribute(ctx context.Context, tenantID uuid.UUID, productID, attributeID uint64, usedInVariant bool, order int) (*models.ProductAttribute, error)
	ProductAttributes(ctx context.Context, tenantID uuid.UUID, productID uint64) ([]models.ProductAttribute, error)
	SetProductAttributeValues(ctx context.Context, tenantID uuid.UUID, productID, attributeID uint64, valueIDs []uint64) error
	AllowProductAttributeValues(ctx context.Context, tenantID uuid.UUID, productID, attributeID uint64, valueIDs []uint64) error

	SetCategoryAttributes(ctx context.Context, tenantID uuid.UUID, categoryID uint64, inputs []CategoryAttributeInput) ([]models.CategoryAttribute, error)
	CategoryAttributes(ctx context.Context, tenantID uuid.UUID, categoryID uint64) ([]models.CategoryAttribute, error)
	ApplyCategoryTemplate(ctx context.Context, tenantID uuid.UUID, productID, categoryID uint64) ([]models.ProductAttribute, error)

	WithTx(tx *gorm.DB) Service
}

// DefineAttributeInput describes a new attribute. Code defaults to the slug
// of Name.
type DefineAttributeInput struct {
	Name      string          `json:"name" validate:"required,max=100"`
	Code      string          `json:"code" validate:"omitempty,max=64"`
	InputKind enums.InputKind `json:"input_kind" validate:"input_kind"`
}

type UpdateAttributeInput struct {
	Name      *string          `json:"name" validate:"omitempty,min=1,max=100"`
	InputKind *enums.InputKind `json:"input_kind" validate:"omitempty,input_kind"`
}

type AddValueInput struct {
	Value    string           `json:"value" validate:"required,max=255"`
	Code     *string          `json:"code" validate:"omitempty,max=64"`
	Metadata types.JSONObject `json:"metadata"`
}

type CreateProductInput struct {
	Description string          `json:"description" validate:"required,max=255"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

// CategoryAttributeInput is one entry of a category template.
type CategoryAttributeInput struct {
	AttributeID uint64 `json:"attribute_id" validate:"required"`
	Order       int    `json:"order" validate:"min=0"`
	Required    bool   `json:"required"`
}

type service struct {
	repo *Repository
	conn *gorm.DB
	logg *logger.Logger
}

// NewService constructs the catalog service.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, conn: dbClient.DB(), logg: logg}, nil
}

// WithTx returns a service whose reads and writes join tx. Its own
// transactions become savepoints.
func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), conn: tx, logg: s.logg}
}

func (s *service) inTx(ctx context.Context, fn func(txRepo *Repository) error) error {
	return s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.repo.WithTx(tx))
	})
}

func (s *service) DefineAttribute(ctx context.Context, tenantID uuid.UUID, input DefineAttributeInput) (*models.Attribute, error) {
	if err := validators.Struct(input); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if err := validators.Var("name", name, "required"); err != nil {
		return nil, err
	}
	code := textnorm.Slug(input.Code)
	if code == "" {
		code = textnorm.Slug(name)
	}
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"code": "must contain letters or digits"})
	}
	kind := input.InputKind
	if kind == "" {
		kind = enums.InputKindSelect
	}

	if _, err := s.repo.FindAttributeByCode(ctx, tenantID, code); err == nil {
		return nil, duplicateCode(code)
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find attribute by code")
	}

	attr := &models.Attribute{
		TenantID:  tenantID,
		Name:      name,
		Code:      code,
		Slug:      textnorm.Slug(name),
		InputKind: kind,
	}
	if err := s.inTx(ctx, func(txRepo *Repository) error {
		return txRepo.CreateAttribute(ctx, attr)
	}); err != nil {
		if db.IsUniqueViolation(err, attributeCodeConstraint) {
			return nil, duplicateCode(code)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert attribute")
	}
	return attr, nil
}

func (s *service) UpdateAttribute(ctx context.Context, tenantID uuid.UUID, attributeID uint64, input UpdateAttributeInput) (*models.Attribute, error) {
	if err := validators.Struct(input); err != nil {
		return nil, err
	}
	attr, err := s.GetAttribute(ctx, tenantID, attributeID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validators.Var("name", name, "required"); err != nil {
			return nil, err
		}
		attr.Name = name
		attr.Slug = textnorm.Slug(name)
	}
	if input.InputKind != nil {
		attr.InputKind = *input.InputKind
	}
	if err := s.repo.SaveAttribute(ctx, attr); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update attribute")
	}
	return attr, nil
}

// EnsureAttribute returns the attribute with code, creating it when missing.
func (s *service) EnsureAttribute(ctx context.Context, tenantID uuid.UUID, code, name string, kind enums.InputKind) (*models.Attribute, error) {
	slug := textnorm.Slug(code)
	if attr, err := s.repo.FindAttributeByCode(ctx, tenantID, slug); err == nil {
		return attr, nil
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find attribute by code")
	}

	attr, err := s.DefineAttribute(ctx, tenantID, DefineAttributeInput{Name: name, Code: slug, InputKind: kind})
	if pkgerrors.HasCode(err, pkgerrors.CodeDuplicateCode) {
		attr, err = s.repo.FindAttributeByCode(ctx, tenantID, slug)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reread attribute")
		}
		return attr, nil
	}
	return attr, err
}

func (s *service) GetAttribute(ctx context.Context, tenantID uuid.UUID, attributeID uint64) (*models.Attribute, error) {
	attr, err := s.repo.FindAttribute(ctx, tenantID, attributeID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attribute not found").
				WithDetails(map[string]any{"attribute_id": attributeID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find attribute")
	}
	return attr, nil
}

func (s *service) ListAttributes(ctx context.Context, tenantID uuid.UUID) ([]models.Attribute, error) {
	attrs, err := s.repo.ListAttributes(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list attributes")
	}
	return attrs, nil
}

func (s *service) AddValue(ctx context.Context, tenantID uuid.UUID, attributeID uint64, input AddValueInput) (*models.AttributeValue, error) {
	if err := validators.Struct(input); err != nil {
		return nil, err
	}
	text := strings.Join(strings.Fields(input.Value), " ")
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"value": "is required"})
	}
	if _, err := s.GetAttribute(ctx, tenantID, attributeID); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindValueByNormalized(ctx, tenantID, attributeID, normalized); err == nil {
		return nil, duplicateValue(attributeID, text, existing.ID)
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find value")
	}

	metadata := input.Metadata
	if metadata == nil {
		metadata = types.JSONObject{}
	}
	value := &models.AttributeValue{
		TenantID:        tenantID,
		AttributeID:     attributeID,
		Value:           text,
		NormalizedValue: normalized,
		Code:            input.Code,
		Metadata:        metadata,
	}
	if err := s.inTx(ctx, func(txRepo *Repository) error {
		return txRepo.CreateValue(ctx, value)
	}); err != nil {
		if db.IsUniqueViolation(err, valueConstraint) {
			return nil, duplicateValue(attributeID, text, 0)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert value")
	}
	return value, nil
}

// EnsureValue returns the value matching text under normalisation, creating
// it when missing.
func (s *service) EnsureValue(ctx context.Context, tenantID uuid.UUID, attributeID uint64, value string, metadata types.JSONObject) (*models.AttributeValue, error) {
	if existing, err := s.FindValueByText(ctx, tenantID, attributeID, value); err == nil {
		return existing, nil
	} else if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		return nil, err
	}

	created, err := s.AddValue(ctx, tenantID, attributeID, AddValueInput{Value: value, Metadata: metadata})
	if pkgerrors.HasCode(err, pkgerrors.CodeDuplicateValue) {
		return s.FindValueByText(ctx, tenantID, attributeID, value)
	}
	return created, err
}

func (s *service) ListValues(ctx context.Context, tenantID uuid.UUID, attributeID uint64) ([]models.AttributeValue, error) {
	if _, err := s.GetAttribute(ctx, tenantID, attributeID); err != nil {
		return nil, err
	}
	values, err := s.repo.ListValues(ctx, tenantID, attributeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list values")
	}
	return values, nil
}

func (s *service) FindValueByText(ctx context.Context, tenantID uuid.UUID, attributeID uint64, text string) (*models.AttributeValue, error) {
	value, err := s.repo.FindValueByNormalized(ctx, tenantID, attributeID, textnorm.Normalize(text))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attribute value not found").
				WithDetails(map[string]any{"attribute_id": attributeID, "value": text})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find value")
	}
	return value, nil
}

// DeleteValue removes a value that no variant is built from. The usage check
// and the delete share a transaction with the value row locked.
func (s *service) DeleteValue(ctx context.Context, tenantID uuid.UUID, attributeID, valueID uint64) error {
	return s.inTx(ctx, func(txRepo *Repository) error {
		value, err := txRepo.LockValue(ctx, tenantID, valueID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "attribute value not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find value")
		}
		if value.AttributeID != attributeID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "attribute value not found")
		}
		used, err := txRepo.CountValueUsage(ctx, tenantID, valueID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count value usage")
		}
		if used > 0 {
			return valueInUse(valueID, used)
		}
		if err := txRepo.DeleteValue(ctx, tenantID, valueID); err != nil {
			if db.IsForeignKeyViolation(err) {
				return valueInUse(valueID, 1)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete value")
		}
		return nil
	})
}

func valueInUse(valueID uint64, variants int64) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "attribute value is used by variants").
		WithDetails(map[string]any{"value_id": valueID, "variants": variants})
}

func (s *service) CreateProduct(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if err := validators.Struct(input); err != nil {
		return nil, err
	}
	if input.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"base_price": "must not be negative"})
	}
	description := strings.TrimSpace(input.Description)
	if err := validators.Var("description", description, "required"); err != nil {
		return nil, err
	}
	product := &models.Product{
		TenantID:    tenantID,
		Description: description,
		BasePrice:   input.BasePrice.Round(2),
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, tenantID uuid.UUID, productID uint64) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, tenantID, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find product")
	}
	return product, nil
}

// LinkProductAttribute creates or updates the (product, attribute) link.
func (s *service) LinkProductAttribute(ctx context.Context, tenantID uuid.UUID, productID, attributeID uint64, usedInVariant bool, order int) (*models.ProductAttribute, error) {
	if _, err := s.GetProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	if _, err := s.GetAttribute(ctx, tenantID, attributeID); err != nil {
		return nil, err
	}
	link := &models.ProductAttribute{
		TenantID:      tenantID,
		ProductID:     productID,
		AttributeID:   attributeID,
		UsedInVariant: usedInVariant,
		DisplayOrder:  order,
	}
	if err := s.repo.UpsertProductAttribute(ctx, link); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert product attribute")
	}
	stored, err := s.repo.FindProductAttribute(ctx, tenantID, productID, attributeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reread product attribute")
	}
	return stored, nil
}

func (s *service) ProductAttributes(ctx context.Context, tenantID uuid.UUID, productID uint64) ([]models.ProductAttribute, error) {
	if _, err := s.GetProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	links, err := s.repo.ListProductAttributes(ctx, tenantID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list product attributes")
	}
	return links, nil
}

// SetProductAttributeValues replaces the allowed values for the pair. An empty
// list leaves no value offered.
func (s *service) SetProductAttributeValues(ctx context.Context, tenantID uuid.UUID, productID, attributeID uint64, valueIDs []uint64) error {
	ids, err := s.checkAllowedValues(ctx, tenantID, productID, attributeID, valueIDs)
	if err != nil {
		return err
	}
	if err := s.inTx(ctx, func(txRepo *Repository) error {
		return txRepo.ReplaceAllowedValues(ctx, tenantID, productID, attributeID, ids)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace allowed values")
	}
	return nil
}

// AllowProductAttributeValues adds values to the allowed set, keeping the rest.
func (s *service) AllowProductAttributeValues(ctx context.Context, tenantID uuid.UUID, productID, attributeID uint64, valueIDs []uint64) error {
	ids, err := s.checkAllowedValues(ctx, tenantID, productID, attributeID, valueIDs)
	if err != nil {
		return err
	}
	if err := s.repo.AddAllowedValues(ctx, tenantID, productID, attributeID, ids); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: add allowed values")
	}
	return nil
}

func (s *service) checkAllowedValues(ctx context.Context, tenantID uuid.UUID, productID, attributeID uint64, valueIDs []uint64) ([]uint64, error) {
	if _, err := s.GetProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	if _, err := s.GetAttribute(ctx, tenantID, attributeID); err != nil {
		return nil, err
	}
	ids := uniqueIDs(valueIDs)
	values, err := s.repo.ValuesByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load values")
	}
	found := make(map[uint64]uint64, len(values))
	for _, v := range values {
		found[v.ID] = v.AttributeID
	}
	for _, id := range ids {
		if owner, ok := found[id]; !ok || owner != attributeID {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidAttributeSelection, "value does not belong to attribute").
				WithDetails(map[string]any{"attribute_id": attributeID, "value_id": id})
		}
	}
	return ids, nil
}

// SetCategoryAttributes replaces the category's template in one transaction.
// An empty list clears it.
func (s *service) SetCategoryAttributes(ctx context.Context, tenantID uuid.UUID, categoryID uint64, inputs []CategoryAttributeInput) ([]models.CategoryAttribute, error) {
	if err := validators.Var("category_id", categoryID, "required"); err != nil {
		return nil, err
	}
	rows := make([]models.CategoryAttribute, 0, len(inputs))
	ids := make([]uint64, 0, len(inputs))
	seen := make(map[uint64]struct{}, len(inputs))
	for _, in := range inputs {
		if err := validators.Struct(in); err != nil {
			return nil, err
		}
		if _, ok := seen[in.AttributeID]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]any{"attribute_id": in.AttributeID, "reason": "listed twice"})
		}
		seen[in.AttributeID] = struct{}{}
		ids = append(ids, in.AttributeID)
		rows = append(rows, models.CategoryAttribute{
			TenantID:     tenantID,
			CategoryID:   categoryID,
			AttributeID:  in.AttributeID,
			DisplayOrder: in.Order,
			Required:     in.Required,
		})
	}

	err := s.inTx(ctx, func(txRepo *Repository) error {
		attrs, err := txRepo.AttributesByIDs(ctx, tenantID, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load attributes")
		}
		if missing := missingAttribute(ids, attrs); missing != 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "attribute not found").
				WithDetails(map[string]any{"attribute_id": missing})
		}
		if err := txRepo.ReplaceCategoryAttributes(ctx, tenantID, categoryID, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace category attributes")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"tenant_id":   tenantID.String(),
		"category_id": categoryID,
		"attributes":  len(rows),
	})
	s.logg.Info(logCtx, "category template replaced")
	return s.CategoryAttributes(ctx, tenantID, categoryID)
}

func (s *service) CategoryAttributes(ctx context.Context, tenantID uuid.UUID, categoryID uint64) ([]models.CategoryAttribute, error) {
	rows, err := s.repo.ListCategoryAttributes(ctx, tenantID, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list category attributes")
	}
	return rows, nil
}

// ApplyCategoryTemplate links the product to every attribute of the category's
// template. Required attributes become variant dimensions. Links the product
// already has keep their settings.
func (s *service) ApplyCategoryTemplate(ctx context.Context, tenantID uuid.UUID, productID, categoryID uint64) ([]models.ProductAttribute, error) {
	if _, err := s.GetProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	template, err := s.CategoryAttributes(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}
	links := make([]models.ProductAttribute, 0, len(template))
	for _, entry := range template {
		links = append(links, models.ProductAttribute{
			TenantID:      tenantID,
			ProductID:     productID,
			AttributeID:   entry.AttributeID,
			UsedInVariant: entry.Required,
			DisplayOrder:  entry.DisplayOrder,
		})
	}
	if err := s.inTx(ctx, func(txRepo *Repository) error {
		return txRepo.InsertMissingProductAttributes(ctx, links)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: apply category template")
	}
	return s.ProductAttributes(ctx, tenantID, productID)
}

func missingAttribute(ids []uint64, attrs []models.Attribute) uint64 {
	found := make(map[uint64]struct{}, len(attrs))
	for _, a := range attrs {
		found[a.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return id
		}
	}
	return 0
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func duplicateCode(code string) error {
	return pkgerrors.New(pkgerrors.CodeDuplicateCode, "attribute code already exists").
		WithDetails(map[string]any{"code": code})
}

func duplicateValue(attributeID uint64, value string, existingID uint64) error {
	details := map[string]any{"attribute_id": attributeID, "value": value}
	if existingID != 0 {
		details["existing_value_id"] = existingID
	}
	return pkgerrors.New(pkgerrors.CodeDuplicateValue, "attribute value already exists").WithDetails(details)
}
