package catalog

import (
	"context"
	"testing"

	"github.com/angelmondragon/variant-catalog/pkg/db"
	"github.com/angelmondragon/variant-catalog/pkg/db/dbtest"
	"github.com/angelmondragon/variant-catalog/pkg/db/models"
	"github.com/angelmondragon/variant-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/variant-catalog/pkg/errors"
	"github.com/angelmondragon/variant-catalog/pkg/logger"
	"github.com/angelmondragon/variant-catalog/pkg/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client, logger.Nop())
	require.NoError(t, err)
	return svc, client
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected error %v", err)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	require.Error(t, err)
}

func TestDefineAttribute(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()

	attr, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Color", InputKind: enums.InputKindColor})
	require.NoError(t, err)
	assert.NotZero(t, attr.ID)
	assert.Equal(t, "color", attr.Code)
	assert.Equal(t, enums.InputKindColor, attr.InputKind)

	sized, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Talla Zapato"})
	require.NoError(t, err)
	assert.Equal(t, "talla_zapato", sized.Code)
	assert.Equal(t, enums.InputKindSelect, sized.InputKind)

	_, err = svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Colour", Code: "COLOR"})
	requireCode(t, err, pkgerrors.CodeDuplicateCode)

	// same code is free in another tenant
	_, err = svc.DefineAttribute(ctx, uuid.New(), DefineAttributeInput{Name: "Color"})
	require.NoError(t, err)

	_, err = svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Peso", InputKind: "slider"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "***"})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateAttribute(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()

	attr, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Tamaño"})
	require.NoError(t, err)

	name := "Tamaño Caja"
	kind := enums.InputKindButton
	updated, err := svc.UpdateAttribute(ctx, tenant, attr.ID, UpdateAttributeInput{Name: &name, InputKind: &kind})
	require.NoError(t, err)
	assert.Equal(t, "tamano_caja", updated.Slug)
	assert.Equal(t, "tamano", updated.Code, "code is stable across renames")
	assert.Equal(t, enums.InputKindButton, updated.InputKind)

	_, err = svc.UpdateAttribute(ctx, uuid.New(), attr.ID, UpdateAttributeInput{Name: &name})
	requireCode(t, err, pkgerrors.CodeNotFound)

	blank := "   "
	_, err = svc.UpdateAttribute(ctx, tenant, attr.ID, UpdateAttributeInput{Name: &blank})
	requireCode(t, err, pkgerrors.CodeValidation)
	stored, err := svc.GetAttribute(ctx, tenant, attr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tamaño Caja", stored.Name)
	assert.Equal(t, "tamano_caja", stored.Slug)
}

func TestBlankNamesAreRejectedAfterTrimming(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()

	_, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "  \t ", Code: "size"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateProduct(ctx, tenant, CreateProductInput{Description: "   "})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestAddValueNormalisedDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()

	attr, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Color"})
	require.NoError(t, err)

	azul, err := svc.AddValue(ctx, tenant, attr.ID, AddValueInput{Value: "  Azúl  Marino ", Metadata: types.JSONObject{"hex": "#000080"}})
	require.NoError(t, err)
	assert.Equal(t, "Azúl Marino", azul.Value)
	assert.Equal(t, "azul marino", azul.NormalizedValue)

	for _, dup := range []string{"azul marino", "AZUL MARINO", "Azul   Marino"} {
		_, err = svc.AddValue(ctx, tenant, attr.ID, AddValueInput{Value: dup})
		requireCode(t, err, pkgerrors.CodeDuplicateValue)
	}

	_, err = svc.AddValue(ctx, tenant, attr.ID, AddValueInput{Value: "Rojo"})
	require.NoError(t, err)

	_, err = svc.AddValue(ctx, tenant, 9999, AddValueInput{Value: "Verde"})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.AddValue(ctx, uuid.New(), attr.ID, AddValueInput{Value: "Verde"})
	requireCode(t, err, pkgerrors.CodeNotFound)

	values, err := svc.ListValues(ctx, tenant, attr.ID)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "Azúl Marino", values[0].Value)
	assert.Equal(t, "#000080", values[0].Metadata.String("hex"))
	assert.Equal(t, "Rojo", values[1].Value)

	found, err := svc.FindValueByText(ctx, tenant, attr.ID, "azul marino")
	require.NoError(t, err)
	assert.Equal(t, azul.ID, found.ID)
}

func TestEnsureAttributeAndValueAreIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()

	first, err := svc.EnsureAttribute(ctx, tenant, "color", "Color", enums.InputKindColor)
	require.NoError(t, err)
	second, err := svc.EnsureAttribute(ctx, tenant, "Color", "Colour", enums.InputKindSelect)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	v1, err := svc.EnsureValue(ctx, tenant, first.ID, "Negro", types.JSONObject{"hex": "#000"})
	require.NoError(t, err)
	v2, err := svc.EnsureValue(ctx, tenant, first.ID, "negro", nil)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, v2.ID)

	attrs, err := svc.ListAttributes(ctx, tenant)
	require.NoError(t, err)
	assert.Len(t, attrs, 1)
}

func TestDeleteValueRefusedWhileReferenced(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()

	attr, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Color"})
	require.NoError(t, err)
	used, err := svc.AddValue(ctx, tenant, attr.ID, AddValueInput{Value: "Rojo"})
	require.NoError(t, err)
	free, err := svc.AddValue(ctx, tenant, attr.ID, AddValueInput{Value: "Verde"})
	require.NoError(t, err)

	require.NoError(t, client.DB().Create(&models.VariantAttributeValue{
		TenantID: tenant, VariantID: 1, AttributeID: attr.ID, ValueID: used.ID,
	}).Error)

	requireCode(t, svc.DeleteValue(ctx, tenant, attr.ID, used.ID), pkgerrors.CodeConflict)
	require.NoError(t, svc.DeleteValue(ctx, tenant, attr.ID, free.ID))
	requireCode(t, svc.DeleteValue(ctx, tenant, attr.ID, free.ID), pkgerrors.CodeNotFound)
}

func TestDeleteValueMapsForeignKeyViolationToConflict(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()

	attr, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Color"})
	require.NoError(t, err)
	value, err := svc.AddValue(ctx, tenant, attr.ID, AddValueInput{Value: "Rojo"})
	require.NoError(t, err)

	// a variant starts using the value after the usage count ran
	require.NoError(t, client.DB().Callback().Delete().Before("gorm:delete").
		Register("test:referenced_value", func(tx *gorm.DB) {
			_ = tx.AddError(&pgconn.PgError{Code: "23503", ConstraintName: "fk_variant_attribute_values_value"})
		}))

	requireCode(t, svc.DeleteValue(ctx, tenant, attr.ID, value.ID), pkgerrors.CodeConflict)
	values, err := svc.ListValues(ctx, tenant, attr.ID)
	require.NoError(t, err)
	assert.Len(t, values, 1)
}

func TestProductAttributeLinksAndAllowedValues(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()

	product, err := svc.CreateProduct(ctx, tenant, CreateProductInput{Description: "T-Shirt", BasePrice: decimal.RequireFromString("19.999")})
	require.NoError(t, err)
	assert.Equal(t, "20", product.BasePrice.String())

	color, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Color"})
	require.NoError(t, err)
	size, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Size"})
	require.NoError(t, err)
	red, err := svc.AddValue(ctx, tenant, color.ID, AddValueInput{Value: "Red"})
	require.NoError(t, err)
	blue, err := svc.AddValue(ctx, tenant, color.ID, AddValueInput{Value: "Blue"})
	require.NoError(t, err)
	small, err := svc.AddValue(ctx, tenant, size.ID, AddValueInput{Value: "S"})
	require.NoError(t, err)

	link, err := svc.LinkProductAttribute(ctx, tenant, product.ID, size.ID, false, 3)
	require.NoError(t, err)
	assert.False(t, link.UsedInVariant)

	// relinking updates flag and order in place
	link, err = svc.LinkProductAttribute(ctx, tenant, product.ID, size.ID, true, 1)
	require.NoError(t, err)
	assert.True(t, link.UsedInVariant)
	assert.Equal(t, 1, link.DisplayOrder)

	_, err = svc.LinkProductAttribute(ctx, tenant, product.ID, color.ID, true, 0)
	require.NoError(t, err)

	links, err := svc.ProductAttributes(ctx, tenant, product.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, color.ID, links[0].AttributeID)
	assert.Equal(t, size.ID, links[1].AttributeID)

	require.NoError(t, svc.SetProductAttributeValues(ctx, tenant, product.ID, color.ID, []uint64{red.ID, blue.ID, red.ID}))
	require.NoError(t, svc.SetProductAttributeValues(ctx, tenant, product.ID, color.ID, []uint64{blue.ID}))
	repo := NewRepository(client.DB())
	ids, err := repo.ListAllowedValueIDs(ctx, tenant, product.ID, color.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{blue.ID}, ids)

	require.NoError(t, svc.AllowProductAttributeValues(ctx, tenant, product.ID, color.ID, []uint64{red.ID, blue.ID}))
	ids, err = repo.ListAllowedValueIDs(ctx, tenant, product.ID, color.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{red.ID, blue.ID}, ids)

	err = svc.SetProductAttributeValues(ctx, tenant, product.ID, color.ID, []uint64{small.ID})
	requireCode(t, err, pkgerrors.CodeInvalidAttributeSelection)
	ids, err = repo.ListAllowedValueIDs(ctx, tenant, product.ID, color.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2, "failed replace leaves the set untouched")

	require.NoError(t, svc.SetProductAttributeValues(ctx, tenant, product.ID, color.ID, nil))
	ids, err = repo.ListAllowedValueIDs(ctx, tenant, product.ID, color.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = svc.LinkProductAttribute(ctx, uuid.New(), product.ID, color.ID, true, 0)
	requireCode(t, err, pkgerrors.CodeProductNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, uuid.New(), CreateProductInput{})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateProduct(ctx, uuid.New(), CreateProductInput{Description: "Mug", BasePrice: decimal.NewFromInt(-1)})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.GetProduct(ctx, uuid.New(), 42)
	requireCode(t, err, pkgerrors.CodeProductNotFound)
}

func TestWithTxRollsBackCatalogWrites(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		txSvc := svc.WithTx(tx)
		attr, err := txSvc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Color"})
		require.NoError(t, err)

		// a duplicate inside the outer transaction must not poison it
		_, err = txSvc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Color"})
		requireCode(t, err, pkgerrors.CodeDuplicateCode)

		_, err = txSvc.AddValue(ctx, tenant, attr.ID, AddValueInput{Value: "Rojo"})
		require.NoError(t, err)
		return pkgerrors.New(pkgerrors.CodeInternal, "abort")
	})
	require.Error(t, err)

	attrs, err := svc.ListAttributes(ctx, tenant)
	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestSetCategoryAttributesReplacesTemplate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()
	const shoes = uint64(7)

	color, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Color"})
	require.NoError(t, err)
	size, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Talla"})
	require.NoError(t, err)
	material, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Material"})
	require.NoError(t, err)

	rows, err := svc.SetCategoryAttributes(ctx, tenant, shoes, []CategoryAttributeInput{
		{AttributeID: color.ID, Order: 2, Required: true},
		{AttributeID: size.ID, Order: 1, Required: true},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, size.ID, rows[0].AttributeID)
	assert.Equal(t, color.ID, rows[1].AttributeID)
	assert.True(t, rows[0].Required)

	rows, err = svc.SetCategoryAttributes(ctx, tenant, shoes, []CategoryAttributeInput{
		{AttributeID: material.ID},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, material.ID, rows[0].AttributeID)
	assert.False(t, rows[0].Required)

	// other tenants and categories see nothing
	other, err := svc.CategoryAttributes(ctx, uuid.New(), shoes)
	require.NoError(t, err)
	assert.Empty(t, other)
	other, err = svc.CategoryAttributes(ctx, tenant, shoes+1)
	require.NoError(t, err)
	assert.Empty(t, other)

	rows, err = svc.SetCategoryAttributes(ctx, tenant, shoes, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSetCategoryAttributesRejectsBadInputAtomically(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()
	const shirts = uint64(3)

	color, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Color"})
	require.NoError(t, err)
	foreign, err := svc.DefineAttribute(ctx, uuid.New(), DefineAttributeInput{Name: "Size"})
	require.NoError(t, err)

	_, err = svc.SetCategoryAttributes(ctx, tenant, shirts, []CategoryAttributeInput{{AttributeID: color.ID}})
	require.NoError(t, err)

	_, err = svc.SetCategoryAttributes(ctx, tenant, shirts, []CategoryAttributeInput{{AttributeID: foreign.ID}})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.SetCategoryAttributes(ctx, tenant, shirts, []CategoryAttributeInput{{AttributeID: color.ID}, {AttributeID: color.ID}})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.SetCategoryAttributes(ctx, tenant, shirts, []CategoryAttributeInput{{AttributeID: color.ID, Order: -1}})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.SetCategoryAttributes(ctx, tenant, 0, []CategoryAttributeInput{{AttributeID: color.ID}})
	requireCode(t, err, pkgerrors.CodeValidation)

	rows, err := svc.CategoryAttributes(ctx, tenant, shirts)
	require.NoError(t, err)
	require.Len(t, rows, 1, "failed replace leaves the template untouched")
	assert.Equal(t, color.ID, rows[0].AttributeID)
}

func TestApplyCategoryTemplateLinksMissingAttributes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tenant := uuid.New()
	const shoes = uint64(11)

	color, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Color"})
	require.NoError(t, err)
	size, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Talla"})
	require.NoError(t, err)
	material, err := svc.DefineAttribute(ctx, tenant, DefineAttributeInput{Name: "Material"})
	require.NoError(t, err)
	product, err := svc.CreateProduct(ctx, tenant, CreateProductInput{Description: "Zapatilla", BasePrice: decimal.NewFromInt(50)})
	require.NoError(t, err)

	// an existing link keeps its settings
	_, err = svc.LinkProductAttribute(ctx, tenant, product.ID, color.ID, false, 9)
	require.NoError(t, err)

	_, err = svc.SetCategoryAttributes(ctx, tenant, shoes, []CategoryAttributeInput{
		{AttributeID: size.ID, Order: 0, Required: true},
		{AttributeID: color.ID, Order: 1, Required: true},
		{AttributeID: material.ID, Order: 2},
	})
	require.NoError(t, err)

	links, err := svc.ApplyCategoryTemplate(ctx, tenant, product.ID, shoes)
	require.NoError(t, err)
	require.Len(t, links, 3)
	byAttr := make(map[uint64]models.ProductAttribute, len(links))
	for _, l := range links {
		byAttr[l.AttributeID] = l
	}
	assert.True(t, byAttr[size.ID].UsedInVariant)
	assert.False(t, byAttr[material.ID].UsedInVariant)
	assert.False(t, byAttr[color.ID].UsedInVariant)
	assert.Equal(t, 9, byAttr[color.ID].DisplayOrder)

	// applying again changes nothing
	again, err := svc.ApplyCategoryTemplate(ctx, tenant, product.ID, shoes)
	require.NoError(t, err)
	assert.Len(t, again, 3)

	_, err = svc.ApplyCategoryTemplate(ctx, uuid.New(), product.ID, shoes)
	requireCode(t, err, pkgerrors.CodeProductNotFound)
}
