package models

// All lists every model, in dependency order, for AutoMigrate in tests.
func All() []any {
	return []any{
		&Attribute{},
		&AttributeValue{},
		&Product{},
		&ProductAttribute{},
		&ProductAttributeValue{},
		&CategoryAttribute{},
		&Variant{},
		&VariantAttributeValue{},
		&StockEntry{},
		&StockMovement{},
		&LegacyColor{},
		&LegacySize{},
		&LegacyStockRow{},
		&LegacyStockMarker{},
	}
}
