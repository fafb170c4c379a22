package convert

import (
	"github.com/straye-as/erp-gateway/internal/domain"
	"go.uber.org/zap"
)

// ProductConverter translates product records. ERPNext stores product
// activity inverted ("disabled"), so this converter owns the documented
// polarity flip in both directions, including filters.
type ProductConverter struct {
	logger   *zap.Logger
	mappings map[string]FieldMapping
}

func NewProductConverter(logger *zap.Logger) *ProductConverter {
	return &ProductConverter{
		logger: logger.Named("convert.product"),
		mappings: map[string]FieldMapping{
			SystemERPNext: {
				"id":              "name",
				"name":            "item_name",
				"sku":             "item_code",
				"description":     "description",
				"category":        "item_group",
				"price":           "standard_rate",
				"cost":            "valuation_rate",
				"tax_rate":        "tax_rate",
				"stock_quantity":  "actual_qty",
				"unit_of_measure": "stock_uom",
				"is_active":       "disabled", // inverted polarity in ERPNext
				"created_at":      "creation",
				"updated_at":      "modified",
			},
			SystemCloudERP: {
				"id":              "product_id",
				"name":            "product_name",
				"sku":             "sku",
				"description":     "description",
				"category":        "category",
				"price":           "price",
				"cost":            "cost",
				"tax_rate":        "tax_percentage",
				"stock_quantity":  "quantity_in_stock",
				"unit_of_measure": "uom",
				"is_active":       "active",
				"created_at":      "created_date",
				"updated_at":      "last_modified_date",
			},
		},
	}
}

func (c *ProductConverter) Mapping(system string) FieldMapping {
	return c.mappings[system]
}

func (c *ProductConverter) ExternalToStandard(system string, raw map[string]any) (domain.Entity, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(domain.EntityProduct, system)
	}

	get := func(field string) any { return raw[mapping.External(field)] }
	d := newDefaulter()

	isActive := true
	if system == SystemERPNext {
		// "disabled" is the inverse of is_active; absent means not disabled.
		isActive = !asBool(get("is_active"))
	} else if v := get("is_active"); v != nil {
		isActive = asBool(v)
	}

	product := &domain.Product{
		ID:            d.str("id", asString(get("id"))),
		Name:          d.str("name", asString(get("name"))),
		SKU:           d.str("sku", asString(get("sku"))),
		Description:   asString(get("description")),
		Category:      asString(get("category")),
		Price:         d.num("price", get("price")),
		StockQuantity: d.count("stock_quantity", get("stock_quantity")),
		UnitOfMeasure: asString(get("unit_of_measure")),
		Attributes:    c.extractAttributes(system, raw),
		IsActive:      isActive,
		CreatedAt:     d.time("created_at", get("created_at")),
		UpdatedAt:     d.time("updated_at", get("updated_at")),
	}

	if v, ok := asFloat(get("cost")); ok {
		product.Cost = &v
	}
	if v, ok := asFloat(get("tax_rate")); ok {
		product.TaxRate = &v
	}

	product.Metadata = domain.Metadata{
		SourceSystem:    system,
		SourceID:        asString(get("id")),
		RawData:         raw,
		DefaultedFields: d.fields,
	}

	d.warn(c.logger, system, domain.EntityProduct)
	if err := checkComplete(system, domain.EntityProduct, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (c *ProductConverter) StandardToExternal(system string, std map[string]any) (map[string]any, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(domain.EntityProduct, system)
	}

	result := map[string]any{}
	if system == SystemERPNext {
		result["doctype"] = "Item"
	}

	for field, value := range std {
		switch field {
		case "metadata":
		case "is_active":
			if system == SystemERPNext {
				result["disabled"] = !asBool(value)
			} else {
				result[mapping.External(field)] = value
			}
		case "attributes":
			c.convertAttributes(system, value, result)
		default:
			result[mapping.External(field)] = value
		}
	}

	return dropNils(result), nil
}

func (c *ProductConverter) ConvertFilters(system, entityType string, filters map[string]any) ([]any, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(entityType, system)
	}

	// The polarity flip applies to filter values too: filtering on
	// is_active=true must match disabled=false rows in ERPNext.
	if v, ok := filters["is_active"]; ok && system == SystemERPNext {
		flipped := make(map[string]any, len(filters))
		for k, fv := range filters {
			flipped[k] = fv
		}
		flipped["is_active"] = !asBool(v)
		filters = flipped
	}

	return convertFilters(mapping, system, filters), nil
}

// extractAttributes normalizes the two backend attribute shapes: ERPNext
// uses a list of {attribute, attribute_value} rows, the cloud backend a
// plain name/value object.
func (c *ProductConverter) extractAttributes(system string, raw map[string]any) []domain.ProductAttribute {
	var attrs []domain.ProductAttribute

	switch system {
	case SystemERPNext:
		rows, _ := raw["attributes"].([]any)
		for _, row := range rows {
			attr, ok := row.(map[string]any)
			if !ok {
				continue
			}
			attrs = append(attrs, domain.ProductAttribute{
				Name:  asString(attr["attribute"]),
				Value: attr["attribute_value"],
			})
		}
	case SystemCloudERP:
		pairs, _ := raw["attributes"].(map[string]any)
		for name, value := range pairs {
			attrs = append(attrs, domain.ProductAttribute{Name: name, Value: value})
		}
	}

	return attrs
}

func (c *ProductConverter) convertAttributes(system string, value any, result map[string]any) {
	attrs, ok := value.([]any)
	if !ok || len(attrs) == 0 {
		return
	}

	switch system {
	case SystemERPNext:
		rows := make([]map[string]any, 0, len(attrs))
		for _, a := range attrs {
			attr, ok := a.(map[string]any)
			if !ok {
				continue
			}
			rows = append(rows, map[string]any{
				"attribute":       asString(attr["name"]),
				"attribute_value": attr["value"],
			})
		}
		result["attributes"] = rows
	case SystemCloudERP:
		pairs := make(map[string]any, len(attrs))
		for _, a := range attrs {
			attr, ok := a.(map[string]any)
			if !ok {
				continue
			}
			pairs[asString(attr["name"])] = attr["value"]
		}
		result["attributes"] = pairs
	}
}
