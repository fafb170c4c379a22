package convert

import (
	"github.com/straye-as/erp-gateway/internal/domain"
	"go.uber.org/zap"
)

// QuotationConverter translates quotation documents, the widest of the four
// schemas. Line items travel as a nested collection and are reshaped into
// each backend's native list-of-record form.
type QuotationConverter struct {
	logger   *zap.Logger
	mappings map[string]FieldMapping
}

func NewQuotationConverter(logger *zap.Logger) *QuotationConverter {
	return &QuotationConverter{
		logger: logger.Named("convert.quotation"),
		mappings: map[string]FieldMapping{
			SystemERPNext: {
				"id":               "name",
				"name":             "name",
				"owner":            "owner",
				"created_at":       "creation",
				"updated_at":       "modified",
				"modified_by":      "modified_by",
				"title":            "title",
				"quotation_to":     "quotation_to",
				"party_name":       "party_name",
				"customer_name":    "customer_name",
				"transaction_date": "transaction_date",
				"valid_till":       "valid_till",
				"status":           "status",
				"currency":         "currency",
				"total":            "total",
				"grand_total":      "grand_total",
				"items":            "items",
			},
			SystemCloudERP: {
				"id":               "quotation_id",
				"name":             "quotation_number",
				"owner":            "created_by",
				"created_at":       "created_date",
				"updated_at":       "modified_date",
				"modified_by":      "modified_by",
				"title":            "title",
				"customer_name":    "customer_name",
				"transaction_date": "quotation_date",
				"valid_till":       "expiry_date",
				"status":           "quotation_status",
				"currency":         "currency_code",
				"total":            "subtotal",
				"grand_total":      "total_amount",
				"items":            "line_items",
			},
		},
	}
}

func (c *QuotationConverter) Mapping(system string) FieldMapping {
	return c.mappings[system]
}

func (c *QuotationConverter) ExternalToStandard(system string, raw map[string]any) (domain.Entity, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(domain.EntityQuotation, system)
	}

	get := func(field string) any { return raw[mapping.External(field)] }
	d := newDefaulter()

	id := asString(get("id"))
	quotation := &domain.Quotation{
		ID:                d.str("id", id),
		Name:              d.str("name", asString(get("name"))),
		Owner:             d.str("owner", asString(get("owner"))),
		ModifiedBy:        d.str("modified_by", asString(get("modified_by"))),
		Title:             asString(get("title")),
		QuotationTo:       d.strOr("quotation_to", asString(get("quotation_to")), "Customer"),
		PartyName:         d.str("party_name", asString(get("party_name"))),
		CustomerName:      d.str("customer_name", asString(get("customer_name"))),
		TransactionDate:   d.time("transaction_date", get("transaction_date")),
		OrderType:         d.strOr("order_type", asString(raw["order_type"]), "Sales"),
		Company:           d.strOr("company", asString(raw["company"]), "Default Company"),
		Currency:          d.strOr("currency", asString(get("currency")), "USD"),
		ConversionRate:    numOr(raw["conversion_rate"], 1.0),
		SellingPriceList:  strOr(raw["selling_price_list"], "Standard Selling"),
		PriceListCurrency: strOr(raw["price_list_currency"], "USD"),
		PlcConversionRate: numOr(raw["plc_conversion_rate"], 1.0),
		Total:             d.num("total", get("total")),
		TotalQty:          d.num("total_qty", raw["total_qty"]),
		BaseTotal:         d.num("base_total", raw["base_total"]),
		BaseNetTotal:      d.num("base_net_total", raw["base_net_total"]),
		NetTotal:          d.num("net_total", raw["net_total"]),
		BaseGrandTotal:    d.num("base_grand_total", raw["base_grand_total"]),
		GrandTotal:        d.num("grand_total", get("grand_total")),
		Status:            d.strOr("status", asString(get("status")), "Draft"),
		Items:             c.convertItems(system, raw, d),
		CreatedAt:         d.time("created_at", get("created_at")),
		UpdatedAt:         d.time("updated_at", get("updated_at")),
	}
	quotation.Creation = quotation.CreatedAt
	quotation.Modified = quotation.UpdatedAt

	if n, ok := asInt(raw["docstatus"]); ok {
		quotation.DocStatus = n
	}
	if ts, ok := parseTime(get("valid_till")); ok {
		quotation.ValidTill = &ts
	}

	quotation.Metadata = domain.Metadata{
		SourceSystem:    system,
		SourceID:        id,
		RawData:         raw,
		DefaultedFields: d.fields,
	}

	d.warn(c.logger, system, domain.EntityQuotation)
	if err := checkComplete(system, domain.EntityQuotation, quotation); err != nil {
		return nil, err
	}
	return quotation, nil
}

func (c *QuotationConverter) StandardToExternal(system string, std map[string]any) (map[string]any, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(domain.EntityQuotation, system)
	}

	result := map[string]any{}
	if system == SystemERPNext {
		result["doctype"] = "Quotation"
	}

	for field, value := range std {
		switch field {
		case "metadata":
		case "items":
			items, ok := value.([]any)
			if !ok || len(items) == 0 {
				continue
			}
			result[mapping.External("items")] = c.formatItems(system, items)
		default:
			result[mapping.External(field)] = value
		}
	}

	return dropNils(result), nil
}

func (c *QuotationConverter) ConvertFilters(system, entityType string, filters map[string]any) ([]any, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(entityType, system)
	}
	return convertFilters(mapping, system, filters), nil
}

// convertItems normalizes backend line items. A quotation with no items at
// all gets a single well-formed placeholder so the collection contract
// (at least one item) holds; the placeholder is recorded as a default.
func (c *QuotationConverter) convertItems(system string, raw map[string]any, d *defaulter) []domain.QuotationItem {
	rows, _ := raw[c.Mapping(system).External("items")].([]any)
	if len(rows) == 0 {
		d.fields = append(d.fields, "items")
		return []domain.QuotationItem{placeholderItem()}
	}

	items := make([]domain.QuotationItem, 0, len(rows))
	for _, row := range rows {
		item, ok := row.(map[string]any)
		if !ok {
			continue
		}
		if system == SystemCloudERP {
			items = append(items, domain.QuotationItem{
				ItemCode:    asString(item["product_id"]),
				ItemName:    asString(item["product_name"]),
				Description: asString(item["description"]),
				Qty:         numOr(item["quantity"], 0),
				Rate:        numOr(item["unit_price"], 0),
				Amount:      numOr(item["total"], 0),
				UOM:         asString(item["unit"]),
			})
			continue
		}
		items = append(items, domain.QuotationItem{
			ItemCode:    asString(item["item_code"]),
			ItemName:    asString(item["item_name"]),
			Description: asString(item["description"]),
			Qty:         numOr(item["qty"], 0),
			Rate:        numOr(item["rate"], 0),
			Amount:      numOr(item["amount"], 0),
			UOM:         asString(item["uom"]),
		})
	}

	if len(items) == 0 {
		d.fields = append(d.fields, "items")
		return []domain.QuotationItem{placeholderItem()}
	}
	return items
}

func placeholderItem() domain.QuotationItem {
	return domain.QuotationItem{
		ItemCode:    "DEFAULT-ITEM",
		ItemName:    "Default Item",
		Description: "Default item when none provided",
		UOM:         "Unit",
	}
}

// formatItems reshapes standardized line items into the backend's native
// list-of-record form.
func (c *QuotationConverter) formatItems(system string, items []any) []map[string]any {
	rows := make([]map[string]any, 0, len(items))
	for _, it := range items {
		item, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if system == SystemCloudERP {
			rows = append(rows, map[string]any{
				"product_id":   asString(item["item_code"]),
				"product_name": asString(item["item_name"]),
				"description":  asString(item["description"]),
				"quantity":     numOr(item["qty"], 0),
				"unit_price":   numOr(item["rate"], 0),
				"total":        numOr(item["amount"], 0),
				"unit":         asString(item["uom"]),
			})
			continue
		}
		rows = append(rows, map[string]any{
			"item_code":   asString(item["item_code"]),
			"item_name":   asString(item["item_name"]),
			"description": asString(item["description"]),
			"qty":         numOr(item["qty"], 0),
			"rate":        numOr(item["rate"], 0),
			"amount":      numOr(item["amount"], 0),
			"uom":         asString(item["uom"]),
		})
	}
	return rows
}

func numOr(v any, def float64) float64 {
	if f, ok := asFloat(v); ok {
		return f
	}
	return def
}

func strOr(v any, def string) string {
	if s := asString(v); s != "" {
		return s
	}
	return def
}
