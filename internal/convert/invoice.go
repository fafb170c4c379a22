package convert

import (
	"github.com/straye-as/erp-gateway/internal/domain"
	"go.uber.org/zap"
)

// InvoiceConverter translates invoice documents between the standardized
// schema and each backend's native shape.
type InvoiceConverter struct {
	logger   *zap.Logger
	mappings map[string]FieldMapping
}

func NewInvoiceConverter(logger *zap.Logger) *InvoiceConverter {
	return &InvoiceConverter{
		logger: logger.Named("convert.invoice"),
		mappings: map[string]FieldMapping{
			SystemERPNext: {
				"id":             "name",
				"number":         "name",
				"customer_id":    "customer",
				"invoice_date":   "posting_date",
				"due_date":       "due_date",
				"status":         "status",
				"currency":       "currency",
				"subtotal":       "net_total",
				"tax_total":      "total_taxes_and_charges",
				"discount_total": "discount_amount",
				"grand_total":    "grand_total",
				"notes":          "remarks",
				"payment_terms":  "payment_terms_template",
				"items":          "items",
				"created_at":     "creation",
				"updated_at":     "modified",
			},
			SystemCloudERP: {
				"id":           "invoice_id",
				"number":       "invoice_number",
				"customer_id":  "customer_id",
				"invoice_date": "issue_date",
				"due_date":     "due_date",
				"status":       "invoice_status",
				"currency":     "currency_code",
				"subtotal":     "subtotal",
				"tax_total":    "tax_amount",
				"grand_total":  "total_amount",
				"notes":        "notes",
				"items":        "line_items",
				"created_at":   "created_date",
				"updated_at":   "modified_date",
			},
		},
	}
}

func (c *InvoiceConverter) Mapping(system string) FieldMapping {
	return c.mappings[system]
}

func (c *InvoiceConverter) ExternalToStandard(system string, raw map[string]any) (domain.Entity, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(domain.EntityInvoice, system)
	}

	get := func(field string) any { return raw[mapping.External(field)] }
	d := newDefaulter()

	id := asString(get("id"))
	invoice := &domain.Invoice{
		ID:            d.str("id", id),
		Number:        d.str("number", asString(get("number"))),
		CustomerID:    d.str("customer_id", asString(get("customer_id"))),
		InvoiceDate:   d.time("invoice_date", get("invoice_date")),
		DueDate:       d.time("due_date", get("due_date")),
		Status:        d.strOr("status", asString(get("status")), "Draft"),
		Currency:      d.strOr("currency", asString(get("currency")), "USD"),
		Subtotal:      d.num("subtotal", get("subtotal")),
		TaxTotal:      d.num("tax_total", get("tax_total")),
		DiscountTotal: d.num("discount_total", get("discount_total")),
		GrandTotal:    d.num("grand_total", get("grand_total")),
		Notes:         asString(get("notes")),
		PaymentTerms:  asString(get("payment_terms")),
		Items:         c.convertItems(system, raw),
		CreatedAt:     d.time("created_at", get("created_at")),
		UpdatedAt:     d.time("updated_at", get("updated_at")),
	}

	invoice.Metadata = domain.Metadata{
		SourceSystem:    system,
		SourceID:        id,
		RawData:         raw,
		DefaultedFields: d.fields,
	}

	d.warn(c.logger, system, domain.EntityInvoice)
	if err := checkComplete(system, domain.EntityInvoice, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (c *InvoiceConverter) StandardToExternal(system string, std map[string]any) (map[string]any, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(domain.EntityInvoice, system)
	}

	result := map[string]any{}
	if system == SystemERPNext {
		result["doctype"] = "Sales Invoice"
	}

	for field, value := range std {
		switch field {
		case "metadata", "billing_address", "shipping_address":
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

func (c *InvoiceConverter) ConvertFilters(system, entityType string, filters map[string]any) ([]any, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(entityType, system)
	}
	return convertFilters(mapping, system, filters), nil
}

func (c *InvoiceConverter) convertItems(system string, raw map[string]any) []domain.InvoiceItem {
	rows, _ := raw[c.Mapping(system).External("items")].([]any)
	items := make([]domain.InvoiceItem, 0, len(rows))
	for _, row := range rows {
		item, ok := row.(map[string]any)
		if !ok {
			continue
		}
		if system == SystemCloudERP {
			items = append(items, domain.InvoiceItem{
				ProductID:          asString(item["product_id"]),
				Description:        asString(item["description"]),
				Quantity:           numOr(item["quantity"], 0),
				UnitPrice:          numOr(item["unit_price"], 0),
				DiscountPercentage: numOr(item["discount_percent"], 0),
				TaxPercentage:      numOr(item["tax_percent"], 0),
				TotalAmount:        numOr(item["total"], 0),
			})
			continue
		}
		items = append(items, domain.InvoiceItem{
			ProductID:          asString(item["item_code"]),
			Description:        asString(item["description"]),
			Quantity:           numOr(item["qty"], 0),
			UnitPrice:          numOr(item["rate"], 0),
			DiscountPercentage: numOr(item["discount_percentage"], 0),
			TotalAmount:        numOr(item["amount"], 0),
		})
	}
	return items
}

func (c *InvoiceConverter) formatItems(system string, items []any) []map[string]any {
	rows := make([]map[string]any, 0, len(items))
	for _, it := range items {
		item, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if system == SystemCloudERP {
			rows = append(rows, map[string]any{
				"product_id":       asString(item["product_id"]),
				"description":      asString(item["description"]),
				"quantity":         numOr(item["quantity"], 0),
				"unit_price":       numOr(item["unit_price"], 0),
				"discount_percent": numOr(item["discount_percentage"], 0),
				"tax_percent":      numOr(item["tax_percentage"], 0),
				"total":            numOr(item["total_amount"], 0),
			})
			continue
		}
		rows = append(rows, map[string]any{
			"item_code":           asString(item["product_id"]),
			"description":         asString(item["description"]),
			"qty":                 numOr(item["quantity"], 0),
			"rate":                numOr(item["unit_price"], 0),
			"discount_percentage": numOr(item["discount_percentage"], 0),
			"amount":              numOr(item["total_amount"], 0),
		})
	}
	return rows
}
