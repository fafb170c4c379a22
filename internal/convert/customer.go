package convert

import (
	"github.com/straye-as/erp-gateway/internal/domain"
	"go.uber.org/zap"
)

// CustomerConverter translates customer records. Field mappings are keyed
// standardized name -> backend name; dotted keys address the nested address
// block inside contact info.
type CustomerConverter struct {
	logger   *zap.Logger
	mappings map[string]FieldMapping
}

func NewCustomerConverter(logger *zap.Logger) *CustomerConverter {
	return &CustomerConverter{
		logger: logger.Named("convert.customer"),
		mappings: map[string]FieldMapping{
			SystemERPNext: {
				"id":               "name",
				"name":             "customer_name",
				"customer_type":    "customer_type",
				"email":            "email_id",
				"phone":            "phone",
				"mobile":           "mobile_no",
				"website":          "website",
				"tax_id":           "tax_id",
				"status":           "status",
				"credit_limit":     "credit_limit",
				"notes":            "notes",
				"created_at":       "creation",
				"updated_at":       "modified",
				"owner":            "owner",
				"modified_by":      "modified_by",
				"docstatus":        "docstatus",
				"naming_series":    "naming_series",
				"salutation":       "salutation",
				"customer_group":   "customer_group",
				"territory":        "territory",
				"gender":           "gender",
				"lead_name":        "lead_name",
				"opportunity_name": "opportunity_name",
				"prospect_name":    "prospect_name",
				"account_manager":  "account_manager",
				"image":            "image",
				"language":         "language",
				"market_segment":   "market_segment",
				"default_currency": "default_currency",
				// Address fields
				"address.street1":     "address_line1",
				"address.street2":     "address_line2",
				"address.city":        "city",
				"address.state":       "state",
				"address.postal_code": "pincode",
				"address.country":     "country",
			},
			SystemCloudERP: {
				"id":            "customer_id",
				"name":          "name",
				"customer_type": "type",
				"email":         "email_address",
				"phone":         "phone_number",
				"mobile":        "mobile_number",
				"website":       "web_site",
				"tax_id":        "tax_identifier",
				"status":        "status",
				"credit_limit":  "credit_limit_amount",
				"notes":         "customer_notes",
				"created_at":    "created_date",
				"updated_at":    "last_modified_date",
				// Address fields
				"address.street1":     "street",
				"address.street2":     "street2",
				"address.city":        "city",
				"address.state":       "state",
				"address.postal_code": "zip",
				"address.country":     "country",
			},
		},
	}
}

func (c *CustomerConverter) Mapping(system string) FieldMapping {
	return c.mappings[system]
}

func (c *CustomerConverter) ExternalToStandard(system string, raw map[string]any) (domain.Entity, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(domain.EntityCustomer, system)
	}

	get := func(field string) any { return raw[mapping.External(field)] }
	d := newDefaulter()

	customer := &domain.Customer{
		ID:           d.str("id", asString(get("id"))),
		Name:         d.str("name", asString(get("name"))),
		CustomerType: d.strOr("customer_type", asString(get("customer_type")), "Company"),
		ContactInfo: domain.ContactInfo{
			Email:   asString(get("email")),
			Phone:   asString(get("phone")),
			Mobile:  asString(get("mobile")),
			Website: asString(get("website")),
			Address: c.extractAddress(mapping, raw),
		},
		TaxID:           asString(get("tax_id")),
		Status:          d.strOr("status", asString(get("status")), "Active"),
		Notes:           asString(get("notes")),
		Owner:           asString(get("owner")),
		ModifiedBy:      asString(get("modified_by")),
		NamingSeries:    asString(get("naming_series")),
		Salutation:      asString(get("salutation")),
		CustomerGroup:   asString(get("customer_group")),
		Territory:       asString(get("territory")),
		Gender:          asString(get("gender")),
		LeadName:        asString(get("lead_name")),
		OpportunityName: asString(get("opportunity_name")),
		ProspectName:    asString(get("prospect_name")),
		AccountManager:  asString(get("account_manager")),
		Image:           asString(get("image")),
		Language:        asString(get("language")),
		MarketSegment:   asString(get("market_segment")),
		DefaultCurrency: asString(get("default_currency")),
		CreatedAt:       d.time("created_at", get("created_at")),
		UpdatedAt:       d.time("updated_at", get("updated_at")),
	}

	if v, ok := asFloat(get("credit_limit")); ok {
		customer.CreditLimit = &v
	}
	if n, ok := asInt(get("docstatus")); ok {
		customer.DocStatus = &n
	}

	customer.Metadata = domain.Metadata{
		SourceSystem:    system,
		SourceID:        asString(get("id")),
		RawData:         raw,
		DefaultedFields: d.fields,
	}

	d.warn(c.logger, system, domain.EntityCustomer)
	if err := checkComplete(system, domain.EntityCustomer, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (c *CustomerConverter) StandardToExternal(system string, std map[string]any) (map[string]any, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(domain.EntityCustomer, system)
	}

	result := map[string]any{}
	if system == SystemERPNext {
		result["doctype"] = "Customer"
	}

	for field, value := range std {
		switch field {
		case "metadata":
			// Provenance never travels back to a backend.
		case "contact_info":
			contact, ok := value.(map[string]any)
			if !ok {
				continue
			}
			for _, cf := range []string{"email", "phone", "mobile", "website"} {
				if v := contact[cf]; v != nil && v != "" {
					result[mapping.External(cf)] = v
				}
			}
			if addr, ok := contact["address"].(map[string]any); ok {
				for af, av := range addr {
					if ext, mapped := mapping["address."+af]; mapped && av != nil {
						result[ext] = av
					}
				}
			}
		default:
			result[mapping.External(field)] = value
		}
	}

	return dropNils(result), nil
}

func (c *CustomerConverter) ConvertFilters(system, entityType string, filters map[string]any) ([]any, error) {
	mapping := c.Mapping(system)
	if mapping == nil {
		return nil, missingMapping(entityType, system)
	}
	return convertFilters(mapping, system, filters), nil
}

// extractAddress builds the nested address only when the backend record
// carries the anchor field (street line 1).
func (c *CustomerConverter) extractAddress(mapping FieldMapping, raw map[string]any) *domain.Address {
	street1 := asString(raw[mapping.External("address.street1")])
	if street1 == "" {
		return nil
	}
	return &domain.Address{
		Street1:    street1,
		Street2:    asString(raw[mapping.External("address.street2")]),
		City:       asString(raw[mapping.External("address.city")]),
		State:      asString(raw[mapping.External("address.state")]),
		PostalCode: asString(raw[mapping.External("address.postal_code")]),
		Country:    asString(raw[mapping.External("address.country")]),
	}
}
