// Package domain defines the standardized entity schema the gateway speaks,
// independent of any backend, plus the error taxonomy shared by all layers.
package domain

import "time"

// Entity type names in standardized (lowercase) form.
const (
	EntityCustomer  = "customer"
	EntityProduct   = "product"
	EntityQuotation = "quotation"
	EntityInvoice   = "invoice"
)

// EntityTypes lists every entity type the gateway supports.
var EntityTypes = []string{EntityCustomer, EntityProduct, EntityQuotation, EntityInvoice}

// IsEntityType reports whether s names a supported entity type.
func IsEntityType(s string) bool {
	for _, t := range EntityTypes {
		if t == s {
			return true
		}
	}
	return false
}

// Entity is implemented by every standardized entity. The two accessors are
// all the dispatch layer needs; handlers work with the concrete types.
type Entity interface {
	EntityType() string
	EntityID() string
}

// Metadata records the provenance of a standardized entity. RawData always
// preserves the untouched backend payload alongside the standardized view.
// DefaultedFields enumerates every field that received a synthetic default
// during conversion, so consumers can detect the lenient-backfill path.
type Metadata struct {
	SourceSystem    string         `json:"source_system" validate:"required"`
	SourceID        string         `json:"source_id"`
	RawData         map[string]any `json:"raw_data"`
	DefaultedFields []string       `json:"defaulted_fields,omitempty"`
}

// Address is the standardized postal address shape.
type Address struct {
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ContactInfo groups a customer's contact channels.
type ContactInfo struct {
	Email   string   `json:"email,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Mobile  string   `json:"mobile,omitempty"`
	Website string   `json:"website,omitempty"`
	Address *Address `json:"address,omitempty"`
}

// Customer is the standardized customer schema.
type Customer struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	CustomerType    string      `json:"customer_type"`
	ContactInfo     ContactInfo `json:"contact_info"`
	TaxID           string      `json:"tax_id,omitempty"`
	Status          string      `json:"status"`
	CreditLimit     *float64    `json:"credit_limit,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	Owner           string      `json:"owner,omitempty"`
	ModifiedBy      string      `json:"modified_by,omitempty"`
	DocStatus       *int        `json:"docstatus,omitempty"`
	NamingSeries    string      `json:"naming_series,omitempty"`
	Salutation      string      `json:"salutation,omitempty"`
	CustomerGroup   string      `json:"customer_group,omitempty"`
	Territory       string      `json:"territory,omitempty"`
	Gender          string      `json:"gender,omitempty"`
	LeadName        string      `json:"lead_name,omitempty"`
	OpportunityName string      `json:"opportunity_name,omitempty"`
	ProspectName    string      `json:"prospect_name,omitempty"`
	AccountManager  string      `json:"account_manager,omitempty"`
	Image           string      `json:"image,omitempty"`
	Language        string      `json:"language,omitempty"`
	MarketSegment   string      `json:"market_segment,omitempty"`
	DefaultCurrency string      `json:"default_currency,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Metadata        Metadata    `json:"metadata" validate:"required"`
}

func (c *Customer) EntityType() string { return EntityCustomer }
func (c *Customer) EntityID() string   { return c.ID }

// ProductAttribute is a single name/value product attribute.
type ProductAttribute struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Product is the standardized product schema.
type Product struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	SKU           string             `json:"sku"`
	Description   string             `json:"description"`
	Category      string             `json:"category"`
	Price         float64            `json:"price"`
	Cost          *float64           `json:"cost,omitempty"`
	TaxRate       *float64           `json:"tax_rate,omitempty"`
	StockQuantity int                `json:"stock_quantity"`
	UnitOfMeasure string             `json:"unit_of_measure"`
	Attributes    []ProductAttribute `json:"attributes"`
	IsActive      bool               `json:"is_active"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Metadata      Metadata           `json:"metadata" validate:"required"`
}

func (p *Product) EntityType() string { return EntityProduct }
func (p *Product) EntityID() string   { return p.ID }

// QuotationItem is one line of a quotation.
type QuotationItem struct {
	ItemCode    string  `json:"item_code"`
	ItemName    string  `json:"item_name"`
	Description string  `json:"description,omitempty"`
	Qty         float64 `json:"qty"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
	UOM         string  `json:"uom"`
}

// Quotation is the standardized quotation schema. The field set follows the
// ERPNext document model, which is the richer of the two backends.
type Quotation struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Owner              string          `json:"owner"`
	Creation           time.Time       `json:"creation"`
	Modified           time.Time       `json:"modified"`
	ModifiedBy         string          `json:"modified_by"`
	DocStatus          int             `json:"docstatus"`
	Title              string          `json:"title,omitempty"`
	QuotationTo        string          `json:"quotation_to"`
	PartyName          string          `json:"party_name"`
	CustomerName       string          `json:"customer_name"`
	TransactionDate    time.Time       `json:"transaction_date"`
	ValidTill          *time.Time      `json:"valid_till,omitempty"`
	OrderType          string          `json:"order_type"`
	Company            string          `json:"company"`
	Currency           string          `json:"currency"`
	ConversionRate     float64         `json:"conversion_rate"`
	SellingPriceList   string          `json:"selling_price_list"`
	PriceListCurrency  string          `json:"price_list_currency"`
	PlcConversionRate  float64         `json:"plc_conversion_rate"`
	Total              float64         `json:"total"`
	TotalQty           float64         `json:"total_qty"`
	BaseTotal          float64         `json:"base_total"`
	BaseNetTotal       float64         `json:"base_net_total"`
	NetTotal           float64         `json:"net_total"`
	BaseGrandTotal     float64         `json:"base_grand_total"`
	GrandTotal         float64         `json:"grand_total"`
	Status             string          `json:"status"`
	Items              []QuotationItem `json:"items" validate:"min=1"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Metadata           Metadata        `json:"metadata" validate:"required"`
}

func (q *Quotation) EntityType() string { return EntityQuotation }
func (q *Quotation) EntityID() string   { return q.ID }

// InvoiceItem is one line of an invoice.
type InvoiceItem struct {
	ProductID          string  `json:"product_id"`
	Description        string  `json:"description"`
	Quantity           float64 `json:"quantity"`
	UnitPrice          float64 `json:"unit_price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	TaxPercentage      float64 `json:"tax_percentage"`
	TotalAmount        float64 `json:"total_amount"`
}

// Invoice is the standardized invoice schema.
type Invoice struct {
	ID              string        `json:"id"`
	Number          string        `json:"number"`
	CustomerID      string        `json:"customer_id"`
	InvoiceDate     time.Time     `json:"invoice_date"`
	DueDate         time.Time     `json:"due_date"`
	Status          string        `json:"status"`
	Currency        string        `json:"currency"`
	Subtotal        float64       `json:"subtotal"`
	TaxTotal        float64       `json:"tax_total"`
	DiscountTotal   float64       `json:"discount_total"`
	GrandTotal      float64       `json:"grand_total"`
	Notes           string        `json:"notes,omitempty"`
	PaymentTerms    string        `json:"payment_terms,omitempty"`
	Items           []InvoiceItem `json:"items"`
	BillingAddress  *Address      `json:"billing_address,omitempty"`
	ShippingAddress *Address      `json:"shipping_address,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Metadata        Metadata      `json:"metadata" validate:"required"`
}

func (i *Invoice) EntityType() string { return EntityInvoice }
func (i *Invoice) EntityID() string   { return i.ID }
