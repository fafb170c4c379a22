// Package convert implements the bidirectional field-mapping engine between
// backend-native entity representations and the standardized schema, plus the
// translation of standardized filters into backend-native filter syntax.
//
// Converters are pure and stateless: the per-backend mapping tables are built
// once at construction and never mutated, so a single converter instance is
// shared across all requests.
package convert

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/straye-as/erp-gateway/internal/domain"
	"go.uber.org/zap"
)

var validate = validator.New()

// Backend system identifiers used as keys in the mapping tables. They match
// the adapter_name values in the backend configuration records.
const (
	SystemERPNext  = "erp_next"
	SystemCloudERP = "cloud_erp"
)

// FieldMapping maps standardized field names to backend-native field names
// for one (entity type, backend) pair. Dotted paths address nested structures
// (e.g. "address.street1"). The reverse direction is derived by inversion.
type FieldMapping map[string]string

// External returns the backend field name for a standardized field, falling
// back to the standardized name when no mapping entry exists.
func (m FieldMapping) External(std string) string {
	if ext, ok := m[std]; ok {
		return ext
	}
	return std
}

// Reverse returns the inverted mapping (backend field -> standardized field).
func (m FieldMapping) Reverse() FieldMapping {
	rev := make(FieldMapping, len(m))
	for std, ext := range m {
		rev[ext] = std
	}
	return rev
}

// Converter translates one entity type between a backend's native
// representation and the standardized schema.
type Converter interface {
	// ExternalToStandard converts a raw backend record into a fully
	// populated standardized entity. Missing required fields are backfilled
	// with documented defaults and recorded in Metadata.DefaultedFields; a
	// missing mapping table for the system is a ConversionError.
	ExternalToStandard(system string, raw map[string]any) (domain.Entity, error)

	// StandardToExternal converts standardized input into the backend's
	// native shape. Nil values are dropped; backend envelope fields (such as
	// the ERPNext doctype discriminator) are injected.
	StandardToExternal(system string, std map[string]any) (map[string]any, error)

	// ConvertFilters translates a standardized filter map into the backend's
	// native filter expression. Unmapped fields pass through verbatim.
	ConvertFilters(system, entityType string, filters map[string]any) ([]any, error)

	// Mapping exposes the field mapping for a system; empty when unknown.
	Mapping(system string) FieldMapping
}

// Registry resolves entity type names to their converter. It fails closed:
// unknown entity types are a ConfigurationError, never a nil converter.
type Registry struct {
	converters map[string]Converter
}

// NewRegistry builds the registry with one converter per supported entity
// type. Constructed once at startup and injected where needed.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		converters: map[string]Converter{
			domain.EntityCustomer:  NewCustomerConverter(logger),
			domain.EntityProduct:   NewProductConverter(logger),
			domain.EntityQuotation: NewQuotationConverter(logger),
			domain.EntityInvoice:   NewInvoiceConverter(logger),
		},
	}
}

// Get returns the converter for an entity type.
func (r *Registry) Get(entityType string) (Converter, error) {
	c, ok := r.converters[entityType]
	if !ok {
		return nil, &domain.ConfigurationError{
			Message: fmt.Sprintf("no converter registered for entity type: %s", entityType),
		}
	}
	return c, nil
}

// EntityTypes returns the entity types the registry can convert.
func (r *Registry) EntityTypes() []string {
	types := make([]string, 0, len(r.converters))
	for t := range r.converters {
		types = append(types, t)
	}
	return types
}

func missingMapping(entityType, system string) error {
	return &domain.ConversionError{
		Message: fmt.Sprintf("no %s field mapping for source system", entityType),
		System:  system,
	}
}

// checkComplete is the final assertion on an assembled entity: after mapping
// and backfilling, every required standardized field must hold a value. A
// failure here is a converter defect surfacing, not bad backend data.
func checkComplete(system, entityType string, entity domain.Entity) error {
	if err := validate.Struct(entity); err != nil {
		return &domain.ConversionError{
			Message: fmt.Sprintf("converted %s violates the standardized schema", entityType),
			System:  system,
			Err:     err,
		}
	}
	return nil
}
