package convert

import (
	"time"

	"go.uber.org/zap"
)

// defaulter applies the documented default-backfill policy and records every
// field it touched. Backfilling keeps ingestion lenient when a backend omits
// required fields; it is deliberately narrow and always logged, since it can
// mask backend data-quality issues. The recorded field list ends up in
// Metadata.DefaultedFields.
type defaulter struct {
	fields []string
}

func newDefaulter() *defaulter {
	return &defaulter{}
}

// str records identity-style string fields that arrived empty. The default
// for those is the empty string itself, so the value passes through.
func (d *defaulter) str(name, v string) string {
	if v == "" {
		d.fields = append(d.fields, name)
	}
	return v
}

// strOr substitutes def when the backend omitted the field.
func (d *defaulter) strOr(name, v, def string) string {
	if v == "" {
		d.fields = append(d.fields, name)
		return def
	}
	return v
}

// num coerces a numeric field, defaulting to 0.
func (d *defaulter) num(name string, v any) float64 {
	if f, ok := asFloat(v); ok {
		return f
	}
	d.fields = append(d.fields, name)
	return 0
}

// count coerces an integral field, defaulting to 0.
func (d *defaulter) count(name string, v any) int {
	if n, ok := asInt(v); ok {
		return n
	}
	d.fields = append(d.fields, name)
	return 0
}

// time parses a timestamp field, defaulting to now when absent or
// unparsable.
func (d *defaulter) time(name string, v any) time.Time {
	ts, parsed := timeOrNow(v)
	if !parsed {
		d.fields = append(d.fields, name)
	}
	return ts
}

// warn emits the single warning enumerating every backfilled field. Silent
// when nothing was defaulted.
func (d *defaulter) warn(logger *zap.Logger, system, entityType string) {
	if len(d.fields) == 0 {
		return
	}
	logger.Warn("backfilled missing required fields with defaults",
		zap.String("system", system),
		zap.String("entity_type", entityType),
		zap.Strings("defaulted_fields", d.fields),
	)
}

// dropNils removes explicit nulls so backends never receive them for
// optional fields.
func dropNils(m map[string]any) map[string]any {
	for k, v := range m {
		if v == nil {
			delete(m, k)
		}
	}
	return m
}
