package docproc

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FieldSpec describes one canonical financial field: its key, display unit,
// and the sanity bounds an extracted value must fall inside.
type FieldSpec struct {
	Key  string   `yaml:"key"`
	Unit string   `yaml:"unit"`
	Min  *float64 `yaml:"min,omitempty"`
	Max  *float64 `yaml:"max,omitempty"`
}

// Catalog is the canonical field vocabulary used during normalization.
// Fields outside the catalog, or with values outside their bounds, are
// dropped rather than persisted.
type Catalog struct {
	Fields []FieldSpec `yaml:"fields"`

	byKey map[string]FieldSpec
}

func fptr(v float64) *float64 { return &v }

// DefaultCatalog returns the built-in field vocabulary.
func DefaultCatalog() *Catalog {
	c := &Catalog{Fields: []FieldSpec{
		{Key: "purchase_price", Unit: "$", Min: fptr(0)},
		{Key: "square_feet", Unit: "sqft", Min: fptr(0)},
		{Key: "unit_count", Min: fptr(0), Max: fptr(100_000)},
		{Key: "year_built", Min: fptr(1800), Max: fptr(2100)},
		{Key: "rent_psf_yr", Unit: "$/sqft/yr", Min: fptr(0), Max: fptr(1_000)},
		{Key: "rent_per_unit", Unit: "$/unit/mo", Min: fptr(0)},
		{Key: "vacancy_rate", Unit: "ratio", Min: fptr(0), Max: fptr(1)},
		{Key: "occupancy_rate", Unit: "ratio", Min: fptr(0), Max: fptr(1)},
		{Key: "opex_ratio", Unit: "ratio", Min: fptr(0), Max: fptr(1)},
		{Key: "cap_rate", Unit: "ratio", Min: fptr(0), Max: fptr(0.5)},
		{Key: "noi", Unit: "$"},
		{Key: "closing_costs", Unit: "$", Min: fptr(0)},
		{Key: "capex_budget", Unit: "$", Min: fptr(0)},
	}}
	c.index()
	return c
}

// LoadCatalog reads a field catalog from a YAML file. Fields missing bounds
// inherit them from the built-in catalog when the key matches.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "docproc: read catalog %s", path)
	}

	// The YAML has a top-level "catalog" key
	var wrapper struct {
		Catalog Catalog `yaml:"catalog"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "docproc: parse catalog")
	}

	cat := &wrapper.Catalog
	if len(cat.Fields) == 0 {
		return nil, eris.Errorf("docproc: catalog %s defines no fields", path)
	}

	defaults := DefaultCatalog()
	for i, f := range cat.Fields {
		base, ok := defaults.byKey[f.Key]
		if !ok {
			continue
		}
		if f.Min == nil {
			cat.Fields[i].Min = base.Min
		}
		if f.Max == nil {
			cat.Fields[i].Max = base.Max
		}
		if f.Unit == "" {
			cat.Fields[i].Unit = base.Unit
		}
	}
	cat.index()

	return cat, nil
}

func (c *Catalog) index() {
	c.byKey = make(map[string]FieldSpec, len(c.Fields))
	for _, f := range c.Fields {
		c.byKey[f.Key] = f
	}
}

// Keys returns the canonical field keys in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Accepts reports whether key is canonical and value falls inside its
// bounds. A nil value passes when the key is known.
func (c *Catalog) Accepts(key string, value *float64) bool {
	spec, ok := c.byKey[key]
	if !ok {
		return false
	}
	if value == nil {
		return true
	}
	if spec.Min != nil && *value < *spec.Min {
		return false
	}
	if spec.Max != nil && *value > *spec.Max {
		return false
	}
	return true
}
