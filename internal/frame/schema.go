package frame

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// SchemaErr marks input that does not satisfy the declared schema.
	SchemaErr = errors.New("schema violation")
	// DataQualityErr marks values that remain missing or unparseable after cleaning.
	DataQualityErr = errors.New("data quality violation")
)

// Kind tags a column as numeric, categorical or ordinal.
type Kind int

const (
	Numeric Kind = iota
	Categorical
	Ordinal
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Ordinal:
		return "ordinal"
	}
	return "unknown"
}

// Column declares one attribute of a dataset.
type Column struct {
	// Name is the canonical column name after cleaning.
	Name string
	// From is the normalized header in the raw file, when it differs from Name.
	From string
	Kind Kind
	// Required columns must be present in the input; optional columns
	// are dropped from the table when the file does not carry them.
	Required bool
	// Vocabulary is the canonical value set for categorical and ordinal columns.
	// Its declared order defines the stable category code of each value,
	// so codes never shift when a file happens to present values in another order.
	Vocabulary []string
	// Synonyms maps raw spellings to their canonical vocabulary value.
	Synonyms map[string]string
	// Default imputes missing values. Empty means the row is dropped instead.
	Default string
}

// Code returns the stable code of a canonical value.
func (c Column) Code(value string) (int, error) {
	for i, v := range c.Vocabulary {
		if v == value {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %s has no code for %q: %w", c.Name, value, DataQualityErr)
}

// Canonical maps a raw cell to its canonical vocabulary value.
func (c Column) Canonical(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if mapped, ok := c.Synonyms[v]; ok {
		v = mapped
	}
	if len(c.Vocabulary) == 0 {
		return v, nil
	}
	for _, known := range c.Vocabulary {
		if known == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("column %s: value %q outside vocabulary: %w", c.Name, raw, DataQualityErr)
}

// Schema is the expected shape of one dataset.
type Schema struct {
	Dataset string
	Columns []Column
}

// Column looks a column declaration up by canonical name.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the canonical column names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// WithColumn returns a schema extended by one derived column declaration.
func (s Schema) WithColumn(c Column) Schema {
	columns := make([]Column, 0, len(s.Columns)+1)
	columns = append(columns, s.Columns...)
	columns = append(columns, c)
	return Schema{Dataset: s.Dataset, Columns: columns}
}

// NormalizeName maps a raw header to its canonical snake_case form.
func NormalizeName(raw string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}
