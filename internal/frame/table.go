package frame

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
)

// Table is an in-memory dataset bound to its schema.
// A raw table (as produced by Load) still carries string cells;
// a cleaned one (as produced by Clean) is fully typed and gap free.
type Table struct {
	Schema  Schema
	df      dataframe.DataFrame
	cleaned bool
}

// Rows returns the number of observations.
func (t Table) Rows() int {
	return t.df.Nrow()
}

// Names returns the column names currently present.
func (t Table) Names() []string {
	return t.df.Names()
}

// Cleaned reports whether the table went through Clean.
func (t Table) Cleaned() bool {
	return t.cleaned
}

// Numeric returns the values of a numeric column.
func (t Table) Numeric(name string) ([]float64, error) {
	decl, ok := t.Schema.Column(name)
	if !ok {
		return nil, fmt.Errorf("unknown column %s: %w", name, SchemaErr)
	}
	if decl.Kind != Numeric {
		return nil, fmt.Errorf("column %s is %s, not numeric: %w", name, decl.Kind, SchemaErr)
	}
	return t.df.Col(name).Float(), nil
}

// Strings returns the values of a categorical or ordinal column.
func (t Table) Strings(name string) ([]string, error) {
	decl, ok := t.Schema.Column(name)
	if !ok {
		return nil, fmt.Errorf("unknown column %s: %w", name, SchemaErr)
	}
	if decl.Kind == Numeric {
		return nil, fmt.Errorf("column %s is numeric: %w", name, SchemaErr)
	}
	return t.df.Col(name).Records(), nil
}

// Codes returns a categorical or ordinal column encoded with its
// stable vocabulary codes.
func (t Table) Codes(name string) ([]float64, error) {
	decl, ok := t.Schema.Column(name)
	if !ok {
		return nil, fmt.Errorf("unknown column %s: %w", name, SchemaErr)
	}
	if len(decl.Vocabulary) == 0 {
		return nil, fmt.Errorf("column %s has no declared vocabulary: %w", name, SchemaErr)
	}
	values := t.df.Col(name).Records()
	codes := make([]float64, len(values))
	for i, v := range values {
		code, err := decl.Code(v)
		if err != nil {
			return nil, err
		}
		codes[i] = float64(code)
	}
	return codes, nil
}

// Matrix projects the requested columns onto a dense numeric matrix.
// Numeric columns contribute their values, categorical and ordinal ones
// their stable codes.
func (t Table) Matrix(cols ...string) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns requested: %w", SchemaErr)
	}
	n := t.Rows()
	m := mat.NewDense(n, len(cols), nil)
	for j, name := range cols {
		decl, ok := t.Schema.Column(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %s: %w", name, SchemaErr)
		}
		var values []float64
		var err error
		if decl.Kind == Numeric {
			values, err = t.Numeric(name)
		} else {
			values, err = t.Codes(name)
		}
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			m.Set(i, j, v)
		}
	}
	return m, nil
}

// NumericNames returns the names of all numeric columns, in schema order.
func (t Table) NumericNames() []string {
	names := make([]string, 0, len(t.Schema.Columns))
	for _, c := range t.Schema.Columns {
		if c.Kind == Numeric && contains(t.df.Names(), c.Name) {
			names = append(names, c.Name)
		}
	}
	return names
}

// WithColumn returns a table extended by a derived column.
// The declaration is appended to the schema so the new column can be
// used like any declared one.
func (t Table) WithColumn(decl Column, values interface{}) (Table, error) {
	var s series.Series
	switch v := values.(type) {
	case []float64:
		if decl.Kind != Numeric {
			return Table{}, fmt.Errorf("derived column %s: float values on %s column: %w", decl.Name, decl.Kind, SchemaErr)
		}
		if len(v) != t.Rows() {
			return Table{}, fmt.Errorf("derived column %s: %d values for %d rows: %w", decl.Name, len(v), t.Rows(), SchemaErr)
		}
		s = series.New(v, series.Float, decl.Name)
	case []string:
		if decl.Kind == Numeric {
			return Table{}, fmt.Errorf("derived column %s: string values on numeric column: %w", decl.Name, SchemaErr)
		}
		if len(v) != t.Rows() {
			return Table{}, fmt.Errorf("derived column %s: %d values for %d rows: %w", decl.Name, len(v), t.Rows(), SchemaErr)
		}
		s = series.New(v, series.String, decl.Name)
	default:
		return Table{}, fmt.Errorf("derived column %s: unsupported value type %T: %w", decl.Name, values, SchemaErr)
	}
	df := t.df.Mutate(s)
	if df.Err != nil {
		return Table{}, fmt.Errorf("derived column %s: %w", decl.Name, df.Err)
	}
	return Table{Schema: t.Schema.WithColumn(decl), df: df, cleaned: t.cleaned}, nil
}
