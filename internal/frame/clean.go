package frame

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog/log"
)

// missing cell spellings, checked case-insensitively.
// NOTE : "None" is not here on purpose, it is a real class in the sleep data.
var missingMarkers = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
}

func isMissing(cell string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(cell))]
	return ok
}

// Clean derives the cleaned table from a raw one: it keeps only the schema
// columns, coerces numeric cells, maps categorical cells onto their canonical
// vocabulary and drops (or imputes) rows with missing values.
// A required column absent from the input fails with SchemaErr, an
// optional one is dropped from the table and its schema.
// After Clean no retained column contains a missing value.
func Clean(t Table) (Table, error) {
	names := t.df.Names()
	decls := make([]Column, 0, len(t.Schema.Columns))
	for _, c := range t.Schema.Columns {
		if contains(names, c.Name) {
			decls = append(decls, c)
			continue
		}
		if c.Required {
			return Table{}, fmt.Errorf("dataset %s: missing required column %s: %w", t.Schema.Dataset, c.Name, SchemaErr)
		}
		log.Debug().
			Str("dataset", t.Schema.Dataset).
			Str("column", c.Name).
			Msg("optional column not in input, dropped")
	}

	n := t.df.Nrow()
	drop := make([]bool, n)

	type cleanColumn struct {
		decl    Column
		numeric []float64
		text    []string
	}

	columns := make([]cleanColumn, 0, len(decls))
	for _, decl := range decls {
		records := t.df.Col(decl.Name).Records()
		col := cleanColumn{decl: decl}
		switch decl.Kind {
		case Numeric:
			col.numeric = make([]float64, n)
			for i, cell := range records {
				if isMissing(cell) {
					if decl.Default == "" {
						drop[i] = true
						continue
					}
					cell = decl.Default
				}
				v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
				if err != nil {
					return Table{}, fmt.Errorf("dataset %s: column %s row %d: unparseable numeric %q: %w",
						t.Schema.Dataset, decl.Name, i, cell, DataQualityErr)
				}
				col.numeric[i] = v
			}
		case Categorical, Ordinal:
			col.text = make([]string, n)
			for i, cell := range records {
				if isMissing(cell) {
					if decl.Default == "" {
						drop[i] = true
						continue
					}
					cell = decl.Default
				}
				v, err := decl.Canonical(cell)
				if err != nil {
					return Table{}, fmt.Errorf("dataset %s: row %d: %w", t.Schema.Dataset, i, err)
				}
				col.text[i] = v
			}
		}
		columns = append(columns, col)
	}

	kept := 0
	for i := 0; i < n; i++ {
		if !drop[i] {
			kept++
		}
	}
	if kept == 0 {
		return Table{}, fmt.Errorf("dataset %s: no rows left after cleaning: %w", t.Schema.Dataset, DataQualityErr)
	}

	out := make([]series.Series, 0, len(columns))
	for _, col := range columns {
		if col.decl.Kind == Numeric {
			values := make([]float64, 0, kept)
			for i, v := range col.numeric {
				if !drop[i] {
					values = append(values, v)
				}
			}
			out = append(out, series.New(values, series.Float, col.decl.Name))
			continue
		}
		values := make([]string, 0, kept)
		for i, v := range col.text {
			if !drop[i] {
				values = append(values, v)
			}
		}
		out = append(out, series.New(values, series.String, col.decl.Name))
	}

	df := dataframe.New(out...)
	if df.Err != nil {
		return Table{}, fmt.Errorf("dataset %s: could not assemble cleaned table: %w", t.Schema.Dataset, df.Err)
	}

	log.Info().
		Str("dataset", t.Schema.Dataset).
		Int("rows", kept).
		Int("dropped", n-kept).
		Int("columns", len(out)).
		Msg("cleaned table")

	return Table{
		Schema:  Schema{Dataset: t.Schema.Dataset, Columns: decls},
		df:      df,
		cleaned: true,
	}, nil
}
