package frame

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog/log"
)

// Load reads a delimited file into a raw Table for the given schema.
// All cells are kept as strings at this point. Type coercion, vocabulary
// mapping and missing-row handling happen in Clean, so that a cell which
// fails to parse is reported as a cleaning problem and not swallowed by
// the reader.
func Load(path string, schema Schema) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, schema)
}

// Read parses CSV content into a raw Table for the given schema.
func Read(r io.Reader, schema Schema) (Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return Table{}, fmt.Errorf("could not parse input for %s: %w", schema.Dataset, df.Err)
	}

	// normalize headers and apply the schema rename map
	for _, raw := range df.Names() {
		name := NormalizeName(raw)
		if name != raw {
			df = df.Rename(name, raw)
		}
	}
	for _, c := range schema.Columns {
		if c.From != "" && c.From != c.Name && contains(df.Names(), c.From) {
			df = df.Rename(c.Name, c.From)
		}
	}
	if df.Err != nil {
		return Table{}, fmt.Errorf("could not normalize columns for %s: %w", schema.Dataset, df.Err)
	}

	log.Debug().
		Str("dataset", schema.Dataset).
		Int("rows", df.Nrow()).
		Int("columns", df.Ncol()).
		Msg("loaded raw table")

	return Table{Schema: schema, df: df}, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
