package frame

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{
		Dataset: "toy",
		Columns: []Column{
			{Name: "age", Kind: Numeric, Required: true},
			{Name: "score", Kind: Numeric},
			{
				Name:       "group",
				Kind:       Categorical,
				Required:   true,
				Vocabulary: []string{"Nondemented", "Demented"},
				Synonyms:   map[string]string{"Non-demented": "Nondemented"},
			},
		},
	}
}

const toyCSV = `Age,Score,Group
70,27.5,Non-demented
82,21,Demented
75,NA,Demented
68,29,Nondemented
`

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"Fixed Acidity":   "fixed_acidity",
		"M/F":             "m_f",
		" Sleep Duration": "sleep_duration",
		"pH":              "ph",
		"eTIV":            "etiv",
		"quality":         "quality",
	}
	for raw, want := range tests {
		assert.Equal(t, want, NormalizeName(raw))
	}
}

func TestReadClean(t *testing.T) {
	raw, err := Read(strings.NewReader(toyCSV), testSchema())
	require.NoError(t, err)
	assert.Equal(t, 4, raw.Rows())
	assert.False(t, raw.Cleaned())

	clean, err := Clean(raw)
	require.NoError(t, err)
	assert.True(t, clean.Cleaned())
	// the NA score row is dropped
	assert.Equal(t, 3, clean.Rows())

	groups, err := clean.Strings("group")
	require.NoError(t, err)
	// synonym mapped onto the canonical spelling
	assert.Equal(t, []string{"Nondemented", "Demented", "Nondemented"}, groups)

	ages, err := clean.Numeric("age")
	require.NoError(t, err)
	assert.Equal(t, []float64{70, 82, 68}, ages)
}

func TestClean_Imputes(t *testing.T) {
	schema := testSchema()
	schema.Columns[1].Default = "0"
	raw, err := Read(strings.NewReader(toyCSV), schema)
	require.NoError(t, err)

	clean, err := Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, 4, clean.Rows())

	scores, err := clean.Numeric("score")
	require.NoError(t, err)
	assert.Equal(t, 0.0, scores[2])
}

func TestClean_MissingRequiredColumn(t *testing.T) {
	schema := testSchema()
	schema.Columns = append(schema.Columns, Column{Name: "cdr", Kind: Numeric, Required: true})
	raw, err := Read(strings.NewReader(toyCSV), schema)
	require.NoError(t, err)

	_, err = Clean(raw)
	assert.ErrorIs(t, err, SchemaErr)
}

func TestClean_MissingOptionalColumn(t *testing.T) {
	schema := testSchema()
	schema.Columns = append(schema.Columns, Column{Name: "cdr", Kind: Numeric})
	raw, err := Read(strings.NewReader(toyCSV), schema)
	require.NoError(t, err)

	clean, err := Clean(raw)
	require.NoError(t, err)
	assert.NotContains(t, clean.Names(), "cdr")
	_, ok := clean.Schema.Column("cdr")
	assert.False(t, ok)
	// the declared columns are untouched
	assert.Equal(t, 3, clean.Rows())
}

func TestClean_UnknownCategory(t *testing.T) {
	csv := strings.Replace(toyCSV, "Demented", "Dementedish", 1)
	raw, err := Read(strings.NewReader(csv), testSchema())
	require.NoError(t, err)

	_, err = Clean(raw)
	assert.ErrorIs(t, err, DataQualityErr)
}

func TestClean_UnparseableNumeric(t *testing.T) {
	csv := strings.Replace(toyCSV, "82", "eighty-two", 1)
	raw, err := Read(strings.NewReader(csv), testSchema())
	require.NoError(t, err)

	_, err = Clean(raw)
	assert.ErrorIs(t, err, DataQualityErr)
}

func TestCodes_StableOrder(t *testing.T) {
	raw, err := Read(strings.NewReader(toyCSV), testSchema())
	require.NoError(t, err)
	clean, err := Clean(raw)
	require.NoError(t, err)

	codes, err := clean.Codes("group")
	require.NoError(t, err)
	// codes follow the declared vocabulary, not first-seen order:
	// the first row is Nondemented and still codes to 0.
	assert.Equal(t, []float64{0, 1, 0}, codes)
}

func TestMatrix(t *testing.T) {
	raw, err := Read(strings.NewReader(toyCSV), testSchema())
	require.NoError(t, err)
	clean, err := Clean(raw)
	require.NoError(t, err)

	m, err := clean.Matrix("age", "score", "group")
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 27.5, m.At(0, 1))
	assert.Equal(t, 1.0, m.At(1, 2))
}

func TestWithColumn(t *testing.T) {
	raw, err := Read(strings.NewReader(toyCSV), testSchema())
	require.NoError(t, err)
	clean, err := Clean(raw)
	require.NoError(t, err)

	derived, err := clean.WithColumn(
		Column{Name: "band", Kind: Categorical, Vocabulary: []string{"low", "high"}},
		[]string{"high", "low", "high"},
	)
	require.NoError(t, err)

	codes, err := derived.Codes("band")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 1}, codes)

	_, err = clean.WithColumn(
		Column{Name: "short", Kind: Categorical},
		[]string{"only-one"},
	)
	assert.ErrorIs(t, err, SchemaErr)
}
