package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edalab/edalab/internal/cluster"
	"github.com/edalab/edalab/internal/config"
	"github.com/edalab/edalab/internal/frame"
	"github.com/edalab/edalab/internal/report"
	jsonblob "github.com/edalab/edalab/internal/storage/file/json"
)

func testConfig() *config.Config {
	return &config.Config{
		Sweep: config.Sweep{
			MaxK:       3,
			Iterations: 50,
			Tolerance:  1e-9,
			Seed:       11,
			Restarts:   5,
		},
		Split:  config.Split{Fraction: 0.75, Seed: 7},
		Forest: config.Forest{Trees: 20},
		KNN:    config.KNN{Neighbors: 3},
		BloodPressure: config.BloodPressure{
			ElevatedSystolic:  120,
			ElevatedDiastolic: 80,
			HighSystolic:      140,
			HighDiastolic:     90,
		},
	}
}

func testPipeline(t *testing.T) (*Pipeline, *bytes.Buffer) {
	t.Helper()
	console := &bytes.Buffer{}
	reporter, err := report.New(filepath.Join(t.TempDir(), "charts"), console)
	require.NoError(t, err)
	archive := jsonblob.NewJsonBlob("test").WithPath(t.TempDir())
	return New(testConfig(), reporter, archive), console
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// wineCSV builds two well separated groups over all twelve columns.
func wineCSV() string {
	var b strings.Builder
	b.WriteString("Fixed Acidity,Volatile Acidity,Citric Acid,Residual Sugar,Chlorides," +
		"Free Sulfur Dioxide,Total Sulfur Dioxide,Density,pH,Sulphates,Alcohol,Quality\n")
	row := func(base float64, jitter float64) {
		cells := make([]string, 12)
		for j := 0; j < 12; j++ {
			cells[j] = fmt.Sprintf("%.3f", base+float64(j)*0.1+jitter)
		}
		b.WriteString(strings.Join(cells, ",") + "\n")
	}
	for i := 0; i < 4; i++ {
		row(1, float64(i)*0.01)
	}
	for i := 0; i < 4; i++ {
		row(10, float64(i)*0.01)
	}
	return b.String()
}

func TestWine(t *testing.T) {
	p, console := testPipeline(t)
	path := writeCSV(t, "wine.csv", wineCSV())

	result, err := p.Wine(path, 2)
	require.NoError(t, err)

	assert.Equal(t, 8, result.Rows)
	assert.Len(t, result.Sweep, 3)
	assert.Equal(t, 2, result.Chosen.K)
	assert.Len(t, result.Chosen.Labels, 8)
	assert.Equal(t, 2, result.Hierarchy.K)

	// two tight groups: k=2 separates them for both views
	assert.Equal(t, result.Chosen.Labels[0], result.Chosen.Labels[3])
	assert.NotEqual(t, result.Chosen.Labels[0], result.Chosen.Labels[4])
	assert.Equal(t, result.Hierarchy.Labels[0], result.Hierarchy.Labels[3])
	assert.NotEqual(t, result.Hierarchy.Labels[0], result.Hierarchy.Labels[4])

	inertias := cluster.Inertias(result.Sweep)
	for i := 1; i < len(inertias); i++ {
		assert.LessOrEqual(t, inertias[i], inertias[i-1]+1e-9)
	}

	// alcohol and quality move together in the fixture
	assert.InDelta(t, 1.0, result.AlcoholQualityRho, 1e-12)

	assert.Contains(t, console.String(), "total inertia by cluster count")
}

func TestWine_MissingFile(t *testing.T) {
	p, _ := testPipeline(t)

	_, err := p.Wine(filepath.Join(t.TempDir(), "nope.csv"), 2)
	require.Error(t, err)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageLoad, stageErr.Stage)
}

func TestWine_ChosenKOutsideSweep(t *testing.T) {
	p, _ := testPipeline(t)
	path := writeCSV(t, "wine.csv", wineCSV())

	_, err := p.Wine(path, 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, cluster.ConfigurationErr)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageFit, stageErr.Stage)
}

func oasisCSV() string {
	var b strings.Builder
	b.WriteString("Group,M/F,Age,EDUC,SES,MMSE,CDR,eTIV,nWBV,ASF\n")
	// the dashed spelling must fold onto the canonical vocabulary
	b.WriteString("Non-demented,F,70,12,2,29,0,1400,0.75,1.2\n")
	b.WriteString("Nondemented,F,72,14,2,30,0,1380,0.76,1.21\n")
	b.WriteString("Nondemented,M,68,16,1,29,0,1500,0.74,1.1\n")
	b.WriteString("Nondemented,F,71,12,3,30,0,1420,0.77,1.18\n")
	b.WriteString("Nondemented,M,69,13,2,28,0,1460,0.75,1.15\n")
	b.WriteString("Nondemented,F,73,15,2,29,0,1390,0.76,1.22\n")
	b.WriteString("Demented,M,78,8,4,20,1,1510,0.68,1.05\n")
	b.WriteString("Demented,M,80,10,4,18,1,1530,0.66,1.02\n")
	b.WriteString("Demented,F,82,8,5,19,2,1350,0.65,1.25\n")
	b.WriteString("Demented,M,79,9,4,21,1,1490,0.67,1.08\n")
	b.WriteString("Demented,F,81,10,5,17,2,1370,0.64,1.23\n")
	// missing SES drops the row
	b.WriteString("Demented,M,77,9,NA,22,1,1480,0.69,1.07\n")
	return b.String()
}

func TestOasis(t *testing.T) {
	p, console := testPipeline(t)
	path := writeCSV(t, "oasis.csv", oasisCSV())

	result, err := p.Oasis(path)
	require.NoError(t, err)

	assert.Equal(t, 11, result.Rows)
	assert.Equal(t, "random-forest", result.Evaluation.Model)
	assert.Equal(t, 3, result.Evaluation.Total)
	assert.GreaterOrEqual(t, result.Evaluation.Accuracy, 0.0)
	assert.LessOrEqual(t, result.Evaluation.Accuracy, 1.0)
	assert.Equal(t, []string{"Nondemented", "Demented", "Converted"}, result.Evaluation.Classes)
	assert.NotEmpty(t, result.Importance)

	assert.Contains(t, console.String(), "random-forest accuracy")
}

func TestOasis_UnknownGroup(t *testing.T) {
	p, _ := testPipeline(t)
	csv := "Group,M/F,Age,EDUC,SES,MMSE,CDR,eTIV,nWBV,ASF\n" +
		"Unclassified,F,70,12,2,29,0,1400,0.75,1.2\n"
	path := writeCSV(t, "oasis.csv", csv)

	_, err := p.Oasis(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, frame.DataQualityErr)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageClean, stageErr.Stage)
}

func sleepCSV() string {
	var b strings.Builder
	b.WriteString("Gender,Age,Sleep Duration,Quality of Sleep,Physical Activity Level," +
		"Stress Level,BMI Category,Blood Pressure,Heart Rate,Daily Steps,Sleep Disorder\n")
	// "Normal Weight" must fold onto "Normal"
	b.WriteString("Male,30,7.5,8,60,3,Normal Weight,118/76,68,8000,None\n")
	b.WriteString("Female,32,7.8,8,55,3,Normal,115/75,66,8500,None\n")
	b.WriteString("Male,28,7.2,7,65,4,Normal,119/78,70,7800,None\n")
	b.WriteString("Female,35,7.6,8,58,3,Normal,117/76,67,8200,None\n")
	b.WriteString("Male,45,5.8,4,30,7,Obese,142/92,80,4000,Sleep Apnea\n")
	b.WriteString("Female,48,5.5,4,28,8,Obese,145/95,82,3800,Sleep Apnea\n")
	b.WriteString("Male,50,5.9,5,32,7,Obese,141/91,79,4200,Sleep Apnea\n")
	b.WriteString("Female,47,5.6,4,27,8,Obese,144/94,81,3900,Sleep Apnea\n")
	b.WriteString("Male,40,6.2,5,40,6,Overweight,132/85,75,5500,Insomnia\n")
	b.WriteString("Female,42,6.0,5,38,6,Overweight,134/86,76,5300,Insomnia\n")
	b.WriteString("Male,41,6.3,6,42,6,Overweight,131/84,74,5600,Insomnia\n")
	b.WriteString("Female,39,6.1,5,39,6,Overweight,133/85,75,5400,Insomnia\n")
	return b.String()
}

func TestSleep(t *testing.T) {
	p, console := testPipeline(t)
	path := writeCSV(t, "sleep.csv", sleepCSV())

	result, err := p.Sleep(path)
	require.NoError(t, err)

	assert.Equal(t, 12, result.Rows)
	assert.Equal(t, "knn", result.Evaluation.Model)
	assert.Equal(t, 3, result.Evaluation.Total)
	assert.GreaterOrEqual(t, result.Evaluation.Accuracy, 0.0)
	assert.LessOrEqual(t, result.Evaluation.Accuracy, 1.0)

	// four rows per band under the default thresholds
	assert.Equal(t, map[string]int{"Normal": 4, "Elevated": 4, "High": 4}, result.Bands)

	// the three disorder groups sleep clearly different hours
	assert.Greater(t, result.DurationH, 0.0)
	assert.Less(t, result.DurationP, 0.05)

	assert.Contains(t, console.String(), "knn accuracy")
}

func TestSleep_MalformedPressure(t *testing.T) {
	p, _ := testPipeline(t)
	csv := "Gender,Age,Sleep Duration,Quality of Sleep,Physical Activity Level," +
		"Stress Level,BMI Category,Blood Pressure,Heart Rate,Daily Steps,Sleep Disorder\n" +
		"Male,30,7.5,8,60,3,Normal,high,68,8000,None\n"
	path := writeCSV(t, "sleep.csv", csv)

	_, err := p.Sleep(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, frame.DataQualityErr)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StagePrepare, stageErr.Stage)
}

func TestSweepCSV(t *testing.T) {
	p, console := testPipeline(t)
	csv := "A,B\n1,1\n1.1,1.1\n1.2,0.9\n9,9\n9.1,9.1\n9.2,8.9\n"
	path := writeCSV(t, "points.csv", csv)

	result, err := p.SweepCSV(path, []string{"A", "B"})
	require.NoError(t, err)

	assert.Equal(t, 6, result.Rows)
	assert.Equal(t, []string{"a", "b"}, result.Columns)
	assert.Len(t, result.Inertias, 3)

	// the obvious two-group structure makes k=2 the elbow
	drop12 := result.Inertias[0] - result.Inertias[1]
	drop23 := result.Inertias[1] - result.Inertias[2]
	assert.Greater(t, drop12, drop23)

	assert.Contains(t, console.String(), "total inertia by cluster count")
}

func TestSweepCSV_NoColumns(t *testing.T) {
	p, _ := testPipeline(t)

	_, err := p.SweepCSV("whatever.csv", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, frame.SchemaErr)
}

func TestBand(t *testing.T) {
	bp := testConfig().BloodPressure
	assert.Equal(t, "Normal", band(118, 76, bp))
	assert.Equal(t, "Elevated", band(125, 78, bp))
	assert.Equal(t, "Elevated", band(118, 82, bp))
	assert.Equal(t, "High", band(145, 85, bp))
	assert.Equal(t, "High", band(125, 95, bp))
}

func TestSplitPressure(t *testing.T) {
	s, d, err := splitPressure(" 126/83 ")
	require.NoError(t, err)
	assert.Equal(t, 126.0, s)
	assert.Equal(t, 83.0, d)

	_, _, err = splitPressure("high")
	assert.ErrorIs(t, err, frame.DataQualityErr)

	_, _, err = splitPressure("x/83")
	assert.ErrorIs(t, err, frame.DataQualityErr)
}
