package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/edalab/edalab/internal/classify"
	"github.com/edalab/edalab/internal/config"
	"github.com/edalab/edalab/internal/describe"
	"github.com/edalab/edalab/internal/frame"
	"github.com/edalab/edalab/internal/metrics"
	"github.com/edalab/edalab/internal/scale"
	"github.com/edalab/edalab/internal/storage"
)

// SleepSchema declares the sleep health table. The raw blood pressure
// column stays a text cell here, it is split and banded after cleaning.
func SleepSchema() frame.Schema {
	numeric := func(name string) frame.Column {
		return frame.Column{Name: name, Kind: frame.Numeric, Required: true}
	}
	return frame.Schema{
		Dataset: "sleep",
		Columns: []frame.Column{
			{
				Name:       "gender",
				Kind:       frame.Categorical,
				Required:   true,
				Vocabulary: []string{"Male", "Female"},
			},
			numeric("age"),
			numeric("sleep_duration"),
			numeric("quality_of_sleep"),
			numeric("physical_activity_level"),
			numeric("stress_level"),
			{
				Name:       "bmi_category",
				Kind:       frame.Ordinal,
				Required:   true,
				Vocabulary: []string{"Normal", "Overweight", "Obese"},
				Synonyms: map[string]string{
					"Normal Weight": "Normal",
				},
			},
			{
				Name:     "blood_pressure",
				Kind:     frame.Categorical,
				Required: true,
			},
			numeric("heart_rate"),
			numeric("daily_steps"),
			{
				Name:       "sleep_disorder",
				Kind:       frame.Categorical,
				Required:   true,
				Vocabulary: []string{"None", "Insomnia", "Sleep Apnea"},
			},
		},
	}
}

var sleepFeatures = []string{
	"gender", "age", "sleep_duration", "quality_of_sleep",
	"physical_activity_level", "stress_level", "bmi_category",
	"heart_rate", "daily_steps", "systolic", "diastolic",
}

// SleepResult is the outcome of a sleep disorder classification run.
type SleepResult struct {
	Rows       int
	Bands      map[string]int
	Evaluation classify.Evaluation
	// DurationH and DurationP compare sleep duration across the
	// disorder groups with the Kruskal-Wallis rank test.
	DurationH float64
	DurationP float64
}

// splitPressure parses a "126/83" cell into its two readings.
func splitPressure(cell string) (systolic, diastolic float64, err error) {
	top, bottom, ok := strings.Cut(strings.TrimSpace(cell), "/")
	if !ok {
		return 0, 0, fmt.Errorf("blood pressure %q is not systolic/diastolic: %w", cell, frame.DataQualityErr)
	}
	systolic, err = strconv.ParseFloat(strings.TrimSpace(top), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("blood pressure %q: unparseable systolic: %w", cell, frame.DataQualityErr)
	}
	diastolic, err = strconv.ParseFloat(strings.TrimSpace(bottom), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("blood pressure %q: unparseable diastolic: %w", cell, frame.DataQualityErr)
	}
	return systolic, diastolic, nil
}

// band maps a reading onto its pressure category. Clinical band
// boundaries vary between guidelines, so they stay configurable.
func band(systolic, diastolic float64, bp config.BloodPressure) string {
	switch {
	case systolic >= bp.HighSystolic || diastolic >= bp.HighDiastolic:
		return "High"
	case systolic >= bp.ElevatedSystolic || diastolic >= bp.ElevatedDiastolic:
		return "Elevated"
	default:
		return "Normal"
	}
}

// derivePressure extends a cleaned sleep table with systolic, diastolic
// and pressure band columns.
func derivePressure(t frame.Table, bp config.BloodPressure) (frame.Table, error) {
	cells, err := t.Strings("blood_pressure")
	if err != nil {
		return frame.Table{}, err
	}
	systolic := make([]float64, len(cells))
	diastolic := make([]float64, len(cells))
	bands := make([]string, len(cells))
	for i, cell := range cells {
		s, d, err := splitPressure(cell)
		if err != nil {
			return frame.Table{}, fmt.Errorf("row %d: %w", i, err)
		}
		systolic[i] = s
		diastolic[i] = d
		bands[i] = band(s, d, bp)
	}

	out, err := t.WithColumn(frame.Column{Name: "systolic", Kind: frame.Numeric}, systolic)
	if err != nil {
		return frame.Table{}, err
	}
	out, err = out.WithColumn(frame.Column{Name: "diastolic", Kind: frame.Numeric}, diastolic)
	if err != nil {
		return frame.Table{}, err
	}
	return out.WithColumn(frame.Column{
		Name:       "pressure_category",
		Kind:       frame.Ordinal,
		Vocabulary: []string{"Normal", "Elevated", "High"},
	}, bands)
}

// scaleFeatures min-max scales the feature rows of a dataset, so the
// distance votes are not dominated by the wide columns.
func scaleFeatures(d classify.Dataset) (classify.Dataset, error) {
	n, c := len(d.Features), len(d.Columns)
	m := mat.NewDense(n, c, nil)
	for i, row := range d.Features {
		m.SetRow(i, row)
	}
	scaled, err := scale.NewMinMax().FitTransform(m)
	if err != nil {
		return classify.Dataset{}, err
	}
	out := d
	out.Features = make([][]float64, n)
	for i := 0; i < n; i++ {
		out.Features[i] = mat.Row(nil, i, scaled)
	}
	return out, nil
}

// Sleep runs the sleep health analysis: blood pressure derivation,
// descriptive statistics and a nearest-neighbor classifier for the
// sleep disorder on a held-out split.
func (p *Pipeline) Sleep(path string) (SleepResult, error) {
	var result SleepResult
	var raw, cleaned frame.Table
	var train, test classify.Dataset

	if err := p.stage("sleep", StageLoad, func() error {
		var err error
		raw, err = frame.Load(path, SleepSchema())
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage("sleep", StageClean, func() error {
		var err error
		cleaned, err = frame.Clean(raw)
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage("sleep", StagePrepare, func() error {
		var err error
		cleaned, err = derivePressure(cleaned, p.cfg.BloodPressure)
		if err != nil {
			return err
		}

		bands, err := cleaned.Strings("pressure_category")
		if err != nil {
			return err
		}
		result.Bands = make(map[string]int, 3)
		for _, b := range bands {
			result.Bands[b]++
		}

		data, err := classify.FromTable(cleaned, "sleep_disorder", sleepFeatures...)
		if err != nil {
			return err
		}
		data, err = scaleFeatures(data)
		if err != nil {
			return err
		}
		train, test, err = classify.Split(data, p.cfg.Split.Fraction, p.cfg.Split.Seed)
		return err
	}); err != nil {
		return result, err
	}

	knn := classify.NewKNN(p.cfg.KNN.Neighbors)
	if err := p.stage("sleep", StageFit, func() error {
		if err := knn.Fit(train); err != nil {
			return err
		}
		metrics.Observer.Fit("sleep", knn.Name())
		var err error
		result.Evaluation, err = classify.Evaluate(knn, test)
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage("sleep", StageReport, func() error {
		names := cleaned.NumericNames()
		summaries := make([]describe.Summary, 0, len(names))
		for _, name := range names {
			values, err := cleaned.Numeric(name)
			if err != nil {
				return err
			}
			s, err := describe.Describe(values)
			if err != nil {
				return err
			}
			summaries = append(summaries, s)
		}
		p.reporter.SummaryTable(names, summaries)

		duration, err := cleaned.Numeric("sleep_duration")
		if err != nil {
			return err
		}
		if _, err := p.reporter.Histogram(duration, "sleep_duration", "sleep_duration_hist.png"); err != nil {
			return err
		}

		disorders, err := cleaned.Strings("sleep_disorder")
		if err != nil {
			return err
		}
		byDisorder := make(map[string][]float64, 3)
		for i, d := range disorders {
			byDisorder[d] = append(byDisorder[d], duration[i])
		}
		if len(byDisorder) > 1 {
			decl, _ := cleaned.Schema.Column("sleep_disorder")
			groups := make([][]float64, 0, len(byDisorder))
			for _, class := range decl.Vocabulary {
				if g, ok := byDisorder[class]; ok {
					groups = append(groups, g)
				}
			}
			result.DurationH, result.DurationP, err = describe.KruskalWallis(groups...)
			if err != nil {
				return err
			}
			log.Info().
				Float64("h", result.DurationH).
				Float64("p", result.DurationP).
				Msg("compared sleep duration across disorder groups")
		}

		genders, err := cleaned.Strings("gender")
		if err != nil {
			return err
		}
		var male, female []float64
		for i, g := range genders {
			if g == "Male" {
				male = append(male, duration[i])
			} else {
				female = append(female, duration[i])
			}
		}
		if len(male) > 0 && len(female) > 0 {
			u, pval, err := describe.MannWhitney(male, female)
			if err != nil {
				return err
			}
			log.Info().
				Float64("u", u).
				Float64("p", pval).
				Msg("compared sleep duration between genders")
		}

		for b, count := range result.Bands {
			log.Info().Str("band", b).Int("count", count).Msg("pressure band")
		}
		p.reporter.ConfusionTable(result.Evaluation)

		return p.archive.Store(storage.Key{Dataset: "sleep", Label: "evaluation"}, result.Evaluation)
	}); err != nil {
		return result, err
	}

	result.Rows = cleaned.Rows()
	return result, nil
}
