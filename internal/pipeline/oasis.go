package pipeline

import (
	"github.com/rs/zerolog/log"

	"github.com/edalab/edalab/internal/classify"
	"github.com/edalab/edalab/internal/describe"
	"github.com/edalab/edalab/internal/frame"
	"github.com/edalab/edalab/internal/metrics"
	"github.com/edalab/edalab/internal/storage"
)

// OasisSchema declares the Alzheimer's imaging metadata table.
// The clinical scores (cdr, mmse) are carried as opaque numeric
// features. Group spellings vary across releases, so the dashed form
// maps onto the canonical one.
func OasisSchema() frame.Schema {
	numeric := func(name string) frame.Column {
		return frame.Column{Name: name, Kind: frame.Numeric, Required: true}
	}
	return frame.Schema{
		Dataset: "oasis",
		Columns: []frame.Column{
			{
				Name:       "group",
				Kind:       frame.Categorical,
				Required:   true,
				Vocabulary: []string{"Nondemented", "Demented", "Converted"},
				Synonyms: map[string]string{
					"Non-demented": "Nondemented",
					"Non-Demented": "Nondemented",
				},
			},
			{
				Name:       "m_f",
				Kind:       frame.Categorical,
				Required:   true,
				Vocabulary: []string{"M", "F"},
			},
			numeric("age"),
			numeric("educ"),
			numeric("ses"),
			numeric("mmse"),
			numeric("cdr"),
			numeric("etiv"),
			numeric("nwbv"),
			numeric("asf"),
		},
	}
}

var oasisFeatures = []string{"m_f", "age", "educ", "ses", "mmse", "cdr", "etiv", "nwbv", "asf"}

// OasisResult is the outcome of a dementia classification run.
type OasisResult struct {
	Rows       int
	Evaluation classify.Evaluation
	Importance map[string]float64
}

// Oasis runs the Alzheimer's analysis: descriptive statistics over the
// imaging features and a random forest classifying the dementia group
// on a held-out split.
func (p *Pipeline) Oasis(path string) (OasisResult, error) {
	var result OasisResult
	var raw, cleaned frame.Table
	var train, test classify.Dataset

	if err := p.stage("oasis", StageLoad, func() error {
		var err error
		raw, err = frame.Load(path, OasisSchema())
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage("oasis", StageClean, func() error {
		var err error
		cleaned, err = frame.Clean(raw)
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage("oasis", StagePrepare, func() error {
		data, err := classify.FromTable(cleaned, "group", oasisFeatures...)
		if err != nil {
			return err
		}
		train, test, err = classify.Split(data, p.cfg.Split.Fraction, p.cfg.Split.Seed)
		return err
	}); err != nil {
		return result, err
	}

	forest := classify.NewForest(p.cfg.Forest.Trees)
	if err := p.stage("oasis", StageFit, func() error {
		if err := forest.Fit(train); err != nil {
			return err
		}
		metrics.Observer.Fit("oasis", forest.Name())
		var err error
		result.Evaluation, err = classify.Evaluate(forest, test)
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage("oasis", StageReport, func() error {
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
		p.reporter.ConfusionTable(result.Evaluation)

		importance, err := forest.FeatureImportance()
		if err != nil {
			return err
		}
		result.Importance = make(map[string]float64, len(oasisFeatures))
		for i, name := range oasisFeatures {
			if i < len(importance) {
				result.Importance[name] = importance[i]
				log.Info().Str("feature", name).Float64("importance", importance[i]).Msg("forest feature importance")
			}
		}

		return p.archive.Store(storage.Key{Dataset: "oasis", Label: "evaluation"}, result.Evaluation)
	}); err != nil {
		return result, err
	}

	result.Rows = cleaned.Rows()
	return result, nil
}
