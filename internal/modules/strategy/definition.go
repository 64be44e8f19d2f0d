// Package strategy loads strategy definitions from YAML and builds allocation configs.
package strategy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aristath/momentum/internal/domain"
	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/aristath/momentum/internal/modules/scoring"
	"gopkg.in/yaml.v3"
)

// ErrEmptyDefinition is returned when a strategy document has no content
var ErrEmptyDefinition = errors.New("strategy definition is empty")

// DefaultScoreSeed seeds the uniform score provider when a definition has no seed
const DefaultScoreSeed uint64 = 42

// Definition is the YAML form of a strategy
type Definition struct {
	Name       string             `yaml:"name"`
	Interval   string             `yaml:"interval"`
	Tickers    []string           `yaml:"tickers"`
	Scores     map[string]float64 `yaml:"scores,omitempty"`
	ScoreSeed  *uint64            `yaml:"score_seed,omitempty"`
	ScoreMin   *float64           `yaml:"score_min,omitempty"`
	ScoreMax   *float64           `yaml:"score_max,omitempty"`
	Indicators *Indicators        `yaml:"indicators,omitempty"`
}

// Indicators is the YAML form of the indicator parameters; omitted fields keep their defaults
type Indicators struct {
	RSIPeriod    *int     `yaml:"rsi_period,omitempty"`
	RSIThreshold *float64 `yaml:"rsi_threshold,omitempty"`
	MACDFast     *int     `yaml:"macd_fast,omitempty"`
	MACDSlow     *int     `yaml:"macd_slow,omitempty"`
	MACDSignal   *int     `yaml:"macd_signal,omitempty"`
}

// IndicatorsFrom builds the YAML form with every field set
func IndicatorsFrom(p allocation.IndicatorParams) *Indicators {
	return &Indicators{
		RSIPeriod:    &p.RSIPeriod,
		RSIThreshold: &p.RSIThreshold,
		MACDFast:     &p.MACDFast,
		MACDSlow:     &p.MACDSlow,
		MACDSignal:   &p.MACDSignal,
	}
}

// Params overlays the set fields on the default parameters
func (in *Indicators) Params() allocation.IndicatorParams {
	p := allocation.DefaultIndicatorParams()
	if in == nil {
		return p
	}
	if in.RSIPeriod != nil {
		p.RSIPeriod = *in.RSIPeriod
	}
	if in.RSIThreshold != nil {
		p.RSIThreshold = *in.RSIThreshold
	}
	if in.MACDFast != nil {
		p.MACDFast = *in.MACDFast
	}
	if in.MACDSlow != nil {
		p.MACDSlow = *in.MACDSlow
	}
	if in.MACDSignal != nil {
		p.MACDSignal = *in.MACDSignal
	}
	return p
}

// Default returns the reference strategy: five AI/ML equities evaluated daily
// with seeded uniform scores in [0.5, 1.0].
func Default() *Definition {
	seed := DefaultScoreSeed
	minScore := allocation.DefaultScoreMin
	maxScore := allocation.DefaultScoreMax

	return &Definition{
		Name:       allocation.DefaultName,
		Interval:   allocation.DefaultInterval,
		Tickers:    append([]string(nil), allocation.DefaultTickers...),
		ScoreSeed:  &seed,
		ScoreMin:   &minScore,
		ScoreMax:   &maxScore,
		Indicators: IndicatorsFrom(allocation.DefaultIndicatorParams()),
	}
}

// Load reads a definition from a YAML file
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read strategy file: %w", err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse strategy file %s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a YAML definition. Unknown keys are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDefinition
		}
		return nil, fmt.Errorf("failed to unmarshal strategy: %w", err)
	}

	return &def, nil
}

// Options converts the definition into allocation options, filling defaults for omitted fields
func (d *Definition) Options() allocation.Options {
	opts := allocation.DefaultOptions()
	opts.Name = d.Name
	opts.Interval = d.Interval

	opts.Indicators = d.Indicators.Params()
	if d.ScoreMin != nil {
		opts.ScoreRange.Min = *d.ScoreMin
	}
	if d.ScoreMax != nil {
		opts.ScoreRange.Max = *d.ScoreMax
	}

	return opts
}

// Provider returns the score provider described by the definition.
// Explicit scores win; otherwise scores are drawn uniformly from the score range.
func (d *Definition) Provider() (domain.ScoreProvider, error) {
	if len(d.Scores) > 0 {
		return scoring.NewStaticProvider(d.Scores), nil
	}

	seed := DefaultScoreSeed
	if d.ScoreSeed != nil {
		seed = *d.ScoreSeed
	}
	r := d.Options().ScoreRange
	if r.Min < 0 || r.Max < r.Min {
		return nil, fmt.Errorf("%w: [%v, %v]", allocation.ErrInvalidScoreRange, r.Min, r.Max)
	}
	return scoring.NewUniformProvider(r.Min, r.Max, seed)
}

// Build validates the definition and returns the immutable allocation config
func (d *Definition) Build() (*allocation.Config, error) {
	provider, err := d.Provider()
	if err != nil {
		return nil, fmt.Errorf("failed to create score provider: %w", err)
	}

	cfg, err := allocation.NewConfig(d.Tickers, provider, d.Options())
	if err != nil {
		return nil, fmt.Errorf("invalid strategy %q: %w", d.Name, err)
	}
	return cfg, nil
}

// Marshal encodes the definition as YAML
func (d *Definition) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}
