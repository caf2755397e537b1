package dualorbit

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultScenarioEnv is the environment variable holding the directory of the default scenario.
	DefaultScenarioEnv = "DUALORBIT_SCENARIO"
	// DefaultSamplePoints is used when sampling.points is not set.
	DefaultSamplePoints = 500
	// defaultRevolutions sets the default sampling end, in periods of the first body.
	defaultRevolutions = 5
)

// BodyConfig is the configuration of one body.
type BodyConfig struct {
	Name   string
	Params OrbitParameters
	Solver KeplerSolver
}

// SamplingConfig is the configuration of the distance sampling.
type SamplingConfig struct {
	Start, End float64
	Points     int
	Workers    int
}

// Scenario is a thin configuration of the two-body scene: every variant of the animation is one of these.
type Scenario struct {
	Name           string
	Bodies         [2]BodyConfig
	Precession     *Precession // nil if no plane precesses
	PrecessionBody int         // index of the body whose plane precesses
	Sampling       SamplingConfig
	Export         ExportConfig
}

// LoadScenario reads the TOML scenario at the provided path.
func LoadScenario(path string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	return ScenarioFromViper(v)
}

// LoadDefaultScenario reads `scenario.toml` in the directory named by DUALORBIT_SCENARIO.
func LoadDefaultScenario() (*Scenario, error) {
	dir := os.Getenv(DefaultScenarioEnv)
	if dir == "" {
		return nil, fmt.Errorf("environment variable `%s` is missing or empty", DefaultScenarioEnv)
	}
	v := viper.New()
	v.SetConfigName("scenario")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%s/scenario.toml: %w", dir, err)
	}
	return ScenarioFromViper(v)
}

// ScenarioFromViper builds a scenario from an already loaded configuration.
func ScenarioFromViper(v *viper.Viper) (*Scenario, error) {
	v.SetDefault("solver.tolerance", DefaultTolerance)
	v.SetDefault("solver.max_iterations", DefaultMaxIterations)
	v.SetDefault("solver.places", DefaultPlaces)
	v.SetDefault("sampling.start", 0.0)
	v.SetDefault("sampling.points", DefaultSamplePoints)
	v.SetDefault("export.time_unit", time.Second)

	s := &Scenario{Name: v.GetString("scenario.name")}
	for i := range s.Bodies {
		body, err := bodyFromViper(v, i)
		if err != nil {
			return nil, err
		}
		s.Bodies[i] = body
	}

	if v.IsSet("precession.rate") {
		axis := []float64{0, 0, 1}
		if v.IsSet("precession.axis") {
			var err error
			if axis, err = floatSlice(v.Get("precession.axis")); err != nil {
				return nil, fmt.Errorf("precession.axis: %w", err)
			}
		}
		p, err := NewPrecession(v.GetFloat64("precession.rate"), axis)
		if err != nil {
			return nil, err
		}
		s.Precession = &p
		s.PrecessionBody = 1
		if v.IsSet("precession.body") {
			s.PrecessionBody = v.GetInt("precession.body")
		}
		if s.PrecessionBody < 0 || s.PrecessionBody >= len(s.Bodies) {
			return nil, fmt.Errorf("precession.body must be 0 or 1, got %d", s.PrecessionBody)
		}
	}

	s.Sampling = SamplingConfig{
		Start:   v.GetFloat64("sampling.start"),
		End:     v.GetFloat64("sampling.end"),
		Points:  v.GetInt("sampling.points"),
		Workers: v.GetInt("sampling.workers"),
	}
	if !v.IsSet("sampling.end") {
		s.Sampling.End = s.Sampling.Start + defaultRevolutions*s.Bodies[0].Params.Period()
	}

	s.Export = ExportConfig{
		Dir:      v.GetString("export.dir"),
		Prefix:   v.GetString("export.prefix"),
		TimeUnit: v.GetDuration("export.time_unit"),
	}
	if s.Export.Prefix == "" {
		s.Export.Prefix = s.Name
	}
	if v.IsSet("export.epoch") {
		s.Export.Epoch = v.GetTime("export.epoch").UTC()
	}
	return s, nil
}

func bodyFromViper(v *viper.Viper, i int) (BodyConfig, error) {
	key := func(k string) string { return fmt.Sprintf("body.%d.%s", i, k) }
	if !v.IsSet(key("a")) {
		return BodyConfig{}, fmt.Errorf("%s is required", key("a"))
	}
	plane, err := PlaneFromString(v.GetString(key("plane")))
	if err != nil {
		return BodyConfig{}, fmt.Errorf("%s: %w", key("plane"), err)
	}
	convention, err := ConventionFromString(v.GetString(key("convention")))
	if err != nil {
		return BodyConfig{}, fmt.Errorf("%s: %w", key("convention"), err)
	}
	a := v.GetFloat64(key("a"))
	period := v.GetFloat64(key("period"))
	var params OrbitParameters
	switch {
	case v.IsSet(key("b")) && v.IsSet(key("e")):
		return BodyConfig{}, fmt.Errorf("body.%d: set either b or e, not both", i)
	case v.IsSet(key("e")):
		params, err = NewOrbitParametersFromAE(a, v.GetFloat64(key("e")), period, plane, convention)
	default:
		params, err = NewOrbitParameters(a, v.GetFloat64(key("b")), period, plane, convention)
	}
	if err != nil {
		return BodyConfig{}, fmt.Errorf("body.%d: %w", i, err)
	}
	solverName := v.GetString("solver.strategy")
	if v.IsSet(key("solver")) {
		solverName = v.GetString(key("solver"))
	}
	solver, err := SolverFromString(solverName, v.GetFloat64("solver.tolerance"), v.GetInt("solver.max_iterations"), v.GetInt("solver.places"))
	if err != nil {
		return BodyConfig{}, fmt.Errorf("body.%d: %w", i, err)
	}
	name := v.GetString(key("name"))
	if name == "" {
		name = fmt.Sprintf("body%d", i)
	}
	return BodyConfig{name, params, solver}, nil
}

// Models returns the orbit models of both bodies, the precession being attached to its body.
func (s *Scenario) Models() (a, b *OrbitModel, err error) {
	var models [2]*OrbitModel
	for i, body := range s.Bodies {
		if models[i], err = NewOrbitModel(body.Params, body.Solver); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", body.Name, err)
		}
	}
	if s.Precession != nil {
		models[s.PrecessionBody] = models[s.PrecessionBody].WithPrecession(*s.Precession)
	}
	return models[0], models[1], nil
}

// floatSlice converts a decoded TOML array into floats.
func floatSlice(raw interface{}) ([]float64, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, errors.New("expected an array of numbers")
	}
	out := make([]float64, len(items))
	for i, item := range items {
		switch val := item.(type) {
		case float64:
			out[i] = val
		case int64:
			out[i] = float64(val)
		case int:
			out[i] = float64(val)
		default:
			return nil, fmt.Errorf("item %d is not a number: %v", i, item)
		}
	}
	return out, nil
}
