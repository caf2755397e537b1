package dualorbit

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDualScenario(t *testing.T) {
	s, err := LoadScenario("scenarios/dual.toml")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "dual" || s.Bodies[0].Name != "blue" || s.Bodies[1].Name != "red" {
		t.Fatalf("names not read: %+v", s)
	}
	exp0, _ := NewOrbitParameters(2.5, 2.0, 1.0, PlaneXY, PeriapsisAtEpoch)
	exp1, _ := NewOrbitParameters(2.5, 1.5, 1.0, PlaneYZ, PeriapsisAtEpoch)
	if ok, err := s.Bodies[0].Params.Equals(exp0); !ok {
		t.Fatalf("body 0: %s", err)
	}
	if ok, err := s.Bodies[1].Params.Equals(exp1); !ok {
		t.Fatalf("body 1: %s", err)
	}
	for i, body := range s.Bodies {
		if body.Solver != (IterativeSolver{DefaultTolerance, DefaultMaxIterations}) {
			t.Fatalf("body %d: default solver is %#v", i, body.Solver)
		}
	}
	if s.Precession != nil {
		t.Fatal("no precession configured")
	}
	if s.Sampling != (SamplingConfig{Start: 0, End: 5, Points: 1000}) {
		t.Fatalf("sampling %+v", s.Sampling)
	}
	if s.Export.Dir != "output" || s.Export.Prefix != "dual" || s.Export.TimeUnit != 24*time.Hour {
		t.Fatalf("export %+v", s.Export)
	}
	if !s.Export.Epoch.Equal(J2000) {
		t.Fatalf("epoch %s", s.Export.Epoch)
	}
	a, b, err := s.Models()
	if err != nil {
		t.Fatal(err)
	}
	if a.Precession != nil || b.Precession != nil {
		t.Fatal("unexpected precession")
	}
}

func TestLoadPrecessingScenario(t *testing.T) {
	s, err := LoadScenario("scenarios/precessing.toml")
	if err != nil {
		t.Fatal(err)
	}
	for i, body := range s.Bodies {
		if body.Solver != (NewtonSolver{1e-9, 50}) {
			t.Fatalf("body %d: solver %#v", i, body.Solver)
		}
	}
	if s.Bodies[0].Params.Convention() != HalfPeriodOffset || s.Bodies[1].Params.Convention() != PeriapsisAtEpoch {
		t.Fatal("conventions not read")
	}
	if !scalar.EqualWithinAbs(s.Bodies[1].Params.SemiMinorAxis(), 3*math.Sqrt(0.75), 1e-12) {
		t.Fatalf("b from e: %f", s.Bodies[1].Params.SemiMinorAxis())
	}
	if s.Precession == nil || s.PrecessionBody != 1 || s.Precession.Rate != 0.05 || !floats.Equal(s.Precession.Axis, AxisZ) {
		t.Fatalf("precession %+v body %d", s.Precession, s.PrecessionBody)
	}
	if s.Sampling != (SamplingConfig{Start: 0, End: 20, Points: 2000, Workers: 4}) {
		t.Fatalf("sampling %+v", s.Sampling)
	}
	if !s.Export.IsUseless() {
		t.Fatal("no export directory configured")
	}
	a, b, err := s.Models()
	if err != nil {
		t.Fatal(err)
	}
	if a.Precession != nil || b.Precession == nil {
		t.Fatal("precession attached to the wrong body")
	}
}

func TestCircularScenario(t *testing.T) {
	s, err := LoadScenario("scenarios/circular.toml")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Bodies[1].Solver.(SeriesSolver); !ok {
		t.Fatalf("body 1 solver %T", s.Bodies[1].Solver)
	}
	a, b, err := s.Models()
	if err != nil {
		t.Fatal(err)
	}
	ts, err := SampleDistances(a, b, s.Sampling.Start, s.Sampling.End, s.Sampling.Points)
	if err != nil {
		t.Fatal(err)
	}
	// Both circles start on -X: |r1 - r2|² = 5 - 4cos(πt).
	for _, p := range ts.Points {
		if exp := math.Sqrt(5 - 4*math.Cos(math.Pi*p.T)); !scalar.EqualWithinAbs(p.Distance, exp, 1e-9) {
			t.Fatalf("t=%f: distance %f != %f", p.T, p.Distance, exp)
		}
	}
	if !scalar.EqualWithinAbs(ts.Max, 3, 1e-9) {
		t.Fatalf("max %f", ts.Max)
	}
}

func TestLoadDefaultScenario(t *testing.T) {
	t.Setenv(DefaultScenarioEnv, "")
	if _, err := LoadDefaultScenario(); err == nil {
		t.Fatal("expected an error without the environment variable")
	}
	dir := t.TempDir()
	writeScenario(t, dir, `
[scenario]
name = "env"
[body.0]
a = 2
b = 1
period = 2
[body.1]
a = 3
e = 0.1
period = 4
plane = "xz"
solver = "meeus"
[solver]
places = 12
`)
	t.Setenv(DefaultScenarioEnv, dir)
	s, err := LoadDefaultScenario()
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "env" || s.Bodies[0].Name != "body0" || s.Bodies[1].Name != "body1" {
		t.Fatalf("names %q %q %q", s.Name, s.Bodies[0].Name, s.Bodies[1].Name)
	}
	if s.Bodies[1].Solver != (MeeusSolver{12}) || s.Bodies[1].Params.Plane() != PlaneXZ {
		t.Fatalf("body 1 %+v", s.Bodies[1])
	}
	// Defaults to five periods of the first body.
	if s.Sampling != (SamplingConfig{Start: 0, End: 10, Points: DefaultSamplePoints}) {
		t.Fatalf("sampling %+v", s.Sampling)
	}
	if s.Export.TimeUnit != time.Second || !s.Export.Epoch.IsZero() {
		t.Fatalf("export %+v", s.Export)
	}
}

func TestScenarioErrors(t *testing.T) {
	valid := "[body.0]\na = 2\nb = 1\nperiod = 1\n"
	for name, content := range map[string]string{
		"missing a":         valid + "[body.1]\nb = 1\nperiod = 1\n",
		"b and e":           valid + "[body.1]\na = 2\nb = 1\ne = 0.5\nperiod = 1\n",
		"unknown plane":     valid + "[body.1]\na = 2\nb = 1\nperiod = 1\nplane = \"UV\"\n",
		"unknown solver":    valid + "[body.1]\na = 2\nb = 1\nperiod = 1\nsolver = \"bisection\"\n",
		"hyperbolic":        valid + "[body.1]\na = 2\ne = 1.5\nperiod = 1\n",
		"no period":         valid + "[body.1]\na = 2\nb = 1\n",
		"precession body":   valid + "[body.1]\na = 2\nb = 1\nperiod = 1\n[precession]\nrate = 0.1\nbody = 2\n",
		"precession axis":   valid + "[body.1]\na = 2\nb = 1\nperiod = 1\n[precession]\nrate = 0.1\naxis = [0, 0]\n",
		"precession values": valid + "[body.1]\na = 2\nb = 1\nperiod = 1\n[precession]\nrate = 0.1\naxis = [\"x\", 0, 0]\n",
	} {
		path := writeScenario(t, t.TempDir(), content)
		if _, err := LoadScenario(path); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.toml")); err == nil || !strings.Contains(err.Error(), "missing.toml") {
		t.Fatalf("missing file: %v", err)
	}
}
