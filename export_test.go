package dualorbit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestJulianDate(t *testing.T) {
	conf := ExportConfig{TimeUnit: 24 * time.Hour}
	if jd := conf.JulianDate(0); !scalar.EqualWithinAbs(jd, 2451545.0, 1e-9) {
		t.Fatalf("J2000 is JD 2451545.0, got %f", jd)
	}
	if jd := conf.JulianDate(1.5); !scalar.EqualWithinAbs(jd, 2451546.5, 1e-6) {
		t.Fatalf("one and a half days later: %f", jd)
	}
	seconds := ExportConfig{Epoch: time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)}
	if d := seconds.DateOf(90); !d.Equal(time.Date(2017, 1, 1, 0, 1, 30, 0, time.UTC)) {
		t.Fatalf("default time unit is one second: %s", d)
	}
	if !(ExportConfig{}).IsUseless() {
		t.Fatal("no directory means no export")
	}
}

func TestWriteDistanceCSV(t *testing.T) {
	a, b := dualModels(t)
	ts, err := SampleDistances(a, b, 0, 2, 21)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteDistanceCSV(&buf, ts, ExportConfig{TimeUnit: 24 * time.Hour}); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != ts.Len()+1 || strings.Join(records[0], ",") != "t,jd,distance" {
		t.Fatalf("unexpected header or length: %v (%d records)", records[0], len(records))
	}
	for i, record := range records[1:] {
		tt, _ := strconv.ParseFloat(record[0], 64)
		jd, _ := strconv.ParseFloat(record[1], 64)
		d, _ := strconv.ParseFloat(record[2], 64)
		if tt != ts.Points[i].T || d != ts.Points[i].Distance {
			t.Fatalf("record %d: %v != %+v", i, record, ts.Points[i])
		}
		if !scalar.EqualWithinAbs(jd, 2451545.0+tt, 1e-6) {
			t.Fatalf("record %d: jd=%f", i, jd)
		}
	}
}

func TestTrackRoundTrip(t *testing.T) {
	m := mustModel(t, 2.5, 2.0, 3.0, PlaneYZ, HalfPeriodOffset, nil)
	ts, _ := SampleDistances(m, fixedPositioner{0, 0, 0}, 0, 3, 31)
	conf := ExportConfig{TimeUnit: time.Hour}
	var buf bytes.Buffer
	if err := WriteTrack(&buf, m, ts, conf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "# Orbit: ") {
		t.Fatalf("missing header:\n%s", buf.String())
	}
	states, err := ParseTrack(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != ts.Len() {
		t.Fatalf("read %d states, wrote %d", len(states), ts.Len())
	}
	for i, s := range states {
		p := ts.Points[i]
		R, _ := m.Position(p.T)
		V, _ := m.Velocity(p.T)
		if !scalar.EqualWithinAbs(s.JD, conf.JulianDate(p.T), 1e-6) {
			t.Fatalf("state %d: jd=%f", i, s.JD)
		}
		if !vectorsEqual(s.Position, R, 1e-8) || !vectorsEqual(s.Velocity, V, 1e-8) {
			t.Fatalf("state %d: %+v != %v %v", i, s, R, V)
		}
	}
	if _, err := ParseTrack(strings.NewReader("2451545.0 1 2 3\n")); err == nil {
		t.Fatal("short record should fail")
	}
	if _, err := ParseTrack(strings.NewReader("2451545.0 1 2 3 4 5 six\n")); err == nil {
		t.Fatal("invalid number should fail")
	}
}

func TestExportScenario(t *testing.T) {
	a, b := dualModels(t)
	ts, _ := SampleDistances(a, b, 0, 5, 100)
	dir := filepath.Join(t.TempDir(), "out")
	conf := ExportConfig{Dir: dir, Prefix: "dual", Epoch: J2000, TimeUnit: 24 * time.Hour}
	files, err := ExportScenario(conf, [2]string{"blue", "red"}, a, b, ts)
	if err != nil {
		t.Fatal(err)
	}
	expFiles := []string{"dual-distance.csv", "dual-blue.xyzv", "dual-red.xyzv", "dual-catalog.json"}
	if len(files) != len(expFiles) {
		t.Fatalf("wrote %v", files)
	}
	for i, f := range files {
		if f != filepath.Join(dir, expFiles[i]) {
			t.Fatalf("file %d is %s", i, f)
		}
		if _, err := os.Stat(f); err != nil {
			t.Fatal(err)
		}
	}
	raw, err := os.ReadFile(filepath.Join(dir, "dual-catalog.json"))
	if err != nil {
		t.Fatal(err)
	}
	var catalog CgCatalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		t.Fatal(err)
	}
	if len(catalog.Items) != 2 || catalog.Items[1].Trajectory.Source != "dual-red.xyzv" {
		t.Fatalf("catalog %s: %+v", &catalog, catalog.Items)
	}
	if catalog.Items[0].StartTime != "2000-01-01T12:00:00Z" || catalog.Items[0].EndTime != "2000-01-06T12:00:00Z" {
		t.Fatalf("catalog times %s %s", catalog.Items[0].StartTime, catalog.Items[0].EndTime)
	}

	if _, err := ExportScenario(ExportConfig{}, [2]string{"blue", "red"}, a, b, ts); err == nil {
		t.Fatal("exporting without a directory should fail")
	}
	if _, err := ExportScenario(conf, [2]string{"blue", "red"}, a, b, TimeSeries{}); err == nil {
		t.Fatal("exporting an empty series should fail")
	}
}
