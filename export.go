package dualorbit

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the default export epoch.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// ExportConfig configures where and how sampled data is written.
type ExportConfig struct {
	Dir      string
	Prefix   string
	Epoch    time.Time     // date of t=0, J2000 if zero
	TimeUnit time.Duration // duration of one simulation time unit, one second if zero
}

// IsUseless returns whether this config would not write anything.
func (c ExportConfig) IsUseless() bool {
	return c.Dir == ""
}

// DateOf returns the date of simulation time t.
func (c ExportConfig) DateOf(t float64) time.Time {
	epoch, tu := c.Epoch, c.TimeUnit
	if epoch.IsZero() {
		epoch = J2000
	}
	if tu == 0 {
		tu = time.Second
	}
	return epoch.Add(time.Duration(t * float64(tu)))
}

// JulianDate returns the Julian date of simulation time t.
func (c ExportConfig) JulianDate(t float64) float64 {
	return julian.TimeToJD(c.DateOf(t))
}

// WriteDistanceCSV writes the series as `t,jd,distance` records.
func WriteDistanceCSV(w io.Writer, ts TimeSeries, conf ExportConfig) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "jd", "distance"}); err != nil {
		return err
	}
	for _, p := range ts.Points {
		record := []string{
			strconv.FormatFloat(p.T, 'g', -1, 64),
			strconv.FormatFloat(conf.JulianDate(p.T), 'f', 8, 64),
			strconv.FormatFloat(p.Distance, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// TrackState is one record of a track file.
type TrackState struct {
	JD       float64
	Position []float64
	Velocity []float64
}

// FromText initializes from text.
// The `record` parameter must be an array of seven items.
func (s *TrackState) FromText(record []string) error {
	if len(record) != 7 {
		return fmt.Errorf("expected 7 fields, got %d", len(record))
	}
	vals := make([]float64, 7)
	for i, field := range record {
		val, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return err
		}
		vals[i] = val
	}
	s.JD = vals[0]
	s.Position = vals[1:4]
	s.Velocity = vals[4:7]
	return nil
}

// ToText converts to text for written output.
func (s *TrackState) ToText() string {
	return fmt.Sprintf("%f %.9f %.9f %.9f %.9f %.9f %.9f", s.JD, s.Position[0], s.Position[1], s.Position[2], s.Velocity[0], s.Velocity[1], s.Velocity[2])
}

// WriteTrack writes the states of the model at the times of the series.
func WriteTrack(w io.Writer, m *OrbitModel, ts TimeSeries, conf ExportConfig) error {
	if _, err := fmt.Fprintf(w, `# Orbit: %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a Julian date, simulation time 0 is %s
`, m, conf.DateOf(0).UTC()); err != nil {
		return err
	}
	for _, p := range ts.Points {
		R, err := m.Position(p.T)
		if err != nil {
			return err
		}
		V, err := m.Velocity(p.T)
		if err != nil {
			return err
		}
		state := TrackState{conf.JulianDate(p.T), R, V}
		if _, err := io.WriteString(w, state.ToText()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// ParseTrack reads the records written by WriteTrack.
func ParseTrack(r io.Reader) ([]*TrackState, error) {
	var states = []*TrackState{}
	cr := csv.NewReader(r)
	cr.Comma = ' '
	cr.Comment = '#'
	for {
		record, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		state := TrackState{}
		if err := state.FromText(record); err != nil {
			return nil, err
		}
		states = append(states, &state)
	}
	return states, nil
}

// CgCatalog is a Cosmographia catalog referencing the exported tracks.
type CgCatalog struct {
	Version string    `json:"version"`
	Name    string    `json:"name"`
	Items   []*CgItem `json:"items"`
}

// CgItem definition.
type CgItem struct {
	Class      string        `json:"class"`
	Name       string        `json:"name"`
	StartTime  string        `json:"startTime"`
	EndTime    string        `json:"endTime"`
	Center     string        `json:"center"`
	Trajectory *CgTrajectory `json:"trajectory,omitempty"`
}

// CgTrajectory definition.
type CgTrajectory struct {
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
}

func (c *CgCatalog) String() string {
	return c.Name + "(" + c.Version + ")"
}

// ExportScenario writes the distance series, one track per body and the catalog in conf.Dir.
// It returns the paths of the written files.
func ExportScenario(conf ExportConfig, names [2]string, a, b *OrbitModel, ts TimeSeries) ([]string, error) {
	if conf.IsUseless() {
		return nil, errors.New("no export directory configured")
	}
	if ts.Len() == 0 {
		return nil, errors.New("empty time series")
	}
	if err := os.MkdirAll(conf.Dir, 0o755); err != nil {
		return nil, err
	}
	prefix := conf.Prefix
	if prefix == "" {
		prefix = "dualorbit"
	}
	var written []string
	create := func(name string, write func(io.Writer) error) error {
		path := filepath.Join(conf.Dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := write(f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
		return f.Close()
	}

	if err := create(prefix+"-distance.csv", func(w io.Writer) error {
		return WriteDistanceCSV(w, ts, conf)
	}); err != nil {
		return written, err
	}

	start := conf.DateOf(ts.Points[0].T).UTC().Format(time.RFC3339)
	end := conf.DateOf(ts.Points[ts.Len()-1].T).UTC().Format(time.RFC3339)
	catalog := CgCatalog{Version: "1.0", Name: prefix}
	for i, m := range []*OrbitModel{a, b} {
		trackName := fmt.Sprintf("%s-%s.xyzv", prefix, names[i])
		if err := create(trackName, func(w io.Writer) error {
			return WriteTrack(w, m, ts, conf)
		}); err != nil {
			return written, err
		}
		catalog.Items = append(catalog.Items, &CgItem{
			Class:      "spacecraft",
			Name:       names[i],
			StartTime:  start,
			EndTime:    end,
			Center:     "Focus",
			Trajectory: &CgTrajectory{Type: "InterpolatedStates", Source: trackName},
		})
	}

	err := create(prefix+"-catalog.json", func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	})
	return written, err
}
