// Package trailio writes finished trails for downstream consumers and reads
// them back.
//
// Two encodings are supported. The legacy encoding is one Python list of
// (x, y) tuples per line, as consumed by the legacy plotting scripts:
//
//	[(95, 25), (90, 25), (85, 25), ]
//
// The JSON encoding keeps trail IDs, start frames and the window.
package trailio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/trails/internal/fsutil"
	"github.com/banshee-data/trails/internal/pyliteral"
	"github.com/banshee-data/trails/internal/trails"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Format selects a trail encoding.
type Format string

const (
	FormatLegacy Format = "legacy"
	FormatJSON   Format = "json"
)

// LegacyExt is appended to extensionless legacy output paths.
const LegacyExt = ".py"

// ParseFormat converts a format name into a Format.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatLegacy:
		return FormatLegacy, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown trail format %q (want %q or %q)", value, FormatLegacy, FormatJSON)
	}
}

// FormatFromPath picks JSON for ".json" paths and legacy otherwise.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatLegacy
}

// OutputPath returns the path a dump in format f is written to. Legacy
// dumps without an extension get LegacyExt, as the legacy extractor did.
func OutputPath(path string, f Format) string {
	if f == FormatLegacy && filepath.Ext(path) == "" {
		return path + LegacyExt
	}
	return path
}

// Dump is a trail collection plus the window it was tracked in.
type Dump struct {
	// Window is nil when the encoding does not carry it.
	Window *trails.Window
	Trails []trails.Trail
}

type jsonWindow struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

type jsonTrail struct {
	ID         string      `json:"id"`
	StartFrame int         `json:"start_frame"`
	Points     [][]float64 `json:"points"`
}

type jsonDump struct {
	Window *jsonWindow `json:"window,omitempty"`
	Trails []jsonTrail `json:"trails"`
}

// Write encodes d to w.
func Write(w io.Writer, f Format, d Dump) error {
	switch f {
	case FormatLegacy:
		return writeLegacy(w, d.Trails)
	case FormatJSON:
		return writeJSON(w, d)
	default:
		return fmt.Errorf("unknown trail format %q", f)
	}
}

// Read decodes a dump from r.
func Read(r io.Reader, f Format) (Dump, error) {
	switch f {
	case FormatLegacy:
		ts, err := ReadLegacy(r)
		return Dump{Trails: ts}, err
	case FormatJSON:
		return readJSON(r)
	default:
		return Dump{}, fmt.Errorf("unknown trail format %q", f)
	}
}

// Save writes d to path on fsys.
func Save(fsys fsutil.FileSystem, path string, f Format, d Dump) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	out, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	bw := bufio.NewWriter(out)
	if err := Write(bw, f, d); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return bw.Flush()
}

// Load reads a dump from path on fsys.
func Load(fsys fsutil.FileSystem, path string, f Format) (Dump, error) {
	in, err := fsys.Open(path)
	if err != nil {
		return Dump{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer in.Close()
	d, err := Read(in, f)
	if err != nil {
		return Dump{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return d, nil
}

func writeLegacy(w io.Writer, ts []trails.Trail) error {
	var b strings.Builder
	for _, t := range ts {
		b.Reset()
		b.WriteByte('[')
		for _, p := range t.Points {
			b.WriteByte('(')
			b.WriteString(formatCoord(p.X))
			b.WriteString(", ")
			b.WriteString(formatCoord(p.Y))
			b.WriteString("), ")
		}
		b.WriteString("]\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadLegacy parses one trail per non-blank line. Legacy dumps carry no
// IDs, so the returned trails have uuid.Nil IDs and zero start frames.
func ReadLegacy(r io.Reader) ([]trails.Trail, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var out []trails.Trail
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		res, err := pyliteral.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		pts, err := points(res)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, trails.Trail{Points: pts})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func points(res gjson.Result) ([]trails.Position, error) {
	if !res.IsArray() {
		return nil, fmt.Errorf("trail is not a list")
	}
	items := res.Array()
	pts := make([]trails.Position, 0, len(items))
	for i, item := range items {
		pair := item.Array()
		if !item.IsArray() || len(pair) != 2 || pair[0].Type != gjson.Number || pair[1].Type != gjson.Number {
			return nil, fmt.Errorf("point %d: want an (x, y) pair, got %s", i, item.Raw)
		}
		pts = append(pts, trails.Position{X: pair[0].Float(), Y: pair[1].Float()})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("trail has no points")
	}
	return pts, nil
}

func writeJSON(w io.Writer, d Dump) error {
	out := jsonDump{Trails: make([]jsonTrail, len(d.Trails))}
	if d.Window != nil {
		out.Window = &jsonWindow{Left: d.Window.Left, Right: d.Window.Right, Top: d.Window.Top, Bottom: d.Window.Bottom}
	}
	for i, t := range d.Trails {
		jt := jsonTrail{ID: t.ID.String(), StartFrame: t.StartFrame, Points: make([][]float64, len(t.Points))}
		for j, p := range t.Points {
			jt.Points[j] = []float64{p.X, p.Y}
		}
		out.Trails[i] = jt
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readJSON(r io.Reader) (Dump, error) {
	var in jsonDump
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return Dump{}, fmt.Errorf("failed to parse trail JSON: %w", err)
	}
	d := Dump{Trails: make([]trails.Trail, len(in.Trails))}
	if in.Window != nil {
		w, err := trails.NewWindow(in.Window.Left, in.Window.Right, in.Window.Top, in.Window.Bottom)
		if err != nil {
			return Dump{}, err
		}
		d.Window = &w
	}
	for i, jt := range in.Trails {
		id, err := uuid.Parse(jt.ID)
		if err != nil {
			return Dump{}, fmt.Errorf("trail %d: invalid id %q: %w", i, jt.ID, err)
		}
		if len(jt.Points) == 0 {
			return Dump{}, fmt.Errorf("trail %d: no points", i)
		}
		t := trails.Trail{ID: id, StartFrame: jt.StartFrame, Points: make([]trails.Position, len(jt.Points))}
		for j, p := range jt.Points {
			if len(p) != 2 {
				return Dump{}, fmt.Errorf("trail %d: point %d: want an [x, y] pair, got %d values", i, j, len(p))
			}
			t.Points[j] = trails.Position{X: p[0], Y: p[1]}
		}
		d.Trails[i] = t
	}
	return d, nil
}
