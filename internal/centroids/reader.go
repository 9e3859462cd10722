// Package centroids reads the per-frame blob centroid dump produced by the
// segmentation stage and turns it into tracker input.
//
// Each non-blank, non-comment line is one frame record, either in the
// legacy Python literal form
//
//	{'original_file': 'f001.png', 'segmented_file': 'f001_segments.png', 'image_size': (640, 480), 'window_size': (0, 640, 0, 480), 'centroids': [(12,40), (300,221), ]}
//
// or as a JSON object with the same keys. The first record must carry
// window_size; it fixes the observation window for the whole run.
package centroids

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/banshee-data/trails/internal/monitoring"
	"github.com/banshee-data/trails/internal/pyliteral"
	"github.com/banshee-data/trails/internal/trails"
	"github.com/tidwall/gjson"
)

const maxLineBytes = 16 * 1024 * 1024

// ParseError reports a malformed record.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("centroids: line %d: %s", e.Line, e.Msg)
	}
	return "centroids: " + e.Msg
}

// Record is one decoded dump line.
type Record struct {
	OriginalFile  string
	SegmentedFile string
	ImageWidth    int
	ImageHeight   int
	// Window is nil when the record has no window_size.
	Window    *trails.Window
	Centroids []trails.Position
}

// Header carries the run-wide values read from the first record.
type Header struct {
	ImageWidth  int
	ImageHeight int
	Window      trails.Window
}

// Frame is one frame's observation.
type Frame struct {
	Index         int // zero-based frame number
	Line          int // source line number
	OriginalFile  string
	SegmentedFile string
	Centroids     []trails.Position
}

// ParseRecord decodes a single record. Coordinates must be finite pairs.
func ParseRecord(line string) (Record, error) {
	res, err := pyliteral.Parse(strings.TrimSpace(line))
	if err != nil {
		return Record{}, &ParseError{Msg: err.Error()}
	}
	if !res.IsObject() {
		return Record{}, &ParseError{Msg: "record is not a dict"}
	}

	rec := Record{
		OriginalFile:  res.Get("original_file").String(),
		SegmentedFile: res.Get("segmented_file").String(),
	}

	if size := res.Get("image_size"); size.Exists() {
		vals, err := numbers(size, 2, "image_size")
		if err != nil {
			return Record{}, err
		}
		rec.ImageWidth, rec.ImageHeight = int(vals[0]), int(vals[1])
	}

	if ws := res.Get("window_size"); ws.Exists() {
		vals, err := numbers(ws, 4, "window_size")
		if err != nil {
			return Record{}, err
		}
		w, err := trails.NewWindow(vals[0], vals[1], vals[2], vals[3])
		if err != nil {
			return Record{}, &ParseError{Msg: err.Error()}
		}
		rec.Window = &w
	}

	cs := res.Get("centroids")
	if !cs.Exists() {
		return Record{}, &ParseError{Msg: "missing centroids"}
	}
	if !cs.IsArray() {
		return Record{}, &ParseError{Msg: "centroids is not a list"}
	}
	items := cs.Array()
	rec.Centroids = make([]trails.Position, 0, len(items))
	for i, item := range items {
		vals, err := numbers(item, 2, fmt.Sprintf("centroid %d", i))
		if err != nil {
			return Record{}, err
		}
		rec.Centroids = append(rec.Centroids, trails.Position{X: vals[0], Y: vals[1]})
	}
	return rec, nil
}

func numbers(res gjson.Result, n int, what string) ([]float64, error) {
	if !res.IsArray() {
		return nil, &ParseError{Msg: fmt.Sprintf("%s: want a %d-tuple, got %s", what, n, res.Raw)}
	}
	items := res.Array()
	if len(items) != n {
		return nil, &ParseError{Msg: fmt.Sprintf("%s: want %d values, got %d", what, n, len(items))}
	}
	out := make([]float64, n)
	for i, item := range items {
		if item.Type != gjson.Number {
			return nil, &ParseError{Msg: fmt.Sprintf("%s: value %d is not a number: %s", what, i, item.Raw)}
		}
		v := item.Float()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ParseError{Msg: fmt.Sprintf("%s: value %d is not finite", what, i)}
		}
		out[i] = v
	}
	return out, nil
}

// Reader streams frames from a centroid dump.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	frames  int

	header  *Header
	pending *Frame
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &Reader{scanner: sc}
}

// Header returns the run header, reading the first record if needed.
func (r *Reader) Header() (Header, error) {
	if r.header != nil {
		return *r.header, nil
	}
	rec, line, err := r.nextRecord()
	if err == io.EOF {
		return Header{}, &ParseError{Msg: "dump contains no records"}
	}
	if err != nil {
		return Header{}, err
	}
	if rec.Window == nil {
		return Header{}, &ParseError{Line: line, Msg: "first record has no window_size"}
	}
	r.header = &Header{
		ImageWidth:  rec.ImageWidth,
		ImageHeight: rec.ImageHeight,
		Window:      *rec.Window,
	}
	f := r.frame(rec, line)
	r.pending = &f
	return *r.header, nil
}

// Next returns the next frame, or io.EOF once the dump is exhausted.
func (r *Reader) Next() (Frame, error) {
	if r.header == nil {
		if _, err := r.Header(); err != nil {
			return Frame{}, err
		}
	}
	if r.pending != nil {
		f := *r.pending
		r.pending = nil
		return f, nil
	}
	rec, line, err := r.nextRecord()
	if err != nil {
		return Frame{}, err
	}
	if rec.Window != nil && *rec.Window != r.header.Window {
		monitoring.Logf("centroids: line %d: window_size %v differs from header %v; keeping header", line, *rec.Window, r.header.Window)
	}
	return r.frame(rec, line), nil
}

func (r *Reader) frame(rec Record, line int) Frame {
	f := Frame{
		Index:         r.frames,
		Line:          line,
		OriginalFile:  rec.OriginalFile,
		SegmentedFile: rec.SegmentedFile,
		Centroids:     rec.Centroids,
	}
	r.frames++
	return f
}

func (r *Reader) nextRecord() (Record, int, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rec, err := ParseRecord(text)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = r.line
			}
			return Record{}, r.line, err
		}
		return rec, r.line, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, r.line, fmt.Errorf("centroids: read failed: %w", err)
	}
	return Record{}, r.line, io.EOF
}

// ReadAll reads the header and every frame from r.
func ReadAll(r io.Reader) (Header, []Frame, error) {
	rd := NewReader(r)
	h, err := rd.Header()
	if err != nil {
		return Header{}, nil, err
	}
	var frames []Frame
	for {
		f, err := rd.Next()
		if err == io.EOF {
			return h, frames, nil
		}
		if err != nil {
			return Header{}, nil, err
		}
		frames = append(frames, f)
	}
}

// Positions extracts the centroid sets of frames in order.
func Positions(frames []Frame) [][]trails.Position {
	out := make([][]trails.Position, len(frames))
	for i, f := range frames {
		out[i] = f.Centroids
	}
	return out
}
