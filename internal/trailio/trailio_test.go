package trailio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/banshee-data/trails/internal/fsutil"
	"github.com/banshee-data/trails/internal/trails"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDump() Dump {
	w := trails.Window{Left: 0, Right: 100, Top: 0, Bottom: 50}
	a := trails.NewTrail(0, 0, trails.Position{X: 95, Y: 25})
	a.Points = append(a.Points, trails.Position{X: 5, Y: 25})
	b := trails.NewTrail(1, 3, trails.Position{X: 96.5, Y: 10.25})
	return Dump{Window: &w, Trails: []trails.Trail{a, b}}
}

func TestWriteLegacy_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatLegacy, sampleDump()))

	want := "[(95, 25), (5, 25), ]\n[(96.5, 10.25), ]\n"
	assert.Equal(t, want, buf.String())
}

func TestLegacyRoundTrip(t *testing.T) {
	d := sampleDump()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatLegacy, d))

	got, err := Read(&buf, FormatLegacy)
	require.NoError(t, err)
	assert.Nil(t, got.Window)
	require.Len(t, got.Trails, 2)
	for i := range d.Trails {
		assert.Equal(t, uuid.Nil, got.Trails[i].ID)
		assert.Equal(t, d.Trails[i].Points, got.Trails[i].Points)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := sampleDump()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, d))
	assert.Contains(t, buf.String(), `"start_frame": 3`)

	got, err := Read(&buf, FormatJSON)
	require.NoError(t, err)
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_EmptyTrailsIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, Dump{}))
	assert.JSONEq(t, `{"trails": []}`, buf.String())
}

func TestReadLegacy_Errors(t *testing.T) {
	for _, in := range []string{
		"[(1, 2), (3), ]\n",
		"[]\n",
		"{'a': 1}\n",
		"[(1, 'x'), ]\n",
		"[(1, 2\n",
	} {
		_, err := ReadLegacy(strings.NewReader(in))
		assert.Error(t, err, in)
	}
}

func TestReadLegacy_SkipsBlankAndComments(t *testing.T) {
	ts, err := ReadLegacy(strings.NewReader("# trails\n\n[(1, 2), (3, 4), ]\n"))
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, []trails.Position{{X: 1, Y: 2}, {X: 3, Y: 4}}, ts[0].Points)
}

func TestReadJSON_Errors(t *testing.T) {
	for _, in := range []string{
		`{"trails": [{"id": "nope", "points": [[1,2]]}]}`,
		`{"trails": [{"id": "` + uuid.Nil.String() + `", "points": []}]}`,
		`{"window": {"left": 5, "right": 1, "top": 0, "bottom": 1}, "trails": []}`,
		`{"trails": [{"id": "` + uuid.Nil.String() + `", "points": [[7],[1,2,3]]}]}`,
		`not json`,
	} {
		_, err := Read(strings.NewReader(in), FormatJSON)
		assert.Error(t, err, in)
	}
}

func TestReadJSON_RejectsMalformedPoints(t *testing.T) {
	id := uuid.Nil.String()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short point", `{"trails": [{"id": "` + id + `", "points": [[7]]}]}`, "trail 0: point 0: want an [x, y] pair"},
		{"long point", `{"trails": [{"id": "` + id + `", "points": [[1,2],[1,2,3]]}]}`, "trail 0: point 1: want an [x, y] pair"},
		{"empty point", `{"trails": [{"id": "` + id + `", "points": [[1,2]]}, {"id": "` + id + `", "points": [[]]}]}`, "trail 1: point 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in), FormatJSON)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFormats(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	_, err = ParseFormat("csv")
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, FormatFromPath("out/seqA.json"))
	assert.Equal(t, FormatLegacy, FormatFromPath("out/seqATrails"))
	assert.Equal(t, "seqATrails.py", OutputPath("seqATrails", FormatLegacy))
	assert.Equal(t, "seqATrails.txt", OutputPath("seqATrails.txt", FormatLegacy))
	assert.Equal(t, "seqATrails", OutputPath("seqATrails", FormatJSON))

	assert.Error(t, Write(&bytes.Buffer{}, Format("xml"), Dump{}))
	_, err = Read(strings.NewReader(""), Format("xml"))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	d := sampleDump()

	require.NoError(t, Save(mfs, "/out/seqA.json", FormatJSON, d))
	assert.True(t, fsutil.Exists(mfs, "/out"))

	got, err := Load(mfs, "/out/seqA.json", FormatJSON)
	require.NoError(t, err)
	assert.Len(t, got.Trails, 2)

	_, err = Load(mfs, "/out/missing.json", FormatJSON)
	assert.Error(t, err)
}
