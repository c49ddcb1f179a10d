package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ritzau/graphview/pkg/model"
	"github.com/ritzau/graphview/pkg/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRecords = `[
  {"id": "a", "headline": "A", "links": [{"id": "b", "length": 50}]},
  {"id": "b", "headline": "B", "links": [{"id": "a"}, {"id": "c"}]}
]`

const twoRecordsYAML = `
- id: a
  headline: A
  links:
    - id: b
      length: 50
- id: b
  headline: B
  links:
    - id: a
    - id: c
`

func newSystem() *sim.ParticleSystem {
	ps := sim.NewParticleSystem(sim.DefaultParams())
	ps.ScreenSize(800, 600)
	return ps
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"json", twoRecords, FormatJSON},
		{"default format is json", twoRecords, ""},
		{"yaml", twoRecordsYAML, FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Decode(strings.NewReader(tt.input), tt.format)
			require.NoError(t, err)
			require.Len(t, records, 2)

			assert.Equal(t, "a", records[0].ID)
			assert.Equal(t, "A", records[0].Headline)
			assert.Equal(t, []model.Link{{ID: "b", Length: 50}}, records[0].Links)
			assert.Equal(t, []model.Link{{ID: "a"}, {ID: "c"}}, records[1].Links)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"malformed json", `[{"id": `, FormatJSON},
		{"json object instead of list", `{"id": "a"}`, FormatJSON},
		{"malformed yaml", "- id: [", FormatYAML},
		{"unknown format", `[]`, "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestDecodeEmptyYAML(t *testing.T) {
	records, err := Decode(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"data/shoehorn-multi.json": FormatJSON,
		"graph.YAML":               FormatYAML,
		"graph.yml":                FormatYAML,
		"graph":                    FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestApplyTwoRecords(t *testing.T) {
	records, err := Decode(strings.NewReader(twoRecords), FormatJSON)
	require.NoError(t, err)

	ps := newSystem()
	res := Apply(ps, records)

	assert.Equal(t, 2, res.Nodes)
	assert.Equal(t, 1, res.Edges)
	assert.Equal(t, []DroppedLink{{From: "a", To: "b"}, {From: "b", To: "c"}}, res.Dropped)

	a, ok := ps.GetNode("a")
	require.True(t, ok)
	assert.True(t, a.Data.Root)
	assert.Equal(t, "A", a.Data.Label)
	assert.Equal(t, []model.Link{{ID: "b", Length: 50}}, a.Data.Links)

	edges := ps.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "b", edges[0].Source.ID)
	assert.Equal(t, "a", edges[0].Target.ID)

	_, ok = ps.GetNode("c")
	assert.False(t, ok, "links must not create nodes")
}

func TestApplyDropsForwardLink(t *testing.T) {
	doc := `[{"id":"a","headline":"A","links":[{"id":"b","length":50}]},{"id":"b","headline":"B","links":[]}]`
	records, err := Decode(strings.NewReader(doc), FormatJSON)
	require.NoError(t, err)

	ps := newSystem()
	res := Apply(ps, records)

	assert.Equal(t, 2, res.Nodes)
	assert.Len(t, ps.Nodes(), 2)
	assert.Zero(t, res.Edges)
	assert.Empty(t, ps.Edges(), "b was not loaded yet when a linked to it")
	assert.Equal(t, []DroppedLink{{From: "a", To: "b"}}, res.Dropped)
}

func TestApplyKeepsLinkLength(t *testing.T) {
	ps := newSystem()
	Apply(ps, []model.Record{
		{ID: "a"},
		{ID: "b", Links: []model.Link{{ID: "a", Length: 42}}},
	})

	edges := ps.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, 42.0, edges[0].Length)
	assert.Equal(t, 42.0, edges[0].Data.Length)
}

func TestApplyEmptyDocument(t *testing.T) {
	ps := newSystem()
	res := Apply(ps, nil)

	assert.Equal(t, Result{}, res)
	assert.Empty(t, ps.Nodes())
}

func TestSync(t *testing.T) {
	ps := newSystem()
	Apply(ps, []model.Record{
		{ID: "a"},
		{ID: "b", Links: []model.Link{{ID: "a"}}},
		{ID: "c", Links: []model.Link{{ID: "a"}, {ID: "b"}}},
	})
	require.Len(t, ps.Edges(), 3)
	b, _ := ps.GetNode("b")
	b.Pos = model.Point{X: 0.5, Y: 0.5}

	res := Sync(ps, []model.Record{
		{ID: "a", Headline: "renamed"},
		{ID: "b"},
	})

	assert.Equal(t, 1, res.Pruned)
	_, ok := ps.GetNode("c")
	assert.False(t, ok)

	a, _ := ps.GetNode("a")
	assert.Equal(t, "renamed", a.Data.Label)

	assert.Empty(t, ps.Edges(), "b no longer links to a")
	assert.Equal(t, model.Point{X: 0.5, Y: 0.5}, b.Pos, "surviving nodes keep their position")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "graph.json")
	yamlPath := filepath.Join(dir, "graph.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(twoRecords), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(twoRecordsYAML), 0o644))

	for _, path := range []string{jsonPath, yamlPath} {
		records, err := LoadFile(path)
		require.NoError(t, err, path)
		assert.Len(t, records, 2, path)
	}

	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
