package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/ritzau/graphview/pkg/cycles"
	"github.com/ritzau/graphview/pkg/loader"
	"github.com/ritzau/graphview/pkg/model"
)

func init() {
	color.NoColor = true
}

func TestSummarize(t *testing.T) {
	records := []model.Record{
		{ID: "a", Headline: "A", Links: []model.Link{{ID: "b"}}},
		{ID: "b", Links: []model.Link{{ID: "a"}, {ID: "c"}}},
		{ID: "d", Links: []model.Link{{ID: "a"}, {ID: "b"}}},
	}

	s := Summarize("doc.json", records)

	if s.Records != 3 || s.Nodes != 3 {
		t.Errorf("records/nodes = %d/%d, want 3/3", s.Records, s.Nodes)
	}
	if s.Edges != 3 {
		t.Errorf("edges = %d, want 3", s.Edges)
	}
	wantDropped := []loader.DroppedLink{{From: "a", To: "b"}, {From: "b", To: "c"}}
	if len(s.Dropped) != len(wantDropped) {
		t.Fatalf("dropped = %v, want %v", s.Dropped, wantDropped)
	}
	for i := range wantDropped {
		if s.Dropped[i] != wantDropped[i] {
			t.Errorf("dropped[%d] = %v, want %v", i, s.Dropped[i], wantDropped[i])
		}
	}
	if len(s.Dangling) != 1 || s.Dangling[0] != "c" {
		t.Errorf("dangling = %v, want [c]", s.Dangling)
	}
	if len(s.Cycles) != 1 || len(s.Cycles[0].Records) != 2 {
		t.Errorf("cycles = %v, want one a<->b cycle", s.Cycles)
	}
}

func TestPrintSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    []string
		absent  []string
	}{
		{
			name:    "clean document",
			summary: Summary{Source: "g.json", Records: 2, Nodes: 2, Edges: 1},
			want:    []string{"Source: g.json", "Nodes: 2", "Summary: all 1 links drawn"},
			absent:  []string{"DROPPED", "UNKNOWN", "CYCLES"},
		},
		{
			name: "dropped and dangling",
			summary: Summary{
				Source: "g.yaml", Records: 2, Nodes: 2, Edges: 1,
				Dropped:  []loader.DroppedLink{{From: "a", To: "b"}, {From: "b", To: "zz"}},
				Dangling: []string{"zz"},
				Cycles:   []cycles.LinkCycle{{Records: []string{"a", "b"}}},
			},
			want: []string{
				"DROPPED LINKS (2):", "  a -> b", "  b -> zz",
				"UNKNOWN TARGETS (1):", "  zz",
				"LINK CYCLES (1):", "[a b]",
				"Summary: 1 of 3 links drawn",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintSummary(&buf, tt.summary)
			out := buf.String()

			for _, s := range tt.want {
				if !bytes.Contains([]byte(out), []byte(s)) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.absent {
				if bytes.Contains([]byte(out), []byte(s)) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}
