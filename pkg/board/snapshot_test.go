package board

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/grid"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Version: SnapshotVersion,
		Grid:    testGrid(),
		Items: []Item{
			{ID: "a", X: 1, Y: 1, Z: 1, Width: 3, Height: 2, Movable: true, Resizable: true, TypeTag: "chart"},
			{ID: "b", X: 4, Y: 1, Z: 2, Width: 2, Height: 2, Movable: true, Resizable: true, TypeTag: "note",
				Attributes: map[string]any{"title": "todo"}},
			{ID: "c", X: 1, Y: 3, Z: 3, Width: 1, Height: 1, Movable: false, Resizable: true, TypeTag: "clock"},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	orig := sampleSnapshot()

	data, err := MarshalSnapshot(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(got, orig) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, orig)
	}
}

func TestSnapshotReadWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, sampleSnapshot()); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Items) != 3 {
		t.Errorf("read %d items, want 3", len(got.Items))
	}
}

func TestSnapshotValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"wrong version", func(s *Snapshot) { s.Version = 99 }},
		{"invalid grid", func(s *Snapshot) { s.Grid.Columns = 0 }},
		{"duplicate id", func(s *Snapshot) { s.Items[1].ID = "a" }},
		{"out of bounds item", func(s *Snapshot) { s.Items[0].X = 11 }},
		{"zero size item", func(s *Snapshot) { s.Items[0].Width = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSnapshot()
			tt.mutate(&s)
			err := s.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidSnapshot) &&
				errors.GetCode(err) == "" {
				t.Errorf("Validate() = %v, want a coded error", err)
			}
			if err == nil {
				t.Error("Validate() accepted a broken snapshot")
			}
		})
	}
}

func TestUnmarshalSnapshotMalformed(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte(`{"version": 1, "items": [`))
	if !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
		t.Errorf("malformed JSON should yield INVALID_SNAPSHOT, got %v", err)
	}
}

func TestSnapshotVersionConstant(t *testing.T) {
	// Items with unbounded-row grids validate too.
	s := Snapshot{
		Version: SnapshotVersion,
		Grid:    grid.Config{Columns: 4, Rows: grid.Unbounded, CellWidth: 10, CellHeight: 10},
		Items:   []Item{{ID: "deep", X: 1, Y: 1000, Width: 4, Height: 100, Movable: true, Resizable: true}},
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
