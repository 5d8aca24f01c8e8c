package layout

import "testing"

func placedByID(placed []Placed) map[string]Placed {
	m := make(map[string]Placed, len(placed))
	for _, p := range placed {
		m[p.ID] = p
	}
	return m
}

func TestPack_DisjointBookings(t *testing.T) {
	placed := Pack([]Box{
		{ID: "a", StartMin: 540, EndMin: 600},
		{ID: "b", StartMin: 600, EndMin: 660}, // back-to-back: separate cluster
		{ID: "c", StartMin: 720, EndMin: 780},
	})
	if len(placed) != 3 {
		t.Fatalf("expected 3 placements, got %d", len(placed))
	}
	for _, p := range placed {
		if p.Column != 0 || p.Columns != 1 {
			t.Fatalf("disjoint booking %s should be full width, got %+v", p.ID, p)
		}
	}
}

func TestPack_OverlapCluster(t *testing.T) {
	placed := Pack([]Box{
		{ID: "late", StartMin: 630, EndMin: 690},
		{ID: "early", StartMin: 540, EndMin: 660},
		{ID: "after", StartMin: 700, EndMin: 760},
	})
	m := placedByID(placed)

	if m["early"].Columns != 2 || m["late"].Columns != 2 {
		t.Fatalf("overlapping pair should share 2 columns: %+v", placed)
	}
	if m["early"].Column == m["late"].Column {
		t.Fatal("overlapping bookings must get distinct columns")
	}
	if m["after"].Columns != 1 {
		t.Fatalf("booking after the cluster should stand alone: %+v", m["after"])
	}
}

func TestPack_ChainedOverlapExtendsCluster(t *testing.T) {
	// c overlaps b but not a; the running max end keeps all three together.
	placed := Pack([]Box{
		{ID: "a", StartMin: 540, EndMin: 600},
		{ID: "b", StartMin: 570, EndMin: 660},
		{ID: "c", StartMin: 610, EndMin: 670},
	})
	for _, p := range placed {
		if p.Columns != 3 {
			t.Fatalf("chained overlaps should form one 3-wide cluster: %+v", placed)
		}
	}
}

func TestPack_Empty(t *testing.T) {
	if placed := Pack(nil); placed != nil {
		t.Fatalf("expected nil for no bookings, got %v", placed)
	}
}
