// Package layout arranges one professional's bookings for a day view,
// packing temporally overlapping bookings into side-by-side columns.
// It is strictly presentational: it packs whatever it is given and is not
// a substitute for conflict validation.
package layout

import (
	"sort"

	"github.com/nazmul-karim/slotbook/services/booking-service/internal/availability"
)

type Box struct {
	ID       string
	StartMin int
	EndMin   int
}

type Placed struct {
	Box
	Column  int
	Columns int
}

// Pack sorts boxes by start time and sweeps them into clusters of mutually
// reachable overlaps: a box joins the current cluster while it starts before
// the cluster's running maximum end. Each box in a closed cluster gets a
// column index plus the cluster size, for equal-width placement.
func Pack(boxes []Box) []Placed {
	if len(boxes) == 0 {
		return nil
	}

	sorted := make([]Box, len(boxes))
	copy(sorted, boxes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartMin != sorted[j].StartMin {
			return sorted[i].StartMin < sorted[j].StartMin
		}
		return sorted[i].EndMin < sorted[j].EndMin
	})

	placed := make([]Placed, 0, len(sorted))
	cluster := make([]Box, 0, len(sorted))
	maxEnd := sorted[0].EndMin

	flush := func() {
		for i, b := range cluster {
			placed = append(placed, Placed{Box: b, Column: i, Columns: len(cluster)})
		}
		cluster = cluster[:0]
	}

	for _, b := range sorted {
		if len(cluster) > 0 && !availability.Overlaps(b.StartMin, b.EndMin, cluster[0].StartMin, maxEnd) {
			flush()
			maxEnd = b.EndMin
		}
		cluster = append(cluster, b)
		if b.EndMin > maxEnd {
			maxEnd = b.EndMin
		}
	}
	flush()
	return placed
}
