package availability

// BusyInterval is an occupied stretch of a professional's day, expressed in
// minutes since midnight. BookingID is empty for ephemeral intervals such as
// a candidate slot under evaluation.
type BusyInterval struct {
	BookingID string
	StartMin  int
	EndMin    int
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) share an instant.
// The strict inequalities make back-to-back intervals legal: an interval
// ending exactly when another starts does not overlap it.
//
// This is the single overlap primitive in the repo; the availability filter,
// commit validation, and the day-view packer all go through it.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// WouldConflict scans existing intervals for the first one overlapping the
// proposal. An existing interval with the same BookingID is skipped so that
// re-validating an edit never conflicts with the booking's own prior slot.
func WouldConflict(proposed BusyInterval, existing []BusyInterval) (BusyInterval, bool) {
	for _, b := range existing {
		if proposed.BookingID != "" && b.BookingID == proposed.BookingID {
			continue
		}
		if Overlaps(proposed.StartMin, proposed.EndMin, b.StartMin, b.EndMin) {
			return b, true
		}
	}
	return BusyInterval{}, false
}
