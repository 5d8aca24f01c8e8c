package outbox

// Event is the domain event envelope written to the outbox table in the same
// transaction as the booking change. The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const (
	EventBooked        = "booking.appointment.booked.v1"
	EventRescheduled   = "booking.appointment.rescheduled.v1"
	EventStatusChanged = "booking.appointment.status_changed.v1"
)
