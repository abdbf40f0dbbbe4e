package models

// Row status shared by every durable table. Reads always filter on
// StatusActive so logically deleted rows stay invisible.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDeleted  = "deleted"
)
