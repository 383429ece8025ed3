package model

// ListingStatus is the moderation state of a hotel listing. The numeric
// values are the wire encoding shared by the API and the database.
type ListingStatus int

const (
	StatusPending   ListingStatus = 0
	StatusPublished ListingStatus = 1
	StatusRejected  ListingStatus = 2
	StatusOffline   ListingStatus = 3
)

func (s ListingStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPublished:
		return "published"
	case StatusRejected:
		return "rejected"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// IsValid reports whether s is one of the four defined states.
func (s ListingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPublished, StatusRejected, StatusOffline:
		return true
	default:
		return false
	}
}

// CarriesCancellation reports whether a listing in state s holds an admin
// reason. Cancellation must be non-nil exactly in these states.
func (s ListingStatus) CarriesCancellation() bool {
	return s == StatusRejected || s == StatusOffline
}
