package cache

// Key namespaces the event store persists under. Backends prepend their own
// prefix, so several feeds can share one redis database.
const (
	EventNamespace   = "event:"
	RepliesNamespace = "replies:"
	ProfileNamespace = "profile:"
)

// EventKey holds one event's JSON
func EventKey(id string) string { return EventNamespace + id }

// RepliesKey holds the JSON list of direct reply ids to id
func RepliesKey(id string) string { return RepliesNamespace + id }

// ProfileKey holds the newest kind-0 profile for pubkey
func ProfileKey(pubkey string) string { return ProfileNamespace + pubkey }
