package comms

import "fmt"

// Addressing scopes layered on top of the broker's flat topic namespace.
//
// Every adapter topic has exactly three segments: {prefix}/{scope}/{selector}.
// The selector is a client identifier for direct topics and a category
// name for broadcast topics. Selectors containing the separator produce
// malformed routing; keeping them clean is the caller's responsibility.
const (
	// ScopeDirect addresses a single recipient by client identifier.
	ScopeDirect = "direct"

	// ScopeBroadcast addresses a category-based fan-out group.
	ScopeBroadcast = "broadcast"
)

// Topics builds broker topic strings for a given namespace prefix.
// Using these helpers ensures consistent topic naming across agents.
//
//	topics := comms.Topics{Prefix: "fleet"}
//	topics.Direct("device-42")    // "fleet/direct/device-42"
//	topics.Broadcast("status")    // "fleet/broadcast/status"
type Topics struct {
	Prefix string
}

// Direct returns the point-to-point topic for a recipient.
//
// Example: fleet/direct/device-42
func (t Topics) Direct(clientID string) string {
	return fmt.Sprintf("%s/%s/%s", t.Prefix, ScopeDirect, clientID)
}

// Broadcast returns the fan-out topic for a message category.
//
// Example: fleet/broadcast/status
func (t Topics) Broadcast(category string) string {
	return fmt.Sprintf("%s/%s/%s", t.Prefix, ScopeBroadcast, category)
}

// SubscriptionSet returns the full set of topics an adapter subscribes
// to on connect: its own direct topic first, then one broadcast topic
// per requested category in caller order.
//
// No deduplication is performed; duplicate categories produce duplicate
// subscribe requests, which the broker treats idempotently. Any string
// is accepted as a segment.
func (t Topics) SubscriptionSet(ownClientID string, categories []string) []string {
	topics := make([]string, 0, len(categories)+1)
	topics = append(topics, t.Direct(ownClientID))
	for _, category := range categories {
		topics = append(topics, t.Broadcast(category))
	}
	return topics
}
