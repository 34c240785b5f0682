package subscription

// Subscriber is a polymorphic reference to the billable entity owning a
// subscription. The entity itself (user, team, organization) lives outside
// this core; the reference is a type tag plus an identifier, never
// dereferenced here.
type Subscriber struct {
	Kind string
	ID   string
}

// IsZero reports whether the reference is unset.
func (s Subscriber) IsZero() bool {
	return s.Kind == "" || s.ID == ""
}

func (s Subscriber) String() string {
	return s.Kind + ":" + s.ID
}
