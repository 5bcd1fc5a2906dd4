package dispatch

// Stats is a point-in-time view of a registry's counters and table sizes.
type Stats struct {
	Connects    int `json:"connects"`
	Disconnects int `json:"disconnects"`
	Sends       int `json:"sends"`

	// Senders is the number of senders with at least one connection.
	Senders int `json:"senders"`
	// Signals is the number of (sender, signal) entries.
	Signals int `json:"signals"`
	// Connections is the number of stored connections, including weak ones
	// whose receiver has been collected but not yet removed.
	Connections int `json:"connections"`
	// TrackedSenders is the number of WeakRef senders with a pending
	// collection callback.
	TrackedSenders int `json:"tracked_senders"`
	// BackRefs is the number of receivers with at least one connection.
	BackRefs int `json:"back_refs"`
}

// Empty reports whether the registry holds no connections at all.
func (s Stats) Empty() bool {
	return s.Senders == 0 && s.Signals == 0 && s.Connections == 0 && s.TrackedSenders == 0 && s.BackRefs == 0
}

// Stats returns the registry's counters and table sizes.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := Stats{
		Connects:       r.connects,
		Disconnects:    r.disconnects,
		Sends:          r.sends,
		Senders:        len(r.connections),
		TrackedSenders: len(r.senders),
		BackRefs:       len(r.backRefs),
	}
	for _, signals := range r.connections {
		st.Signals += len(signals)
		for _, s := range signals {
			st.Connections += len(s.refs)
		}
	}
	return st
}
