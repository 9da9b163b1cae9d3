// Package machine defines the droplet record shared by the planner, the
// provider client and the output formatters.
package machine

// Record is a droplet as returned by the provider. Read-only.
type Record struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Tags      Tags   `json:"tags"`
	Region    string `json:"region"` // Region slug (e.g., "nyc3")
	IPAddress string `json:"ip"`     // Public IPv4, empty until assigned
}

// Type returns the machine type encoded in the record's tags.
func (r Record) Type() string {
	return r.Tags.Type()
}
