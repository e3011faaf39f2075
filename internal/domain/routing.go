package domain

// Policy identifies which knowledge sources serve a query.
type Policy string

const (
	PolicyLocal  Policy = "local"
	PolicyWeb    Policy = "web"
	PolicyHybrid Policy = "hybrid"
)

// Valid reports whether p is one of the three routing policies.
func (p Policy) Valid() bool {
	switch p {
	case PolicyLocal, PolicyWeb, PolicyHybrid:
		return true
	}
	return false
}

// RoutingDecision is the routing outcome for a query. It is immutable once
// produced and is echoed unchanged in the final response.
type RoutingDecision struct {
	Policy    Policy `json:"policy"`
	Rationale string `json:"rationale"`
}
