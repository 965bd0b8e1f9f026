package dispatch

// Endpoint is one upstream address eligible to receive a forwarded request.
// Endpoints are defined at process start and never mutated.
type Endpoint struct {
	// URL is the fully-qualified upstream address.
	URL string
	// Ordinal is the position of this endpoint in the priority order,
	// starting at 0.
	Ordinal int
}

// NewEndpointSet builds the ordered endpoint set from configured addresses.
// The given order is the failover priority order.
func NewEndpointSet(addrs []string) []Endpoint {
	eps := make([]Endpoint, 0, len(addrs))
	for i, a := range addrs {
		eps = append(eps, Endpoint{URL: a, Ordinal: i})
	}
	return eps
}
