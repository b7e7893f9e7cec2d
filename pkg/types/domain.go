package types

// Result is the per-run output schema shared by batch files and the HTTP API.
type Result struct {
	// Integer seconds, capped at the budget; the full budget unless proven optimal.
	// example: 3
	Time int `json:"time" example:"3"`
	// Whether the objective is proven optimal.
	// example: true
	Optimal bool `json:"optimal" example:"true"`
	// Largest route length, or -1 when no solution was found.
	// example: 10
	Obj int `json:"obj" example:"10"`
	// One list of 1-based item ids per courier, in visiting order.
	Sol [][]int `json:"sol"`
}

// InstanceData is a structured Multiple Courier Problem instance.
type InstanceData struct {
	// Courier capacities, one per courier.
	// example: [10,10]
	Capacities []int `json:"capacities" example:"10,10"`
	// Item sizes, one per item.
	// example: [5,5,5]
	Sizes []int `json:"sizes" example:"5,5,5"`
	// (n+1)x(n+1) distance matrix; the last row and column are the depot.
	Distances [][]int `json:"distances"`
}
