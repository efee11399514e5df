package driver

// Query is the statement text as handed over by the caller. The driver
// never parses or validates it; syntax errors surface from the backend as
// query-level failures.
type Query struct {
	Statement string
}

// ExecutionParams travel alongside a Query to the backend. Opaque to the
// driver beyond pass-through: Body entries become request-body parameter
// bindings, QueryString entries extra URL parameters.
type ExecutionParams struct {
	Body        map[string]string
	QueryString map[string]string
}

// The fixed health-check issued at connect time and by Ping. Package-wide
// and never mutated; callers always see the same Query value.
var (
	healthCheckQuery  = Query{Statement: "SELECT 1"}
	healthCheckParams = ExecutionParams{}
)
