package outbound

// Predicate decides whether a data need has every filter it requires.
type Predicate interface {
	Ready(fields map[string]string) (bool, error)
}

// ReadinessCompiler turns a readiness expression over named string fields into
// a Predicate. An empty expression is always ready.
type ReadinessCompiler interface {
	Compile(expr string, fields []string) (Predicate, error)
}
