package parser

// options configures a single Parse call.
type options struct {
	recovery bool
	start    string
}

// Option configures Parse. See WithErrorRecovery and WithStartSymbol.
type Option func(*options)

// WithErrorRecovery toggles panic-mode error recovery (on by default).
// With recovery disabled, the first unrecoverable token raises a
// *SyntaxError instead of being folded into an error_node/error_leaf.
func WithErrorRecovery(on bool) Option {
	return func(o *options) { o.recovery = on }
}

// WithStartSymbol parses starting from a grammar rule other than the
// grammar's declared start symbol (e.g. parsing a bare expression instead
// of a whole module). Combining a non-default start symbol with error
// recovery is rejected — see ErrRecoveryNotImplementedForStartSymbol.
func WithStartSymbol(name string) Option {
	return func(o *options) { o.start = name }
}
