package engine

// withBeforeVerdict runs f between drawdown and pass evaluation.
func withBeforeVerdict(f func()) Option {
	return func(e *Engine) { e.beforeVerdict = f }
}
