package tool

// Builtins returns the full tool catalogue.
func Builtins() []Tool {
	var all []Tool
	for _, group := range [][]Tool{sapTools(), inforTools(), canonicalTools(), safetyTools(), configTools()} {
		all = append(all, group...)
	}
	return all
}

// NewBuiltinRegistry returns a registry holding the full catalogue.
func NewBuiltinRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, t := range Builtins() {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}
