package di

// BuildLazyContext returns a context over factories without invoking any of
// them. Each name is realized on its first read. substitutions may be nil.
func BuildLazyContext(factories Factories, substitutions Substitutions, opts ...Option) *Context {
	return newContext(factories, substitutions, opts)
}

// BuildContext returns a context in which every name has been realized.
// The first error met while realizing is returned unchanged.
func BuildContext(factories Factories, substitutions Substitutions, opts ...Option) (*Context, error) {
	c := newContext(factories, substitutions, opts)
	if err := c.force(c.Keys()); err != nil {
		return nil, err
	}
	return c, nil
}

// BuildApplicationContext is BuildContext with one extra guarantee: every
// name present in both factories and substitutions holds exactly the
// substituted value, seeded before any factory runs, and its factory is
// detached from the context so nothing can invoke it.
func BuildApplicationContext(factories Factories, substitutions Substitutions, opts ...Option) (*Context, error) {
	c := newContext(factories, substitutions, opts)
	for name, e := range c.entries {
		if v, ok := c.subs[name]; ok {
			e.factory = nil
			e.value = v
			e.state = stateBuilt
		}
	}
	if err := c.force(c.Keys()); err != nil {
		return nil, err
	}
	return c, nil
}
