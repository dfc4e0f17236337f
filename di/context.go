package di

import (
	"maps"
	"slices"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kbukum/depdep/logger"
)

// Factory produces the value for one name. It reads its dependencies from c.
type Factory func(c *Context) (any, error)

// Factories maps names to the factories that build them.
type Factories map[string]Factory

// Substitutions maps names to prebuilt values that preempt their factories.
type Substitutions map[string]any

// Origin tells where a context entry gets its value from.
type Origin int

const (
	OriginFactory      Origin = iota // Built by invoking the factory
	OriginSubstitution               // Taken verbatim from substitutions
)

func (o Origin) String() string {
	if o == OriginSubstitution {
		return "substitution"
	}
	return "factory"
}

type entryState int

const (
	stateUnbuilt entryState = iota
	stateBuilding
	stateBuilt
)

type entry struct {
	factory Factory
	origin  Origin
	state   entryState
	value   any
}

// Context is the object graph under construction. Its key set is the key set
// of the factories it was built from; each value is realized on first read
// and cached for the lifetime of the context.
type Context struct {
	id      string
	entries map[string]*entry
	subs    Substitutions
	log     *logger.Logger
	obs     []Observer

	// names whose factories are currently running, innermost last
	building []string
	observed graph.Graph[string, string]
}

func newContext(factories Factories, substitutions Substitutions, opts []Option) *Context {
	o := resolveOptions(opts)

	c := &Context{
		id:       uuid.NewString(),
		entries:  make(map[string]*entry, len(factories)),
		subs:     maps.Clone(substitutions),
		obs:      o.observers,
		observed: graph.New(graph.StringHash, graph.Directed()),
	}
	if c.subs == nil {
		c.subs = Substitutions{}
	}
	if o.logger != nil {
		c.log = o.logger.WithComponent("di").WithFields(map[string]interface{}{
			logger.FieldContextID: c.id,
		})
	}

	for name, factory := range factories {
		origin := OriginFactory
		if _, ok := c.subs[name]; ok {
			origin = OriginSubstitution
		}
		c.entries[name] = &entry{factory: factory, origin: origin}
		_ = c.observed.AddVertex(name)
	}
	return c
}

// ID returns the unique identifier of this context.
func (c *Context) ID() string { return c.id }

// Get returns the value for name, invoking its factory on the first read.
//
// A substituted name returns its substitution without invoking the factory.
// A factory error is returned unchanged and leaves the entry unbuilt, so a
// later read invokes the factory again. A name with neither a factory nor a
// substitution yields a *LookupError; a nil Factory counts as no factory.
func (c *Context) Get(name string) (any, error) {
	e, ok := c.entries[name]
	if !ok {
		if v, sub := c.subs[name]; sub {
			c.observe(name)
			return v, nil
		}
		return nil, &LookupError{Name: name, Requester: c.requester()}
	}
	c.observe(name)

	if e.state == stateBuilt {
		return e.value, nil
	}
	if v, sub := c.subs[name]; sub {
		e.value = v
		e.state = stateBuilt
		c.debug("Substitution used", name, nil)
		return v, nil
	}
	if e.factory == nil {
		return nil, &LookupError{Name: name, Requester: c.requester()}
	}
	return c.build(name, e)
}

func (c *Context) build(name string, e *entry) (value any, err error) {
	for _, o := range c.obs {
		o.FactoryStarted(name, c.requester())
	}
	e.state = stateBuilding
	c.building = append(c.building, name)
	start := time.Now()

	defer func() {
		c.building = c.building[:len(c.building)-1]
		failure := err
		if e.state != stateBuilt && failure == nil {
			failure = errFactoryPanicked
		}
		if failure != nil {
			e.state = stateUnbuilt
		}
		for _, o := range c.obs {
			o.FactoryFinished(name, time.Since(start), failure)
		}
	}()

	value, err = e.factory(c)
	if err != nil {
		return nil, err
	}

	e.value = value
	e.state = stateBuilt
	c.debug("Factory invoked", name, logger.DurationFields("build", time.Since(start)))
	return value, nil
}

// observe records that the innermost running factory read name.
func (c *Context) observe(name string) {
	requester := c.requester()
	if requester == "" || requester == name {
		return
	}
	_ = c.observed.AddVertex(name)
	_ = c.observed.AddEdge(name, requester)
}

func (c *Context) requester() string {
	if len(c.building) == 0 {
		return ""
	}
	return c.building[len(c.building)-1]
}

func (c *Context) debug(msg, name string, fields map[string]interface{}) {
	if c.log == nil || !c.log.Enabled(zerolog.DebugLevel) {
		return
	}
	c.log.Debug(msg, fields, map[string]interface{}{
		logger.FieldDependency: name,
		logger.FieldRequester:  c.requester(),
	})
}

// Keys returns the context's names in sorted order.
func (c *Context) Keys() []string {
	return slices.Sorted(maps.Keys(c.entries))
}

// Len returns the number of names in the context.
func (c *Context) Len() int { return len(c.entries) }

// Has reports whether name is one of the context's keys.
func (c *Context) Has(name string) bool {
	_, ok := c.entries[name]
	return ok
}

// Realized reports whether name already holds a value.
func (c *Context) Realized(name string) bool {
	e, ok := c.entries[name]
	return ok && e.state == stateBuilt
}

// Map returns a fresh mapping of every realized name to its value.
// Unrealized names are absent.
func (c *Context) Map() map[string]any {
	m := make(map[string]any, len(c.entries))
	for name, e := range c.entries {
		if e.state == stateBuilt {
			m[name] = e.value
		}
	}
	return m
}

// force reads every name in order, stopping at the first error.
func (c *Context) force(order []string) error {
	for _, name := range order {
		if _, err := c.Get(name); err != nil {
			return err
		}
	}
	return nil
}
