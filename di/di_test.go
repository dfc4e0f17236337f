package di

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/depdep/logger"
)

type dummy struct{ label string }

type foobar struct{ foo any }

// counted wraps a factory with an invocation counter.
func counted(calls *int, f Factory) Factory {
	return func(c *Context) (any, error) {
		*calls++
		return f(c)
	}
}

func stringFactories() Factories {
	return Factories{
		"foo": Value("F"),
		"bar": func(c *Context) (any, error) {
			foo, err := Get[string](c, "foo")
			if err != nil {
				return nil, err
			}
			return "B" + foo, nil
		},
	}
}

func TestBuildContextPassThrough(t *testing.T) {
	c, err := BuildContext(stringFactories(), nil)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}

	want := map[string]any{"foo": "F", "bar": "BF"}
	if got := c.Map(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSubstitutionFlowsIntoDependents(t *testing.T) {
	c, err := BuildContext(stringFactories(), Substitutions{"foo": "X"})
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}

	want := map[string]any{"foo": "X", "bar": "BX"}
	if got := c.Map(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestApplicationContextTopLevelObjects(t *testing.T) {
	defaultFoo, defaultBar, mockFoo := &dummy{"foo"}, &dummy{"bar"}, &dummy{"mock"}
	factories := Factories{
		"foo": Value(defaultFoo),
		"bar": Value(defaultBar),
	}

	t.Run("no substitution calls every factory", func(t *testing.T) {
		c, err := BuildApplicationContext(factories, nil)
		if err != nil {
			t.Fatalf("BuildApplicationContext failed: %v", err)
		}
		if MustGet[*dummy](c, "foo") != defaultFoo || MustGet[*dummy](c, "bar") != defaultBar {
			t.Errorf("unexpected context %v", c.Map())
		}
	})

	t.Run("substitute replaces the object", func(t *testing.T) {
		c, err := BuildApplicationContext(factories, Substitutions{"foo": mockFoo})
		if err != nil {
			t.Fatalf("BuildApplicationContext failed: %v", err)
		}
		if MustGet[*dummy](c, "foo") != mockFoo {
			t.Errorf("expected substitute, got %v", c.Map()["foo"])
		}
		if MustGet[*dummy](c, "bar") != defaultBar {
			t.Errorf("expected default bar, got %v", c.Map()["bar"])
		}
	})
}

func TestApplicationContextStubbedDependency(t *testing.T) {
	defaultFoo, mockFoo := &dummy{"foo"}, &dummy{"mock"}
	factories := Factories{
		"foo": Value(defaultFoo),
		"bar": func(c *Context) (any, error) {
			foo, err := c.Get("foo")
			if err != nil {
				return nil, err
			}
			return foobar{foo: foo}, nil
		},
	}

	c, err := BuildApplicationContext(factories, nil)
	if err != nil {
		t.Fatalf("BuildApplicationContext failed: %v", err)
	}
	if got := MustGet[foobar](c, "bar"); got.foo != defaultFoo {
		t.Errorf("expected default foo injected, got %v", got.foo)
	}

	c, err = BuildApplicationContext(factories, Substitutions{"foo": mockFoo})
	if err != nil {
		t.Fatalf("BuildApplicationContext failed: %v", err)
	}
	if got := MustGet[foobar](c, "bar"); got.foo != mockFoo {
		t.Errorf("expected substitute foo injected, got %v", got.foo)
	}
}

func TestSubstitutedFactoryNeverInvoked(t *testing.T) {
	builders := map[string]func(Factories, Substitutions) (*Context, error){
		"BuildContext":            func(f Factories, s Substitutions) (*Context, error) { return BuildContext(f, s) },
		"BuildApplicationContext": func(f Factories, s Substitutions) (*Context, error) { return BuildApplicationContext(f, s) },
		"BuildLazyContext": func(f Factories, s Substitutions) (*Context, error) {
			c := BuildLazyContext(f, s)
			_, err := c.Get("bar")
			return c, err
		},
	}

	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			fooCalls := 0
			factories := stringFactories()
			factories["foo"] = counted(&fooCalls, factories["foo"])

			c, err := build(factories, Substitutions{"foo": "X"})
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if fooCalls != 0 {
				t.Errorf("expected substituted factory never invoked, got %d calls", fooCalls)
			}
			if v, _ := c.Get("foo"); v != "X" {
				t.Errorf("expected substitute 'X', got %v", v)
			}
		})
	}
}

func TestZeroValueSubstitutionStillPreempts(t *testing.T) {
	calls := 0
	factories := Factories{"flag": counted(&calls, Value(true))}

	c, err := BuildContext(factories, Substitutions{"flag": false})
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected factory not invoked, got %d calls", calls)
	}
	if MustGet[bool](c, "flag") {
		t.Error("expected substituted false")
	}
}

func TestDiamondDependencyBuildsSharedOnce(t *testing.T) {
	defaultFoo := &dummy{"foo"}
	fooCalls := 0
	factories := Factories{
		"foo": counted(&fooCalls, Value(defaultFoo)),
		"bar": func(c *Context) (any, error) {
			foo, err := Get[*dummy](c, "foo")
			return map[string]*dummy{"foobar": foo}, err
		},
		"baz": func(c *Context) (any, error) {
			foo, err := Get[*dummy](c, "foo")
			return map[string]*dummy{"foobaz": foo}, err
		},
		"qux": func(c *Context) (any, error) {
			bar, err := c.Get("bar")
			if err != nil {
				return nil, err
			}
			baz, err := c.Get("baz")
			if err != nil {
				return nil, err
			}
			return []any{bar, baz}, nil
		},
	}

	c, err := BuildApplicationContext(factories, nil)
	if err != nil {
		t.Fatalf("BuildApplicationContext failed: %v", err)
	}
	if fooCalls != 1 {
		t.Errorf("expected foo constructed once, got %d", fooCalls)
	}

	bar := MustGet[map[string]*dummy](c, "bar")
	baz := MustGet[map[string]*dummy](c, "baz")
	if bar["foobar"] != defaultFoo || baz["foobaz"] != defaultFoo {
		t.Errorf("expected bar and baz to share foo, got %v and %v", bar["foobar"], baz["foobaz"])
	}

	qux := MustGet[[]any](c, "qux")
	if len(qux) != 2 {
		t.Fatalf("expected qux of length 2, got %d", len(qux))
	}
	if !reflect.DeepEqual(qux[0], bar) || !reflect.DeepEqual(qux[1], baz) {
		t.Errorf("expected qux to hold bar and baz, got %v", qux)
	}
}

func TestForcingOrderDoesNotChangeResult(t *testing.T) {
	calls := map[string]int{}
	track := func(name string, f Factory) Factory {
		return func(c *Context) (any, error) {
			calls[name]++
			return f(c)
		}
	}
	concat := func(deps ...string) Factory {
		return func(c *Context) (any, error) {
			var sb strings.Builder
			for _, d := range deps {
				sb.WriteString(MustGet[string](c, d))
			}
			return sb.String(), nil
		}
	}
	factories := Factories{
		"a": track("a", Value("a")),
		"b": track("b", concat("a")),
		"c": track("c", concat("a")),
		"d": track("d", concat("b", "c")),
	}

	orders := [][]string{
		{"a", "b", "c", "d"},
		{"d", "c", "b", "a"},
		{"c", "d", "a", "b"},
	}

	var first map[string]any
	for _, order := range orders {
		clear(calls)
		c := BuildLazyContext(factories, nil)
		if err := c.force(order); err != nil {
			t.Fatalf("force %v failed: %v", order, err)
		}
		for name, n := range calls {
			if n != 1 {
				t.Errorf("order %v: %s invoked %d times", order, name, n)
			}
		}
		got := c.Map()
		if first == nil {
			first = got
			continue
		}
		if !reflect.DeepEqual(first, got) {
			t.Errorf("order %v produced %v, expected %v", order, got, first)
		}
	}
	if first["d"] != "aa" {
		t.Errorf("expected d='aa', got %v", first["d"])
	}
}

func TestLazyContextDefersFactories(t *testing.T) {
	fooCalls, barCalls := 0, 0
	factories := Factories{
		"foo": counted(&fooCalls, Value("F")),
		"bar": counted(&barCalls, Value("B")),
	}

	c := BuildLazyContext(factories, nil)
	if fooCalls != 0 || barCalls != 0 {
		t.Fatalf("expected no factory invoked before reads, got foo=%d bar=%d", fooCalls, barCalls)
	}
	if c.Len() != 2 || !c.Has("foo") || !c.Has("bar") {
		t.Errorf("expected keys [bar foo], got %v", c.Keys())
	}

	if v, err := c.Get("foo"); err != nil || v != "F" {
		t.Fatalf("Get(foo) = %v, %v", v, err)
	}
	if fooCalls != 1 || barCalls != 0 {
		t.Errorf("expected only foo invoked, got foo=%d bar=%d", fooCalls, barCalls)
	}
	if !c.Realized("foo") || c.Realized("bar") {
		t.Error("expected foo realized and bar not")
	}
	if got := c.Map(); len(got) != 1 || got["foo"] != "F" {
		t.Errorf("expected only foo in realized map, got %v", got)
	}

	c.Get("foo")
	if fooCalls != 1 {
		t.Errorf("expected cached foo, got %d calls", fooCalls)
	}
}

func TestBuildContextIsEager(t *testing.T) {
	fooCalls, barCalls := 0, 0
	factories := Factories{
		"foo": counted(&fooCalls, Value("F")),
		"bar": counted(&barCalls, Value("B")),
	}

	c, err := BuildContext(factories, nil)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if fooCalls != 1 || barCalls != 1 {
		t.Errorf("expected both factories invoked once, got foo=%d bar=%d", fooCalls, barCalls)
	}
	if !c.Realized("foo") || !c.Realized("bar") {
		t.Error("expected every entry realized")
	}
}

func TestEmptyFactories(t *testing.T) {
	c, err := BuildContext(Factories{}, nil)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if c.Len() != 0 || len(c.Map()) != 0 {
		t.Errorf("expected empty context, got %v", c.Map())
	}
}

func TestSubstitutionsNotMutated(t *testing.T) {
	x := &dummy{"x"}
	subs := Substitutions{"foo": x}
	factories := Factories{
		"foo": Value(&dummy{"foo"}),
		"bar": Value(&dummy{"bar"}),
	}

	c, err := BuildApplicationContext(factories, subs)
	if err != nil {
		t.Fatalf("BuildApplicationContext failed: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("expected substitutions untouched, got %v", subs)
	}
	if _, ok := subs["bar"]; ok {
		t.Error("substitutions gained a 'bar' key")
	}
	if subs["foo"] != x {
		t.Error("substitutions 'foo' value changed")
	}

	subs["foo"] = &dummy{"later"}
	if MustGet[*dummy](c, "foo") != x {
		t.Error("context must not observe later changes to the caller's map")
	}
}

func TestApplicationContextKeepsSubstituteIdentity(t *testing.T) {
	x := &dummy{"x"}
	factories := Factories{
		"foo": func(*Context) (any, error) {
			t.Error("substituted factory invoked")
			return &dummy{"copy"}, nil
		},
	}

	c, err := BuildApplicationContext(factories, Substitutions{"foo": x})
	if err != nil {
		t.Fatalf("BuildApplicationContext failed: %v", err)
	}
	if c.Map()["foo"] != x {
		t.Errorf("expected the substitute itself, got %v", c.Map()["foo"])
	}
}

func TestExtraSubstitutionsStayOutOfKeys(t *testing.T) {
	factories := Factories{
		"foo": func(c *Context) (any, error) {
			return c.Get("port")
		},
	}

	c, err := BuildContext(factories, Substitutions{"port": 8080})
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if c.Has("port") {
		t.Error("extra substitution must not become a key")
	}
	if got := c.Map(); !reflect.DeepEqual(got, map[string]any{"foo": 8080}) {
		t.Errorf("unexpected context %v", got)
	}
}

func TestLookupErrorRaisedAtRead(t *testing.T) {
	readAttempted := false
	factories := Factories{
		"foo": Value("F"),
		"bar": func(c *Context) (any, error) {
			readAttempted = true
			return c.Get("missing")
		},
	}

	c := BuildLazyContext(factories, nil)
	if readAttempted {
		t.Fatal("lazy construction must not run factories")
	}
	if _, err := c.Get("foo"); err != nil {
		t.Fatalf("unrelated read failed: %v", err)
	}

	_, err := c.Get("bar")
	if !readAttempted {
		t.Fatal("expected bar's factory to run")
	}
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected *LookupError, got %T: %v", err, err)
	}
	if lookupErr.Name != "missing" || lookupErr.Requester != "bar" {
		t.Errorf("unexpected lookup error %+v", lookupErr)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound)")
	}
	if !strings.Contains(err.Error(), `read by "bar"`) {
		t.Errorf("expected requester in message, got %q", err.Error())
	}
}

func TestLookupErrorOutsideFactory(t *testing.T) {
	c := BuildLazyContext(Factories{}, nil)
	_, err := c.Get("nope")
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) || lookupErr.Requester != "" {
		t.Fatalf("expected top-level lookup error, got %v", err)
	}
}

func TestBuildContextAbortsOnLookupError(t *testing.T) {
	factories := Factories{
		"bar": func(c *Context) (any, error) { return c.Get("missing") },
	}
	c, err := BuildContext(factories, nil)
	if c != nil {
		t.Error("expected nil context on failure")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected lookup failure, got %v", err)
	}
}

func TestNilFactoryIsLookupError(t *testing.T) {
	factories := Factories{
		"foo": nil,
		"bar": func(c *Context) (any, error) { return c.Get("foo") },
	}

	t.Run("lazy", func(t *testing.T) {
		c := BuildLazyContext(factories, nil)
		_, err := c.Get("bar")
		var lookupErr *LookupError
		if !errors.As(err, &lookupErr) {
			t.Fatalf("expected *LookupError, got %v", err)
		}
		if lookupErr.Name != "foo" || lookupErr.Requester != "bar" {
			t.Errorf("unexpected lookup error %+v", lookupErr)
		}
	})

	t.Run("eager", func(t *testing.T) {
		c, err := BuildContext(factories, nil)
		if c != nil || !errors.Is(err, ErrNotFound) {
			t.Errorf("expected lookup failure, got %v, %v", c, err)
		}
	})

	t.Run("application", func(t *testing.T) {
		c, err := BuildApplicationContext(factories, nil)
		if c != nil || !errors.Is(err, ErrNotFound) {
			t.Errorf("expected lookup failure, got %v, %v", c, err)
		}
	})

	t.Run("substituted", func(t *testing.T) {
		c, err := BuildApplicationContext(factories, Substitutions{"foo": "X"})
		if err != nil {
			t.Fatalf("BuildApplicationContext failed: %v", err)
		}
		if got := MustGet[string](c, "foo"); got != "X" {
			t.Errorf("expected substitution, got %q", got)
		}
	})

	t.Run("observers not notified", func(t *testing.T) {
		obs := &recordingObserver{}
		c := BuildLazyContext(Factories{"foo": nil}, nil, WithObserver(obs))
		if _, err := c.Get("foo"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected lookup failure, got %v", err)
		}
		if len(obs.events) != 0 {
			t.Errorf("expected no observer events, got %v", obs.events)
		}
	})
}

func TestFactoryErrorPropagatesVerbatimAndRetries(t *testing.T) {
	errBoom := errors.New("boom")
	attempts := 0
	factories := Factories{
		"flaky": func(*Context) (any, error) {
			attempts++
			if attempts == 1 {
				return nil, errBoom
			}
			return "ok", nil
		},
		"dependent": func(c *Context) (any, error) {
			return c.Get("flaky")
		},
	}

	c := BuildLazyContext(factories, nil)
	_, err := c.Get("dependent")
	if err != errBoom {
		t.Fatalf("expected the factory error unchanged, got %v", err)
	}
	if c.Realized("flaky") || c.Realized("dependent") {
		t.Error("failed entries must stay unrealized")
	}

	v, err := c.Get("dependent")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if v != "ok" || attempts != 2 {
		t.Errorf("expected retry to build 'ok' on attempt 2, got %v after %d", v, attempts)
	}

	c.Get("flaky")
	if attempts != 2 {
		t.Errorf("expected success to be cached, got %d attempts", attempts)
	}
}

func TestEagerBuildReturnsFactoryError(t *testing.T) {
	errBoom := errors.New("boom")
	factories := Factories{
		"ok":  Value(1),
		"bad": func(*Context) (any, error) { return nil, errBoom },
	}

	if _, err := BuildContext(factories, nil); err != errBoom {
		t.Errorf("BuildContext: expected errBoom, got %v", err)
	}
	if _, err := BuildApplicationContext(factories, nil); err != errBoom {
		t.Errorf("BuildApplicationContext: expected errBoom, got %v", err)
	}
}

func TestPanickingFactoryLeavesEntryUnbuilt(t *testing.T) {
	factories := Factories{
		"p": func(*Context) (any, error) { panic("kaboom") },
	}
	c := BuildLazyContext(factories, nil)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic to propagate")
			}
		}()
		c.Get("p")
	}()

	if c.Realized("p") {
		t.Error("panicked entry must stay unrealized")
	}
	if len(c.building) != 0 {
		t.Errorf("expected empty build stack, got %v", c.building)
	}
}

func TestContextsDoNotShareCaches(t *testing.T) {
	calls := 0
	factories := Factories{"foo": counted(&calls, func(*Context) (any, error) {
		return &dummy{fmt.Sprint(calls)}, nil
	})}

	a, _ := BuildContext(factories, nil)
	b, _ := BuildContext(factories, nil)
	if calls != 2 {
		t.Errorf("expected one invocation per context, got %d", calls)
	}
	if a.Map()["foo"] == b.Map()["foo"] {
		t.Error("expected distinct instances per context")
	}
	if a.ID() == b.ID() || a.ID() == "" {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID(), b.ID())
	}
}

func TestWithLoggerTracesInvocations(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf)

	c, err := BuildContext(stringFactories(), Substitutions{"foo": "X"}, WithLogger(log))
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Substitution used") || !strings.Contains(out, "Factory invoked") {
		t.Errorf("expected trace messages, got %q", out)
	}
	if !strings.Contains(out, c.ID()) {
		t.Errorf("expected context id in logs, got %q", out)
	}
}

func TestInfoLoggerSkipsTraces(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: logger.FormatJSON}, "test", &buf)

	if _, err := BuildContext(stringFactories(), Substitutions{"foo": "X"}, WithLogger(log)); err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output above debug level, got %q", buf.String())
	}
}

func TestNoLoggerWritesNothing(t *testing.T) {
	c := BuildLazyContext(stringFactories(), nil, nil)
	if c.log != nil {
		t.Error("expected no logger by default")
	}
	if _, err := c.Get("bar"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
}

type event struct {
	kind, name, requester string
	err                   error
}

type recordingObserver struct {
	events []event
}

func (r *recordingObserver) FactoryStarted(name, requester string) {
	r.events = append(r.events, event{kind: "start", name: name, requester: requester})
}

func (r *recordingObserver) FactoryFinished(name string, _ time.Duration, err error) {
	r.events = append(r.events, event{kind: "finish", name: name, err: err})
}

func TestObserverSeesNestedInvocations(t *testing.T) {
	obs := &recordingObserver{}
	c := BuildLazyContext(stringFactories(), nil, WithObserver(obs), WithObserver(nil))

	if _, err := c.Get("bar"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := c.Get("bar"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	want := []event{
		{kind: "start", name: "bar"},
		{kind: "start", name: "foo", requester: "bar"},
		{kind: "finish", name: "foo"},
		{kind: "finish", name: "bar"},
	}
	if !reflect.DeepEqual(obs.events, want) {
		t.Errorf("unexpected events\n got: %+v\nwant: %+v", obs.events, want)
	}
}

func TestObserverSkipsSubstitutions(t *testing.T) {
	obs := &recordingObserver{}
	if _, err := BuildApplicationContext(stringFactories(), Substitutions{"foo": "X"}, WithObserver(obs)); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for _, e := range obs.events {
		if e.name == "foo" {
			t.Errorf("substituted name must not be observed, got %+v", e)
		}
	}
	if len(obs.events) != 2 {
		t.Errorf("expected start and finish for bar, got %+v", obs.events)
	}
}

func TestObserverSeesFailures(t *testing.T) {
	errBoom := errors.New("boom")
	obs := &recordingObserver{}
	c := BuildLazyContext(Factories{
		"bad":   func(*Context) (any, error) { return nil, errBoom },
		"panic": func(*Context) (any, error) { panic("kaboom") },
	}, nil, WithObserver(obs))

	_, _ = c.Get("bad")
	func() {
		defer func() { _ = recover() }()
		_, _ = c.Get("panic")
	}()

	if len(obs.events) != 4 {
		t.Fatalf("expected 4 events, got %+v", obs.events)
	}
	if obs.events[1].err != errBoom {
		t.Errorf("expected errBoom, got %v", obs.events[1].err)
	}
	if obs.events[3].err != errFactoryPanicked {
		t.Errorf("expected panic error, got %v", obs.events[3].err)
	}
}
