package di

// Key is a name bound to the type of the value stored under it.
//
//	var FileSystem di.Key[afero.Fs] = "fileSystem"
//
//	fs, err := FileSystem.Get(c)
type Key[T any] string

// Name returns the key as a plain name.
func (k Key[T]) Name() string { return string(k) }

// Get resolves the key with type safety.
func (k Key[T]) Get(c *Context) (T, error) { return Get[T](c, string(k)) }

// MustGet resolves the key and panics on any error.
func (k Key[T]) MustGet(c *Context) T { return MustGet[T](c, string(k)) }

// Bind registers fn as the key's factory in f.
func (k Key[T]) Bind(f Factories, fn func(c *Context) (T, error)) {
	f[string(k)] = Provide(fn)
}

// Substitute stores v as the key's substitution in s.
func (k Key[T]) Substitute(s Substitutions, v T) {
	s[string(k)] = v
}
