package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each layout
// store its own namespace in a shared cache:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mongo:dungeonbuilder:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ValidationKey(layoutHash string, opts ValidationKeyOpts) string {
	return k.prefix + k.inner.ValidationKey(layoutHash, opts)
}

func (k *ScopedKeyer) TreeKey(layoutHash string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(layoutHash, opts)
}
