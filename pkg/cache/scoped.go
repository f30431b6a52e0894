package cache

// ScopedKeyer prefixes every derived key, isolating namespaces when one
// backend serves several deployments (for example per-network archives
// sharing a Redis instance).
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner so all keys carry prefix. A nil inner
// falls back to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SoundingKey(data []byte) string {
	return k.prefix + k.inner.SoundingKey(data)
}

func (k *ScopedKeyer) DiagramKey(soundingHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(soundingHash, opts)
}
