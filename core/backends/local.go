package backends

// LocalBackend runs module implementations in process. It is per-module:
// loading goes through the Implementation registered for KindLocal.
type LocalBackend struct {
	name string
}

// NewLocalBackend returns a LOCAL backend. An empty name defaults to the kind.
func NewLocalBackend(name string) *LocalBackend {
	if name == "" {
		name = string(KindLocal)
	}
	return &LocalBackend{name: name}
}

// Kind returns KindLocal.
func (b *LocalBackend) Kind() Kind { return KindLocal }

// Name returns the configured instance name.
func (b *LocalBackend) Name() string { return b.name }

func newLocalFromSpec(name string, _ map[string]any) (Backend, error) {
	return NewLocalBackend(name), nil
}

func init() {
	RegisterType(KindLocal, newLocalFromSpec)
}
