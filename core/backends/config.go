package backends

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/FocuswithJustin/modelmgr/core/errors"
	"github.com/FocuswithJustin/modelmgr/internal/logging"
)

// Spec describes one entry of the backend priority list.
type Spec struct {
	Type   string         `yaml:"type" json:"type"`
	Name   string         `yaml:"name,omitempty" json:"name,omitempty"`
	Config map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
}

// Factory builds a backend from a Spec's name and config block.
type Factory func(name string, config map[string]any) (Backend, error)

var (
	typesMu sync.RWMutex
	types   = make(map[Kind]Factory)
)

// RegisterType makes a backend kind available to Configure. Registering the
// same kind twice replaces the earlier factory.
func RegisterType(kind Kind, factory Factory) {
	typesMu.Lock()
	defer typesMu.Unlock()
	types[kind] = factory
}

// RegisteredTypes returns the known backend kinds, sorted.
func RegisteredTypes() []Kind {
	typesMu.RLock()
	defer typesMu.RUnlock()

	kinds := make([]Kind, 0, len(types))
	for k := range types {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func lookupType(kind Kind) (Factory, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()
	f, ok := types[kind]
	return f, ok
}

// DefaultPriority is used when no priority list is configured.
func DefaultPriority() []Spec {
	return []Spec{{Type: string(KindLocal)}}
}

// Config holds the ordered list of configured load backends.
// Configure builds the list from the priority specs at most once until Reset.
type Config struct {
	mu         sync.Mutex
	priority   []Spec
	configured []Backend
	done       bool
	err        error
}

// NewConfig returns an unconfigured Config for the given priority list.
// A nil or empty list means DefaultPriority.
func NewConfig(priority []Spec) *Config {
	return &Config{priority: priority}
}

// ConfiguredLoadBackends returns a copy of the configured list, in order.
func (c *Config) ConfiguredLoadBackends() []Backend {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Backend, len(c.configured))
	copy(out, c.configured)
	return out
}

// Configure builds backends from the priority specs. Only the first call
// does any work; later calls return the first call's error.
func (c *Config) Configure() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return c.err
	}
	c.done = true

	priority := c.priority
	if len(priority) == 0 {
		priority = DefaultPriority()
	}

	built := make([]Backend, 0, len(priority))
	for i, spec := range priority {
		kind := Kind(strings.ToUpper(strings.TrimSpace(spec.Type)))
		factory, ok := lookupType(kind)
		if !ok {
			c.err = apperrors.NewNotFound("backend type", fmt.Sprintf("%s (priority %d)", spec.Type, i))
			return c.err
		}
		b, err := factory(spec.Name, spec.Config)
		if err != nil {
			c.err = apperrors.Wrapf(err, "configure backend %s", kind)
			return c.err
		}
		built = append(built, b)
	}

	c.configured = append(c.configured, built...)
	logging.Info("backends_configured", "count", len(c.configured), "order", kindsOf(c.configured))
	return nil
}

// Add appends already-built backends to the configured list. A non-empty
// list means the manager never calls Configure.
func (c *Config) Add(b ...Backend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configured = append(c.configured, b...)
}

// Reset drops the configured list so the next Configure runs again.
func (c *Config) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configured = nil
	c.done = false
	c.err = nil
}

func kindsOf(bs []Backend) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = string(b.Kind())
	}
	return out
}
