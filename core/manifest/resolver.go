package manifest

import "sync"

// Resolver parses one directory's manifest lazily and at most once.
// The outcome, success or failure, is remembered.
type Resolver struct {
	parser Parser
	dir    string

	once   sync.Once
	desc   *Descriptor
	err    error
	parsed int
}

// NewResolver returns a Resolver for dir. A nil parser means Default.
func NewResolver(parser Parser, dir string) *Resolver {
	if parser == nil {
		parser = Default
	}
	return &Resolver{parser: parser, dir: dir}
}

// Descriptor parses the manifest on the first call and returns the cached
// result afterwards.
func (r *Resolver) Descriptor() (*Descriptor, error) {
	r.once.Do(func() {
		r.parsed++
		r.desc, r.err = r.parser.Parse(r.dir)
	})
	return r.desc, r.err
}

// Resolved reports whether the manifest has been parsed.
func (r *Resolver) Resolved() bool { return r.parsed > 0 }

// ModuleID returns the parsed module id, or "" if not yet resolved or
// parsing failed.
func (r *Resolver) ModuleID() string {
	if !r.Resolved() || r.desc == nil {
		return ""
	}
	return r.desc.ModuleID
}

// Parsed returns how many times the parser ran (0 or 1).
func (r *Resolver) Parsed() int { return r.parsed }
