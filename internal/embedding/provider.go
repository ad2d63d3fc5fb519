package embedding

import (
	"sync"

	"pdf-rag/internal/config"
)

// Provider owns the process-wide embedder. Model setup is expensive, so it
// runs exactly once on first use and the result is shared for the process
// lifetime; concurrent first callers are serialized by sync.Once.
type Provider struct {
	cfg  *config.LLMConfig
	once sync.Once

	embedder Embedder
	err      error
}

func NewProvider(cfg *config.LLMConfig) *Provider {
	return &Provider{cfg: cfg}
}

// Get returns the shared embedder, initializing it on first call. A failed
// initialization is sticky: every caller sees the same error.
func (p *Provider) Get() (Embedder, error) {
	p.once.Do(func() {
		p.embedder, p.err = FromConfig(p.cfg)
	})
	return p.embedder, p.err
}
