package adapter

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Pool holds one adapter per system, constructed and connected on first use.
type Pool struct {
	reg  *Registry
	opts Options

	mu       sync.Mutex
	adapters map[string]Adapter
}

// NewPool creates a pool building adapters from reg with opts.
func NewPool(reg *Registry, opts Options) *Pool {
	return &Pool{reg: reg, opts: opts, adapters: make(map[string]Adapter)}
}

// Mode returns the mode adapters are built in.
func (p *Pool) Mode() Mode {
	if p.opts.Mode == "" {
		return ModeMock
	}
	return p.opts.Mode
}

// Get returns the connected adapter for system.
func (p *Pool) Get(ctx context.Context, system string) (Adapter, error) {
	system = strings.ToUpper(system)
	p.mu.Lock()
	defer p.mu.Unlock()
	if a, ok := p.adapters[system]; ok {
		if !a.Status().Connected {
			if err := a.Connect(ctx); err != nil {
				return nil, err
			}
		}
		return a, nil
	}
	a, err := p.reg.Open(ctx, system, p.opts)
	if err != nil {
		return nil, err
	}
	p.adapters[system] = a
	return a, nil
}

// Systems returns the identifiers the pool can build.
func (p *Pool) Systems() []string { return p.reg.Names() }

// Statuses reports every adapter built so far.
func (p *Pool) Statuses() []Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Status, 0, len(p.adapters))
	for _, name := range p.reg.Names() {
		if a, ok := p.adapters[name]; ok {
			out = append(out, a.Status())
		}
	}
	return out
}

// Close disconnects every adapter.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for _, a := range p.adapters {
		errs = append(errs, a.Disconnect(ctx))
	}
	return errors.Join(errs...)
}
