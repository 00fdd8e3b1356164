// Package inject provides function-backed fakes of the slopescan collaborator interfaces.
package inject

import (
	"go.viam.com/slopescan/fragment"
)

// Provider is an injectable geometry provider. Unset funcs fall through to the embedded Provider.
type Provider struct {
	fragment.Provider
	SubscribeFunc             func(handler func(fragment.MeshesChanged)) func()
	SetAcquisitionEnabledFunc func(enabled bool)
}

// NewProvider returns a Provider backed by a fragment.Feed.
func NewProvider() *Provider {
	return &Provider{Provider: fragment.NewFeed()}
}

// Subscribe calls the injected Subscribe or the real version.
func (p *Provider) Subscribe(handler func(fragment.MeshesChanged)) func() {
	if p.SubscribeFunc == nil {
		return p.Provider.Subscribe(handler)
	}
	return p.SubscribeFunc(handler)
}

// SetAcquisitionEnabled calls the injected SetAcquisitionEnabled or the real version.
func (p *Provider) SetAcquisitionEnabled(enabled bool) {
	if p.SetAcquisitionEnabledFunc == nil {
		p.Provider.SetAcquisitionEnabled(enabled)
		return
	}
	p.SetAcquisitionEnabledFunc(enabled)
}
