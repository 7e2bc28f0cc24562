package proverproxy

// Service bundles everything the RPC API needs: the registry and the
// static spec values reported by spec().
type Service struct {
	Registry   *Registry
	Poller     *Poller
	Version    string
	SDKVersion string
	ProgramKey func() string
}

func (s *Service) Spec() Spec {
	return Spec{Version: s.Version, ZKVMSDKVersion: s.SDKVersion, ProgramKey: s.ProgramKey()}
}
