package federated

import "context"

// AssertionProvider yields the opaque identity assertion that FederatedLogin
// exchanges with the backend. The provider is a capability outside the
// session core: the controller never sees it.
type AssertionProvider interface {
	Assertion(ctx context.Context) (string, error)
}
