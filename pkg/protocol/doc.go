// Package protocol defines the abstract identity-provider RPC surface and
// the auth engine's error taxonomy. It holds no transport or SRP logic of
// its own — see pkg/srp and pkg/caldera for those.
package protocol

//go:generate go tool mockgen -destination=mock_identityprovider.go -package=protocol github.com/fzdarsky/caldera/pkg/protocol IdentityProvider
