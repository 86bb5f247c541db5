// Package directory implements the explicit-accessor User/Group value types
// that front the IDP's admin surface (protocol.IdentityProvider). Unlike a
// dynamic attribute bag, every promoted field has a named getter; anything
// the IDP returns that isn't promoted stays in the Attributes map.
package directory

import (
	"context"
	"fmt"

	"github.com/fzdarsky/caldera/pkg/protocol"
)

// User is a directory entry returned by GetUser/AdminGetUser. Mutating
// methods (Save, Delete) dispatch through idp rather than
// mutating local state first — a caller that doesn't call Save never
// affects the server.
type User struct {
	idp        protocol.IdentityProvider
	userPoolID string
	admin      bool

	username   string
	sub        string
	attributes map[string]string
	enabled    bool
	status     string

	dirty map[string]string
}

const (
	attrSub           = "sub"
	attrEmailVerified = "email_verified"
)

func newUser(idp protocol.IdentityProvider, userPoolID string, admin bool, out *protocol.GetUserOutput) *User {
	attrs := make(map[string]string, len(out.Attributes))
	for k, v := range out.Attributes {
		attrs[k] = v
	}
	sub := attrs[attrSub]
	delete(attrs, attrSub)

	return &User{
		idp:        idp,
		userPoolID: userPoolID,
		admin:      admin,
		username:   out.Username,
		sub:        sub,
		attributes: attrs,
		enabled:    out.Enabled,
		status:     out.UserStatus,
		dirty:      make(map[string]string),
	}
}

// GetUser fetches the caller's own profile using an access token.
func GetUser(ctx context.Context, idp protocol.IdentityProvider, accessToken string) (*User, error) {
	out, err := idp.GetUser(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("directory: get user: %w", err)
	}
	return newUser(idp, "", false, out), nil
}

// AdminGetUser fetches a user's profile via the admin surface, keyed by
// user pool rather than an access token.
func AdminGetUser(ctx context.Context, idp protocol.IdentityProvider, userPoolID, username string) (*User, error) {
	out, err := idp.AdminGetUser(ctx, userPoolID, username)
	if err != nil {
		return nil, fmt.Errorf("directory: admin get user %q: %w", username, err)
	}
	return newUser(idp, userPoolID, true, out), nil
}

// Username returns the IDP's canonical username for this entry.
func (u *User) Username() string { return u.username }

// Sub returns the IDP's stable subject identifier.
func (u *User) Sub() string { return u.sub }

// Enabled reports whether the account accepts new authentications.
func (u *User) Enabled() bool { return u.enabled }

// Status returns the IDP's user-status enum (e.g. CONFIRMED,
// FORCE_CHANGE_PASSWORD, ARCHIVED).
func (u *User) Status() string { return u.status }

// EmailVerified reports whether the email_verified attribute is "true".
func (u *User) EmailVerified() bool {
	return u.attributes[attrEmailVerified] == "true"
}

// Attribute returns a custom or standard attribute by name, distinguishing
// "not present" (ok == false) from "present but empty".
func (u *User) Attribute(name string) (value string, ok bool) {
	if v, staged := u.dirty[name]; staged {
		return v, true
	}
	v, ok := u.attributes[name]
	return v, ok
}

// SetAttribute stages an attribute change; it has no effect on the server
// until Save is called.
func (u *User) SetAttribute(name, value string) {
	u.dirty[name] = value
}

// Save pushes staged attribute changes to the IDP via UpdateUserAttributes.
// It is a no-op (and does not round-trip) if nothing is dirty.
func (u *User) Save(ctx context.Context, accessToken string) error {
	if len(u.dirty) == 0 {
		return nil
	}
	if u.admin {
		return fmt.Errorf("directory: save: admin-fetched users cannot self-update attributes; use UpdateUserAttributes directly")
	}
	if err := u.idp.UpdateUserAttributes(ctx, accessToken, u.dirty); err != nil {
		return fmt.Errorf("directory: save user %q: %w", u.username, err)
	}
	for k, v := range u.dirty {
		u.attributes[k] = v
	}
	u.dirty = make(map[string]string)
	return nil
}

// Delete removes the user from the directory via AdminDeleteUser.
func (u *User) Delete(ctx context.Context) error {
	if err := u.idp.AdminDeleteUser(ctx, u.userPoolID, u.username); err != nil {
		return fmt.Errorf("directory: delete user %q: %w", u.username, err)
	}
	return nil
}

// CreateUser provisions a new user via AdminCreateUser and returns its
// freshly fetched profile.
func CreateUser(ctx context.Context, idp protocol.IdentityProvider, userPoolID, username string, attributes map[string]string) (*User, error) {
	if err := idp.AdminCreateUser(ctx, userPoolID, username, attributes); err != nil {
		return nil, fmt.Errorf("directory: create user %q: %w", username, err)
	}
	return AdminGetUser(ctx, idp, userPoolID, username)
}

// ChangePassword changes the caller's own password via the self-service
// surface; it requires the current access token and the previous password.
func ChangePassword(ctx context.Context, idp protocol.IdentityProvider, accessToken, previousPassword, proposedPassword string) error {
	if err := idp.ChangePassword(ctx, accessToken, previousPassword, proposedPassword); err != nil {
		return fmt.Errorf("directory: change password: %w", err)
	}
	return nil
}
