package directory

import (
	"context"
	"fmt"

	"github.com/fzdarsky/caldera/pkg/protocol"
)

// Group is a user-pool group. Groups are read-only from this library's
// surface — the IDP's admin API this engine fronts exposes ListGroups only,
// not group creation/deletion, so Group carries no Save/Delete methods.
type Group struct {
	name             string
	description      string
	precedence       int
	roleArn          string
	creationDate     string
	lastModifiedDate string
}

func newGroup(out protocol.GroupOutput) *Group {
	return &Group{
		name:             out.GroupName,
		description:      out.Description,
		precedence:       out.Precedence,
		roleArn:          out.RoleArn,
		creationDate:     out.CreationDate,
		lastModifiedDate: out.LastModifiedDate,
	}
}

// Name returns the group's name.
func (g *Group) Name() string { return g.name }

// Description returns the group's description, if any.
func (g *Group) Description() string { return g.description }

// Precedence returns the group's precedence (lower values take priority
// when a user belongs to multiple groups with conflicting IAM roles).
func (g *Group) Precedence() int { return g.precedence }

// RoleArn returns the IAM role ARN associated with the group, if any.
func (g *Group) RoleArn() string { return g.roleArn }

// CreationDate returns the IDP-reported creation timestamp, verbatim.
func (g *Group) CreationDate() string { return g.creationDate }

// LastModifiedDate returns the IDP-reported last-modified timestamp,
// verbatim.
func (g *Group) LastModifiedDate() string { return g.lastModifiedDate }

// ListGroups returns every group defined in the user pool.
func ListGroups(ctx context.Context, idp protocol.IdentityProvider, userPoolID string) ([]*Group, error) {
	out, err := idp.ListGroups(ctx, userPoolID)
	if err != nil {
		return nil, fmt.Errorf("directory: list groups: %w", err)
	}
	groups := make([]*Group, 0, len(out))
	for _, g := range out {
		groups = append(groups, newGroup(g))
	}
	return groups, nil
}
