// Package gate answers "may this user do that" from role profiles. A profile
// is a named set of "resource:action" permissions with wildcard support; the
// Checker resolves the caller's profile and tests one permission.
package gate

import "strings"

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView     Action = "view"
	ActionList     Action = "list"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDownload Action = "download"
)

// Permission represents an allowed action on a resource type, written
// "resource:action" (e.g. "devis:list", "reclamation:update").
type Permission string

// WildcardAll stands for any resource or any action.
const (
	WildcardAll                     = "*"
	PermissionSuperAdmin Permission = "*:*"
)

// NewPermission creates a permission from resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits a permission into resource type and action.
func (p Permission) Parse() (resourceType string, action Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return res, Action(act)
}

// Matches reports whether p grants requested. "*:*" grants everything and
// "devis:*" grants every devis action.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, _ := requested.Parse()
	return res != "" && res == reqRes && string(act) == WildcardAll
}
