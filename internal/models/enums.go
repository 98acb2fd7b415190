package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownValue = errors.New("unknown value")

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleArchivist Role = "archivist"
	RoleViewer    Role = "viewer"
)

var AllRoles = []Role{RoleAdmin, RoleArchivist, RoleViewer}

type Permission string

const (
	PermissionRead   Permission = "read"
	PermissionWrite  Permission = "write"
	PermissionManage Permission = "manage"
)

var RolePermissions = map[Role][]Permission{
	RoleAdmin:     {PermissionRead, PermissionWrite, PermissionManage},
	RoleArchivist: {PermissionRead, PermissionWrite},
	RoleViewer:    {PermissionRead},
}

// Can reports whether the role grants the permission. Unknown roles grant
// nothing.
func (r Role) Can(p Permission) bool {
	for _, granted := range RolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleArchivist, RoleViewer:
		return r, nil
	}
	return "", fmt.Errorf("role %q: %w", s, ErrUnknownValue)
}

type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusArchived Status = "archived"
)

var AllStatuses = []Status{StatusActive, StatusPending, StatusArchived}

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusPending, StatusArchived:
		return st, nil
	}
	return "", fmt.Errorf("status %q: %w", s, ErrUnknownValue)
}

type Category string

const (
	CategoryLegal          Category = "legal"
	CategoryFinancial      Category = "financial"
	CategoryAdministrative Category = "administrative"
	CategoryCivil          Category = "civil"
	CategoryCriminal       Category = "criminal"
	CategoryCommercial     Category = "commercial"
	CategoryFamily         Category = "family"
)

var AllCategories = []Category{
	CategoryLegal,
	CategoryFinancial,
	CategoryAdministrative,
	CategoryCivil,
	CategoryCriminal,
	CategoryCommercial,
	CategoryFamily,
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("category %q: %w", s, ErrUnknownValue)
}
