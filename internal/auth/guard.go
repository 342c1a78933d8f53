package auth

import (
	"github.com/hugh/go-projects/internal/database/models"
)

type ResourceKind string

const (
	ResourceProject  ResourceKind = "project"
	ResourceDocument ResourceKind = "document"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// Decision is the outcome of an access check. The zero value denies.
type Decision int

const (
	Forbidden Decision = iota
	Allowed
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case NotFound:
		return "not_found"
	default:
		return "forbidden"
	}
}

// Err maps a denial to ErrForbidden or ErrNotFound, and Allowed to nil.
func (d Decision) Err() error {
	switch d {
	case Allowed:
		return nil
	case NotFound:
		return ErrNotFound
	default:
		return ErrForbidden
	}
}

type role int

const (
	roleStranger role = iota
	roleParticipant
	roleOwner
)

// policy holds the weakest role allowed to perform each action. Documents
// inherit from their parent project and are owner-only.
var policy = map[ResourceKind]map[Action]role{
	ResourceProject: {
		ActionRead:   roleParticipant,
		ActionWrite:  roleOwner,
		ActionDelete: roleOwner,
	},
	ResourceDocument: {
		ActionRead:   roleOwner,
		ActionWrite:  roleOwner,
		ActionDelete: roleOwner,
	},
}

func roleOf(user *models.User, project *models.Project) role {
	switch {
	case project.IsOwner(user.ID):
		return roleOwner
	case project.HasParticipant(user.ID):
		return roleParticipant
	default:
		return roleStranger
	}
}

// Authorize decides whether user may perform action on a resource governed by
// project. A nil project is NotFound regardless of who asks; existence is
// always settled before permission.
func Authorize(user *models.User, project *models.Project, kind ResourceKind, action Action) Decision {
	if project == nil {
		return NotFound
	}
	if user == nil {
		return Forbidden
	}

	required, ok := policy[kind][action]
	if !ok {
		return Forbidden
	}

	if roleOf(user, project) >= required {
		return Allowed
	}
	return Forbidden
}
