// Package query turns a caller's visibility scope, filters, sort and page
// parameters into one predicate that every task store evaluates the same way.
package query

import "github.com/jaekwang-park/taskboard-api/internal/model"

// Scope restricts which tasks a caller may see. The zero value matches
// nothing, so a scope must always come from ScopeFor.
type Scope struct {
	unrestricted bool
	callerID     string
}

// ScopeFor derives the visibility scope of caller: admins see everything,
// everyone else sees tasks they created or were assigned.
func ScopeFor(caller model.Caller) Scope {
	if caller.IsAdmin() {
		return Scope{unrestricted: true}
	}
	return Scope{callerID: caller.ID}
}

func (s Scope) Unrestricted() bool {
	return s.unrestricted
}

// CallerID is empty for unrestricted scopes.
func (s Scope) CallerID() string {
	return s.callerID
}

// Allows reports whether a task is visible under s.
func (s Scope) Allows(t model.Task) bool {
	if s.unrestricted {
		return true
	}
	if s.callerID == "" {
		return false
	}
	return t.AssignedBy == s.callerID || t.AssignedTo == s.callerID
}
