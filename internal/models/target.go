package models

import "fmt"

type TargetKind string

const (
	TargetThread  TargetKind = "thread"
	TargetComment TargetKind = "comment"
	TargetUser    TargetKind = "user"
)

// Target is a closed sum over ThreadTarget, CommentTarget and UserTarget.
// Switches over it are expected to handle all three.
type Target interface {
	Kind() TargetKind
	TargetID() uint
	sealed()
}

type ThreadTarget struct{ ID uint }
type CommentTarget struct{ ID uint }
type UserTarget struct{ ID uint }

func (ThreadTarget) Kind() TargetKind  { return TargetThread }
func (CommentTarget) Kind() TargetKind { return TargetComment }
func (UserTarget) Kind() TargetKind    { return TargetUser }

func (t ThreadTarget) TargetID() uint  { return t.ID }
func (t CommentTarget) TargetID() uint { return t.ID }
func (t UserTarget) TargetID() uint    { return t.ID }

func (ThreadTarget) sealed()  {}
func (CommentTarget) sealed() {}
func (UserTarget) sealed()    {}

// IsContent reports whether the target is a thread or a comment.
func IsContent(t Target) bool {
	switch t.(type) {
	case ThreadTarget, CommentTarget:
		return true
	case UserTarget:
		return false
	default:
		panic(fmt.Sprintf("unhandled target %T", t))
	}
}

// NewTarget parses a stored (kind, id) pair.
func NewTarget(kind TargetKind, id uint) (Target, error) {
	switch kind {
	case TargetThread:
		return ThreadTarget{ID: id}, nil
	case TargetComment:
		return CommentTarget{ID: id}, nil
	case TargetUser:
		return UserTarget{ID: id}, nil
	default:
		return nil, fmt.Errorf("unknown target type %q", kind)
	}
}
