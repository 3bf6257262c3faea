package post

import "github.com/ArthurDelaporte/Yatube-Back/internal/user"

// Access is the outcome of an authorization check on a post.
type Access int

const (
	AccessOK Access = iota
	AccessUnauthenticated
	AccessForbidden
)

func (a Access) String() string {
	switch a {
	case AccessOK:
		return "ok"
	case AccessUnauthenticated:
		return "unauthenticated"
	case AccessForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// CanEdit allows only the post's author.
func CanEdit(viewer *user.User, p *Post) Access {
	switch {
	case viewer == nil:
		return AccessUnauthenticated
	case viewer.ID != p.AuthorID:
		return AccessForbidden
	default:
		return AccessOK
	}
}
