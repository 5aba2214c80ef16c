package docbase

import "fmt"

// PostRef identifies a post: either a PostID or a *Post.
type PostRef interface {
	isPostRef()
}

// PostID is the server assigned id of a post.
type PostID int64

func (PostID) isPostRef() {}
func (*Post) isPostRef()  {}

func resolvePostID(ref PostRef) (int64, error) {
	switch r := ref.(type) {
	case PostID:
		return int64(r), nil
	case *Post:
		if r == nil || r.ID == 0 {
			return 0, ErrNotPersisted
		}
		return r.ID, nil
	default:
		return 0, fmt.Errorf("unsupported post reference %T", ref)
	}
}

// CommentRef identifies a comment: either a CommentID, a Comment or a
// *Comment.
type CommentRef interface {
	isCommentRef()
}

// CommentID is the server assigned id of a comment.
type CommentID int64

func (CommentID) isCommentRef() {}
func (Comment) isCommentRef()   {}

func resolveCommentID(ref CommentRef) (int64, error) {
	switch r := ref.(type) {
	case CommentID:
		return int64(r), nil
	case Comment:
		if r.ID == 0 {
			return 0, ErrNotPersisted
		}
		return r.ID, nil
	case *Comment:
		if r == nil || r.ID == 0 {
			return 0, ErrNotPersisted
		}
		return r.ID, nil
	default:
		return 0, fmt.Errorf("unsupported comment reference %T", ref)
	}
}
