package models

type PostAuthor struct {
	ID           string
	Name         string
	ProfileImage *Media
}

type Post struct {
	ID        string
	UserID    string
	Caption   string
	Type      string
	CreatedAt int64 // epoch milliseconds
	Image     *Media
	Video     *Media
	Likers    []string
	Comments  []string
	Shares    []string
	Author    PostAuthor
}

func (p Post) LikedBy(userID string) bool {
	for _, id := range p.Likers {
		if id == userID {
			return true
		}
	}
	return false
}

type LikeState string

const (
	LikeStateLiked   LikeState = "liked"
	LikeStateUnliked LikeState = "unliked"
)
