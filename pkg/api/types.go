package api

import (
	"time"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/comments"
	"github.com/npsexplorer/explorer/pkg/favorites"
	"github.com/npsexplorer/explorer/pkg/sanitize"
)

// LoginResponse is the body of a successful login
type LoginResponse struct {
	AuthToken string `json:"authToken"`
}

// UserRequest is the body of POST and PATCH /api/users. Nil fields are absent.
type UserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Nickname  *string `json:"nickname"`
	HomeState *string `json:"homeState"`
}

// UserResponse is the public form of an account. It never carries the password.
type UserResponse struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Nickname    *string   `json:"nickname"`
	HomeState   *string   `json:"homeState"`
	DateCreated time.Time `json:"dateCreated"`
}

// CommentRequest is the body of POST and PATCH /api/comments
type CommentRequest struct {
	CommentText *string `json:"commentText"`
	ParkCode    *string `json:"parkCode"`
}

// CommentResponse is the public form of a comment
type CommentResponse struct {
	ID            int64     `json:"id"`
	CommentText   string    `json:"commentText"`
	ParkCode      string    `json:"parkCode"`
	AuthorID      int64     `json:"authorId"`
	AuthorName    string    `json:"authorName"`
	DateSubmitted time.Time `json:"dateSubmitted"`
}

// FavoriteRequest is the body of POST and PATCH /api/favorites
type FavoriteRequest struct {
	ParkCode *string `json:"parkCode"`
	Favorite *bool   `json:"favorite"`
}

// FavoriteResponse is the public form of a favorite
type FavoriteResponse struct {
	ID          int64  `json:"id"`
	UserAccount int64  `json:"userAccount"`
	ParkCode    string `json:"parkCode"`
	Favorite    bool   `json:"favorite"`
}

// serializer turns stored records into sanitized responses
type serializer struct {
	s *sanitize.Sanitizer
}

func (z serializer) user(acc *auth.Account) UserResponse {
	return UserResponse{
		ID:          acc.ID,
		FirstName:   z.s.String(acc.FirstName),
		LastName:    z.s.String(acc.LastName),
		Email:       z.s.String(acc.Email),
		Nickname:    z.s.Ptr(acc.Nickname),
		HomeState:   z.s.Ptr(acc.HomeState),
		DateCreated: acc.DateCreated,
	}
}

func (z serializer) userList(accounts []*auth.Account) []UserResponse {
	out := make([]UserResponse, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, z.user(acc))
	}
	return out
}

func (z serializer) comment(c *comments.Comment) CommentResponse {
	return CommentResponse{
		ID:            c.ID,
		CommentText:   z.s.String(c.CommentText),
		ParkCode:      z.s.String(c.ParkCode),
		AuthorID:      c.AuthorID,
		AuthorName:    z.s.String(c.AuthorName),
		DateSubmitted: c.DateSubmitted,
	}
}

func (z serializer) commentList(list []*comments.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(list))
	for _, c := range list {
		out = append(out, z.comment(c))
	}
	return out
}

func (z serializer) favorite(f *favorites.Favorite) FavoriteResponse {
	return FavoriteResponse{
		ID:          f.ID,
		UserAccount: f.UserAccount,
		ParkCode:    z.s.String(f.ParkCode),
		Favorite:    f.Favorite,
	}
}

func (z serializer) favoriteList(list []*favorites.Favorite) []FavoriteResponse {
	out := make([]FavoriteResponse, 0, len(list))
	for _, f := range list {
		out = append(out, z.favorite(f))
	}
	return out
}
