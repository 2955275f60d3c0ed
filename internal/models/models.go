package models

import "time"

// User represents an account on the VidTube platform. The password hash and
// refresh token never leave the server.
type User struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	FullName         string     `json:"fullName"`
	Password         string     `json:"-"`
	AvatarURL        string     `json:"avatar"`
	CoverURL         string     `json:"coverImage"`
	RefreshToken     string     `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Public returns the projection of a user embedded in owned resources.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
	}
}

// PublicUser is the small owner projection attached to videos, comments,
// tweets and subscription listings.
type PublicUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// Video is an uploaded video and its playback metadata. Owner is populated by
// queries that join the owning user.
type Video struct {
	ID           string      `json:"id"`
	OwnerID      string      `json:"ownerId"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	VideoURL     string      `json:"videoFile"`
	ThumbnailURL string      `json:"thumbnail"`
	Duration     float64     `json:"duration"`
	Views        int64       `json:"views"`
	Published    bool        `json:"isPublished"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Owner        *PublicUser `json:"owner,omitempty"`
}

// VideoFilter narrows and orders video listings.
type VideoFilter struct {
	Query         string
	OwnerID       string
	PublishedOnly bool
	SortBy        string
	SortAsc       bool
	Page          int
	Limit         int
}

// Comment is a user comment attached to a video.
type Comment struct {
	ID        string      `json:"id"`
	VideoID   string      `json:"video"`
	OwnerID   string      `json:"ownerId"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Owner     *PublicUser `json:"owner,omitempty"`
}

// Like records a user liking exactly one of a video, comment or tweet. Empty
// target fields map to NULL columns.
type Like struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video,omitempty"`
	CommentID string    `json:"comment,omitempty"`
	TweetID   string    `json:"tweet,omitempty"`
	LikedBy   string    `json:"likedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Subscription links a subscriber to a channel; both ends are users.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Playlist is an owner-curated collection of videos without duplicates.
type Playlist struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"ownerId"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Owner       *PublicUser `json:"owner,omitempty"`
	Videos      []Video     `json:"videos"`
}

// Tweet is a short text post by a user.
type Tweet struct {
	ID        string      `json:"id"`
	OwnerID   string      `json:"ownerId"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Owner     *PublicUser `json:"owner,omitempty"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// ChannelProfile is the public channel page for a user, with counts computed
// against the subscriptions collection.
type ChannelProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	AvatarURL         string `json:"avatar"`
	CoverURL          string `json:"coverImage"`
	SubscriberCount   int64  `json:"subscribersCount"`
	SubscribedToCount int64  `json:"channelsSubscribedToCount"`
	Subscribed        bool   `json:"isSubscribed"`
}

// ChannelStats aggregates a channel's dashboard counters.
type ChannelStats struct {
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalComments    int64 `json:"totalComments"`
}
