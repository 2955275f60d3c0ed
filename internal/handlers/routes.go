package handlers

import "net/http"

// RegisterRoutes mounts every API endpoint on the mux. Method and path
// wildcards are matched by the standard library router.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	authn := Authenticator{Sessions: deps.Sessions, Users: deps.Users}

	users := UserHandler{
		Users:    deps.Users,
		History:  deps.History,
		Sessions: deps.Sessions,
		Media:    deps.Media,
		Limiter:  deps.AuthLimiter,
		TempDir:  deps.UploadTempDir,
	}
	videos := VideoHandler{
		Videos:  deps.Videos,
		History: deps.History,
		Media:   deps.Media,
		TempDir: deps.UploadTempDir,
	}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	likes := LikeHandler{
		Likes:    deps.Likes,
		Videos:   deps.Videos,
		Comments: deps.Comments,
		Tweets:   deps.Tweets,
	}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos}
	tweets := TweetHandler{Tweets: deps.Tweets, Users: deps.Users}
	dashboard := DashboardHandler{Stats: deps.Stats, Videos: deps.Videos}
	health := HealthHandler{Started: deps.Started}

	mux.HandleFunc("GET /api/v1/healthcheck", health.Check)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/logout", authn.Require(users.Logout))
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.RefreshToken)
	mux.HandleFunc("POST /api/v1/users/change-password", authn.Require(users.ChangePassword))
	mux.HandleFunc("GET /api/v1/users/current-user", authn.Require(users.CurrentUser))
	mux.HandleFunc("PATCH /api/v1/users/update-account", authn.Require(users.UpdateAccount))
	mux.HandleFunc("PATCH /api/v1/users/avatar", authn.Require(users.UpdateAvatar))
	mux.HandleFunc("PATCH /api/v1/users/cover-image", authn.Require(users.UpdateCoverImage))
	mux.HandleFunc("GET /api/v1/users/c/{username}", authn.Optional(users.ChannelProfile))
	mux.HandleFunc("GET /api/v1/users/history", authn.Require(users.WatchHistory))

	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.HandleFunc("POST /api/v1/videos", authn.Require(videos.Create))
	mux.HandleFunc("GET /api/v1/videos/{videoId}", authn.Optional(videos.Get))
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}", authn.Require(videos.Update))
	mux.HandleFunc("DELETE /api/v1/videos/{videoId}", authn.Require(videos.Delete))
	mux.HandleFunc("PATCH /api/v1/videos/toggle/publish/{videoId}", authn.Require(videos.TogglePublish))

	mux.HandleFunc("GET /api/v1/comments/{videoId}", comments.List)
	mux.HandleFunc("POST /api/v1/comments/{videoId}", authn.Require(comments.Create))
	mux.HandleFunc("PATCH /api/v1/comments/{commentId}", authn.Require(comments.Update))
	mux.HandleFunc("DELETE /api/v1/comments/{commentId}", authn.Require(comments.Delete))

	mux.HandleFunc("POST /api/v1/likes/toggle/v/{videoId}", authn.Require(likes.ToggleVideo))
	mux.HandleFunc("POST /api/v1/likes/toggle/c/{commentId}", authn.Require(likes.ToggleComment))
	mux.HandleFunc("POST /api/v1/likes/toggle/t/{tweetId}", authn.Require(likes.ToggleTweet))
	mux.HandleFunc("GET /api/v1/likes/videos", authn.Require(likes.LikedVideos))

	mux.HandleFunc("POST /api/v1/subscriptions/toggle/{channelId}", authn.Require(subscriptions.Toggle))
	mux.HandleFunc("GET /api/v1/subscriptions/channel/{channelId}", subscriptions.Subscribers)
	mux.HandleFunc("GET /api/v1/subscriptions/user/{subscriberId}", subscriptions.SubscribedChannels)

	mux.HandleFunc("POST /api/v1/playlists", authn.Require(playlists.Create))
	mux.HandleFunc("GET /api/v1/playlists/{playlistId}", playlists.Get)
	mux.HandleFunc("PATCH /api/v1/playlists/{playlistId}", authn.Require(playlists.Update))
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}", authn.Require(playlists.Delete))
	mux.HandleFunc("GET /api/v1/playlists/user/{userId}", playlists.ListForUser)
	mux.HandleFunc("PATCH /api/v1/playlists/add/{playlistId}/{videoId}", authn.Require(playlists.AddVideo))
	mux.HandleFunc("PATCH /api/v1/playlists/remove/{playlistId}/{videoId}", authn.Require(playlists.RemoveVideo))

	mux.HandleFunc("POST /api/v1/tweets", authn.Require(tweets.Create))
	mux.HandleFunc("GET /api/v1/tweets/user/{userId}", tweets.ListForUser)
	mux.HandleFunc("PATCH /api/v1/tweets/{tweetId}", authn.Require(tweets.Update))
	mux.HandleFunc("DELETE /api/v1/tweets/{tweetId}", authn.Require(tweets.Delete))

	mux.HandleFunc("GET /api/v1/dashboard/stats", authn.Require(dashboard.ChannelStats))
	mux.HandleFunc("GET /api/v1/dashboard/videos", authn.Require(dashboard.ChannelVideos))

	mux.HandleFunc("/", NotFound)
}
