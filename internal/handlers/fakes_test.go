package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type fakeUserStore struct {
	users    map[string]models.User
	err      error
	profiles map[string]models.ChannelProfile
	history  []models.Video
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	if s.err != nil {
		return models.User{}, s.err
	}
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByLogin(_ context.Context, identifier string) (models.User, error) {
	if s.err != nil {
		return models.User{}, s.err
	}
	for _, user := range s.users {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) Update(_ context.Context, user models.User) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) ChannelProfile(_ context.Context, username, _ string) (models.ChannelProfile, error) {
	if s.err != nil {
		return models.ChannelProfile{}, s.err
	}
	profile, ok := s.profiles[username]
	if !ok {
		return models.ChannelProfile{}, repositories.ErrNotFound
	}
	return profile, nil
}

type watchRecord struct {
	userID  string
	videoID string
}

type fakeHistoryStore struct {
	videos  []models.Video
	watches []watchRecord
	err     error
}

func (s *fakeHistoryStore) RecordWatch(_ context.Context, userID, videoID string) error {
	if s.err != nil {
		return s.err
	}
	s.watches = append(s.watches, watchRecord{userID: userID, videoID: videoID})
	return nil
}

func (s *fakeHistoryStore) WatchHistory(_ context.Context, _ string, page, limit int) ([]models.Video, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return paginateVideos(s.videos, page, limit), int64(len(s.videos)), nil
}

type fakeSessionManager struct {
	issued    models.SessionTokens
	issueErr  error
	refreshed models.User
	verifyID  string
	verifyErr error
	revoked   []string
}

func (m *fakeSessionManager) Issue(_ context.Context, _ models.User) (models.SessionTokens, error) {
	return m.issued, m.issueErr
}

func (m *fakeSessionManager) Refresh(_ context.Context, token string) (models.User, models.SessionTokens, error) {
	if token != m.issued.RefreshToken {
		return models.User{}, models.SessionTokens{}, auth.ErrSessionNotFound
	}
	return m.refreshed, m.issued, nil
}

func (m *fakeSessionManager) Revoke(_ context.Context, userID string) {
	m.revoked = append(m.revoked, userID)
}

func (m *fakeSessionManager) Verify(_ string) (string, error) {
	return m.verifyID, m.verifyErr
}

type fakeVideoStore struct {
	videos map[string]models.Video
	err    error
}

func newFakeVideoStore(videos ...models.Video) *fakeVideoStore {
	s := &fakeVideoStore{videos: make(map[string]models.Video)}
	for _, v := range videos {
		s.videos[v.ID] = v
	}
	return s
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	if s.err != nil {
		return s.err
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	if s.err != nil {
		return models.Video{}, s.err
	}
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) List(_ context.Context, filter models.VideoFilter) ([]models.Video, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	var matched []models.Video
	for _, video := range s.videos {
		if filter.PublishedOnly && !video.Published {
			continue
		}
		if filter.OwnerID != "" && video.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(video.Title), strings.ToLower(filter.Query)) {
			continue
		}
		matched = append(matched, video)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginateVideos(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (s *fakeVideoStore) Update(_ context.Context, video models.Video) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

type fakeCommentStore struct {
	comments map[string]models.Comment
	err      error
}

func newFakeCommentStore(comments ...models.Comment) *fakeCommentStore {
	s := &fakeCommentStore{comments: make(map[string]models.Comment)}
	for _, c := range comments {
		s.comments[c.ID] = c
	}
	return s
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	if s.err != nil {
		return s.err
	}
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	if s.err != nil {
		return models.Comment{}, s.err
	}
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *fakeCommentStore) ListForVideo(_ context.Context, videoID string, _, _ int) ([]models.Comment, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	var matched []models.Comment
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			matched = append(matched, comment)
		}
	}
	return matched, int64(len(matched)), nil
}

func (s *fakeCommentStore) Update(_ context.Context, comment models.Comment) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.comments[comment.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

// fakeLikeStore mirrors the store-level toggle contract: at most one row per
// (principal, target), insert reports true, delete reports false.
type fakeLikeStore struct {
	active map[string]models.Like
	videos []models.Video
	err    error
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{active: make(map[string]models.Like)}
}

func likeKey(like models.Like) string {
	return like.LikedBy + "|" + like.VideoID + "|" + like.CommentID + "|" + like.TweetID
}

func (s *fakeLikeStore) Toggle(_ context.Context, like models.Like) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	key := likeKey(like)
	if _, ok := s.active[key]; ok {
		delete(s.active, key)
		return false, nil
	}
	s.active[key] = like
	return true, nil
}

func (s *fakeLikeStore) LikedVideos(_ context.Context, _ string, page, limit int) ([]models.Video, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return paginateVideos(s.videos, page, limit), int64(len(s.videos)), nil
}

type fakeSubscriptionStore struct {
	active      map[string]models.Subscription
	subscribers []models.PublicUser
	channels    []models.PublicUser
	err         error
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{active: make(map[string]models.Subscription)}
}

func (s *fakeSubscriptionStore) Toggle(_ context.Context, sub models.Subscription) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	key := sub.SubscriberID + "|" + sub.ChannelID
	if _, ok := s.active[key]; ok {
		delete(s.active, key)
		return false, nil
	}
	s.active[key] = sub
	return true, nil
}

func (s *fakeSubscriptionStore) Subscribers(_ context.Context, _ string, _, _ int) ([]models.PublicUser, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.subscribers, int64(len(s.subscribers)), nil
}

func (s *fakeSubscriptionStore) Subscriptions(_ context.Context, _ string, _, _ int) ([]models.PublicUser, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.channels, int64(len(s.channels)), nil
}

type fakePlaylistStore struct {
	playlists map[string]models.Playlist
	members   map[string][]string
	err       error
}

func newFakePlaylistStore(playlists ...models.Playlist) *fakePlaylistStore {
	s := &fakePlaylistStore{
		playlists: make(map[string]models.Playlist),
		members:   make(map[string][]string),
	}
	for _, p := range playlists {
		s.playlists[p.ID] = p
	}
	return s
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	if s.err != nil {
		return s.err
	}
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	if s.err != nil {
		return models.Playlist{}, s.err
	}
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	if playlist.Videos == nil {
		playlist.Videos = []models.Video{}
	}
	return playlist, nil
}

func (s *fakePlaylistStore) ListForUser(_ context.Context, userID string) ([]models.Playlist, error) {
	if s.err != nil {
		return nil, s.err
	}
	var matched []models.Playlist
	for _, playlist := range s.playlists {
		if playlist.OwnerID == userID {
			matched = append(matched, playlist)
		}
	}
	return matched, nil
}

func (s *fakePlaylistStore) Update(_ context.Context, playlist models.Playlist) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.playlists[playlist.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.members[playlistID] {
		if existing == videoID {
			return repositories.ErrConflict
		}
	}
	s.members[playlistID] = append(s.members[playlistID], videoID)
	return nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	if s.err != nil {
		return s.err
	}
	members := s.members[playlistID]
	for i, existing := range members {
		if existing == videoID {
			s.members[playlistID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeTweetStore struct {
	tweets map[string]models.Tweet
	err    error
}

func newFakeTweetStore(tweets ...models.Tweet) *fakeTweetStore {
	s := &fakeTweetStore{tweets: make(map[string]models.Tweet)}
	for _, t := range tweets {
		s.tweets[t.ID] = t
	}
	return s
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	if s.err != nil {
		return s.err
	}
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	if s.err != nil {
		return models.Tweet{}, s.err
	}
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *fakeTweetStore) ListForUser(_ context.Context, userID string, _, _ int) ([]models.Tweet, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	var matched []models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == userID {
			matched = append(matched, tweet)
		}
	}
	return matched, int64(len(matched)), nil
}

func (s *fakeTweetStore) Update(_ context.Context, tweet models.Tweet) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.tweets[tweet.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) Delete(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

type fakeStatsStore struct {
	stats models.ChannelStats
	err   error
}

func (s *fakeStatsStore) ChannelStats(_ context.Context, _ string) (models.ChannelStats, error) {
	if s.err != nil {
		return models.ChannelStats{}, s.err
	}
	return s.stats, nil
}

// fakeUploader removes the staged file like the real adapter and returns a
// deterministic URL, or nil when failing is requested.
type fakeUploader struct {
	fail     bool
	prefixes []string
}

func (u *fakeUploader) UploadLocalFile(_ context.Context, localPath, keyPrefix string) *media.UploadResult {
	os.Remove(localPath)
	if u.fail {
		return nil
	}
	u.prefixes = append(u.prefixes, keyPrefix)
	return &media.UploadResult{
		URL:  "https://assets.test/" + keyPrefix + "/file",
		Key:  keyPrefix + "/file",
		Size: 4,
	}
}

type fakeLimiter struct {
	allow bool
	keys  []string
}

func (l *fakeLimiter) Allow(key string) bool {
	l.keys = append(l.keys, key)
	return l.allow
}

func paginateVideos(videos []models.Video, page, limit int) []models.Video {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(videos) {
		return nil
	}
	end := start + limit
	if end > len(videos) {
		end = len(videos)
	}
	out := make([]models.Video, end-start)
	copy(out, videos[start:end])
	return out
}

func asPrincipal(r *http.Request, user models.User) *http.Request {
	return r.WithContext(withPrincipal(r.Context(), user))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var envelope apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func dataField(t *testing.T, envelope apiResponse, key string) any {
	t.Helper()
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", envelope.Data)
	}
	return data[key]
}

// multipartBody builds a multipart request body with the given form fields and
// file parts, returning the body and content type.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %q: %v", key, err)
		}
	}
	for name, content := range files {
		part, err := writer.CreateFormFile(name, name+".bin")
		if err != nil {
			t.Fatalf("create form file %q: %v", name, err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write form file %q: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

var errStoreDown = errors.New("store unavailable")

func fixedNow() time.Time {
	return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
}
