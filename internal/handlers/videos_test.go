package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

func testVideo(owner models.User, title string) models.Video {
	public := owner.Public()
	return models.Video{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		Title:       title,
		VideoURL:    "https://assets.test/videos/" + title,
		Published:   true,
		CreatedAt:   fixedNow(),
		UpdatedAt:   fixedNow(),
		Owner:       &public,
		Description: "about " + title,
	}
}

func TestListVideosPagination(t *testing.T) {
	owner := testUser(t, "correct-horse")
	store := newFakeVideoStore()
	for i := 0; i < 25; i++ {
		store.videos[uuid.NewString()] = testVideo(owner, "clip")
	}
	handler := VideoHandler{Videos: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?page=2&limit=10", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if got := dataField(t, envelope, "totalVideos"); got != float64(25) {
		t.Fatalf("expected 25 total, got %v", got)
	}
	if got := dataField(t, envelope, "totalPages"); got != float64(3) {
		t.Fatalf("expected 3 pages, got %v", got)
	}
	videos := dataField(t, envelope, "videos").([]any)
	if len(videos) != 10 {
		t.Fatalf("expected 10 videos on page 2, got %d", len(videos))
	}
}

func TestListVideosDefaultsOnGarbageParams(t *testing.T) {
	owner := testUser(t, "correct-horse")
	store := newFakeVideoStore(testVideo(owner, "clip"))
	handler := VideoHandler{Videos: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?page=zero&limit=-5&sortBy=evil&sortType=sideways", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with defaulted params, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if got := dataField(t, envelope, "page"); got != float64(1) {
		t.Fatalf("expected page default 1, got %v", got)
	}
	if got := dataField(t, envelope, "limit"); got != float64(10) {
		t.Fatalf("expected limit default 10, got %v", got)
	}
}

func TestListVideosRejectsMalformedUserID(t *testing.T) {
	handler := VideoHandler{Videos: newFakeVideoStore()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?userId=not-a-uuid", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateVideo(t *testing.T) {
	owner := testUser(t, "correct-horse")
	store := newFakeVideoStore()
	uploader := &fakeUploader{}
	handler := VideoHandler{Videos: store, Media: uploader, TempDir: t.TempDir(), NowFunc: fixedNow}

	body, contentType := multipartBody(t, map[string]string{
		"title":       "first upload",
		"description": "hello",
	}, map[string][]byte{
		"videoFile": []byte("mp4 bytes"),
		"thumbnail": []byte("jpg bytes"),
	})

	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/videos", body), owner)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.videos) != 1 {
		t.Fatalf("expected one stored video, got %d", len(store.videos))
	}
	for _, video := range store.videos {
		if !video.Published {
			t.Fatal("expected new video to be published")
		}
		if video.ThumbnailURL == "" {
			t.Fatal("expected thumbnail URL to be set")
		}
		if video.OwnerID != owner.ID {
			t.Fatalf("expected owner %s, got %s", owner.ID, video.OwnerID)
		}
	}
}

func TestCreateVideoFailures(t *testing.T) {
	owner := testUser(t, "correct-horse")

	tests := []struct {
		name       string
		fields     map[string]string
		files      map[string][]byte
		failUpload bool
		wantStatus int
	}{
		{
			name:       "missing title",
			files:      map[string][]byte{"videoFile": []byte("mp4")},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing video file",
			fields:     map[string]string{"title": "clip"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "upload fails",
			fields:     map[string]string{"title": "clip"},
			files:      map[string][]byte{"videoFile": []byte("mp4")},
			failUpload: true,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := VideoHandler{
				Videos:  newFakeVideoStore(),
				Media:   &fakeUploader{fail: tc.failUpload},
				TempDir: t.TempDir(),
				NowFunc: fixedNow,
			}

			body, contentType := multipartBody(t, tc.fields, tc.files)
			req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/videos", body), owner)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetVideoCountsViewAndRecordsHistory(t *testing.T) {
	owner := testUser(t, "correct-horse")
	viewer := testUser(t, "battery-staple")
	video := testVideo(owner, "clip")
	store := newFakeVideoStore(video)
	history := &fakeHistoryStore{}
	handler := VideoHandler{Videos: store, History: history}

	for i := 1; i <= 2; i++ {
		req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+video.ID, nil), viewer)
		req.SetPathValue("videoId", video.ID)
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		envelope := decodeEnvelope(t, rec)
		if got := dataField(t, envelope, "views"); got != float64(i) {
			t.Fatalf("expected %d views after fetch %d, got %v", i, i, got)
		}
	}

	if len(history.watches) != 2 {
		t.Fatalf("expected 2 watch records, got %d", len(history.watches))
	}
	if history.watches[0].userID != viewer.ID || history.watches[0].videoID != video.ID {
		t.Fatalf("unexpected watch record: %+v", history.watches[0])
	}
}

func TestGetVideoAnonymousSkipsHistory(t *testing.T) {
	owner := testUser(t, "correct-horse")
	video := testVideo(owner, "clip")
	history := &fakeHistoryStore{}
	handler := VideoHandler{Videos: newFakeVideoStore(video), History: history}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+video.ID, nil)
	req.SetPathValue("videoId", video.ID)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(history.watches) != 0 {
		t.Fatalf("expected no watch records for anonymous fetch, got %d", len(history.watches))
	}
}

func TestGetVideoFailures(t *testing.T) {
	handler := VideoHandler{Videos: newFakeVideoStore()}

	t.Run("malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/nope", nil)
		req.SetPathValue("videoId", "nope")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+id, nil)
		req.SetPathValue("videoId", id)
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestUpdateVideoOwnership(t *testing.T) {
	owner := testUser(t, "correct-horse")
	stranger := testUser(t, "battery-staple")
	video := testVideo(owner, "clip")
	store := newFakeVideoStore(video)
	handler := VideoHandler{Videos: store, NowFunc: fixedNow}

	t.Run("owner can update", func(t *testing.T) {
		req := asPrincipal(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+video.ID,
			strings.NewReader(`{"title":"renamed"}`)), owner)
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("videoId", video.ID)
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if store.videos[video.ID].Title != "renamed" {
			t.Fatalf("expected title update, got %q", store.videos[video.ID].Title)
		}
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		req := asPrincipal(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+video.ID,
			strings.NewReader(`{"title":"stolen"}`)), stranger)
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("videoId", video.ID)
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("empty patch is rejected", func(t *testing.T) {
		req := asPrincipal(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+video.ID,
			strings.NewReader(`{}`)), owner)
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("videoId", video.ID)
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestDeleteVideoOwnership(t *testing.T) {
	owner := testUser(t, "correct-horse")
	stranger := testUser(t, "battery-staple")
	video := testVideo(owner, "clip")
	store := newFakeVideoStore(video)
	handler := VideoHandler{Videos: store}

	t.Run("stranger is forbidden", func(t *testing.T) {
		req := asPrincipal(httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+video.ID, nil), stranger)
		req.SetPathValue("videoId", video.ID)
		rec := httptest.NewRecorder()

		handler.Delete(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if _, ok := store.videos[video.ID]; !ok {
			t.Fatal("video must survive a forbidden delete")
		}
	})

	t.Run("owner can delete", func(t *testing.T) {
		req := asPrincipal(httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+video.ID, nil), owner)
		req.SetPathValue("videoId", video.ID)
		rec := httptest.NewRecorder()

		handler.Delete(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if _, ok := store.videos[video.ID]; ok {
			t.Fatal("expected video to be deleted")
		}
	})
}

func TestTogglePublish(t *testing.T) {
	owner := testUser(t, "correct-horse")
	video := testVideo(owner, "clip")
	store := newFakeVideoStore(video)
	handler := VideoHandler{Videos: store, NowFunc: fixedNow}

	for _, want := range []bool{false, true} {
		req := asPrincipal(httptest.NewRequest(http.MethodPatch,
			"/api/v1/videos/toggle/publish/"+video.ID, nil), owner)
		req.SetPathValue("videoId", video.ID)
		rec := httptest.NewRecorder()

		handler.TogglePublish(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		envelope := decodeEnvelope(t, rec)
		if got := dataField(t, envelope, "isPublished"); got != want {
			t.Fatalf("expected isPublished=%v, got %v", want, got)
		}
	}
}
