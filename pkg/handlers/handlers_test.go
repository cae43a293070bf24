package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"video-sharing/pkg/auth"
	"video-sharing/pkg/database"
	"video-sharing/pkg/media"
	"video-sharing/pkg/models"
	"video-sharing/pkg/users"
	"video-sharing/pkg/videos"
)

type memBackend struct {
	objects map[string][]byte
}

func (b *memBackend) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.objects[key] = data
	return nil
}

func (b *memBackend) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key + "?signature=x", nil
}

func (b *memBackend) URL(key string) string { return "https://cdn.test/" + key }

type testServer struct {
	t       *testing.T
	router  *gin.Engine
	backend *memBackend
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := database.NewStore(db)
	backend := &memBackend{objects: map[string][]byte{}}

	h := New(Options{
		Videos: videos.NewService(store),
		Users:  users.NewService(store),
		Media:  media.NewService(backend, 15*time.Minute),
		Tokens: auth.NewTokens("test-secret", time.Hour),
	})
	return &testServer{t: t, router: NewRouter(h), backend: backend}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// doRaw sends body verbatim, for payloads json.Marshal cannot produce.
func (s *testServer) doRaw(method, path, token, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) signUp(email string) string {
	s.t.Helper()
	creds := gin.H{"email": email, "password": "123456"}
	if w := s.do(http.MethodPost, "/auth/register", "", creds); w.Code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %s", email, w.Code, w.Body)
	}
	w := s.do(http.MethodPost, "/auth/login", "", creds)
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", email, w.Code, w.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &resp)
	return resp.Token
}

func (s *testServer) createVideo(token, title string) models.Video {
	s.t.Helper()
	w := s.do(http.MethodPost, "/videos", token, gin.H{
		"title":       title,
		"description": "desc",
		"videoUrl":    "/videos/" + title + ".mp4",
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("create video: %d %s", w.Code, w.Body)
	}
	var v models.Video
	decode(s.t, w, &v)
	return v
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	creds := gin.H{"email": "a@x.com", "password": "123456"}

	w := s.do(http.MethodPost, "/auth/register", "", creds)
	if w.Code != http.StatusCreated {
		t.Fatalf("first register: %d %s", w.Code, w.Body)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("response leaks password: %s", w.Body)
	}

	w = s.do(http.MethodPost, "/auth/register", "", creds)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second register: %d %s", w.Code, w.Body)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/auth/register", "", gin.H{"email": "a@x.com", "password": "123"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("register: %d %s", w.Code, w.Body)
	}
}

func TestLoginAndSession(t *testing.T) {
	s := newTestServer(t)
	s.signUp("a@x.com")

	if w := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "nope12"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", w.Code)
	}

	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "123456"})
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("session cookie = %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie.Value})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "a@x.com") {
		t.Fatalf("session: %d %s", rec.Code, rec.Body)
	}

	if w := s.do(http.MethodGet, "/auth/session", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous session: %d", w.Code)
	}
}

func TestUnauthenticatedUpdateOfExistingVideo(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("owner@x.com")
	v := s.createVideo(owner, "clip")

	w := s.do(http.MethodPut, "/videos/"+v.ID, "", gin.H{"title": "new"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("PUT anonymous: %d %s", w.Code, w.Body)
	}

	// a missing video is reported before the missing session
	w = s.do(http.MethodPut, "/videos/"+models.NewID(), "", gin.H{"title": "new"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("PUT anonymous missing: %d %s", w.Code, w.Body)
	}
}

func TestCreateChecksSessionBeforeBody(t *testing.T) {
	s := newTestServer(t)

	if w := s.doRaw(http.MethodPost, "/videos", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("POST anonymous empty body: %d %s", w.Code, w.Body)
	}
	if w := s.doRaw(http.MethodPost, "/videos", "", `{"title":1}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("POST anonymous bad body: %d %s", w.Code, w.Body)
	}

	token := s.signUp("a@x.com")
	if w := s.doRaw(http.MethodPost, "/videos", token, `{"title":1}`); w.Code != http.StatusBadRequest {
		t.Fatalf("POST bad body: %d %s", w.Code, w.Body)
	}
}

func TestUpdateChecksAccessBeforeBody(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("owner@x.com")
	other := s.signUp("other@x.com")
	v := s.createVideo(owner, "clip")
	const bad = `{"title":1}`

	cases := []struct {
		name  string
		id    string
		token string
		want  int
	}{
		{"malformed id", "nope", "", http.StatusBadRequest},
		{"missing video", models.NewID(), "", http.StatusNotFound},
		{"anonymous", v.ID, "", http.StatusUnauthorized},
		{"not owner", v.ID, other, http.StatusForbidden},
		{"owner", v.ID, owner, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := s.doRaw(http.MethodPut, "/videos/"+tc.id, tc.token, bad)
		if w.Code != tc.want {
			t.Fatalf("%s: PUT bad body = %d %s, want %d", tc.name, w.Code, w.Body, tc.want)
		}
	}

	w := s.do(http.MethodGet, "/videos/"+v.ID, "", nil)
	var got models.Video
	decode(t, w, &got)
	if got.Title != "clip" {
		t.Fatalf("Title = %q after rejected updates", got.Title)
	}
}

func TestOwnerDeleteThenGet(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("owner@x.com")
	other := s.signUp("other@x.com")
	v := s.createVideo(owner, "clip")

	if w := s.do(http.MethodDelete, "/videos/"+v.ID, other, nil); w.Code != http.StatusForbidden {
		t.Fatalf("DELETE by other: %d %s", w.Code, w.Body)
	}

	w := s.do(http.MethodDelete, "/videos/"+v.ID, owner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE by owner: %d %s", w.Code, w.Body)
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["message"] == "" {
		t.Fatalf("DELETE body = %s", w.Body)
	}

	if w := s.do(http.MethodGet, "/videos/"+v.ID, "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("GET after delete: %d %s", w.Code, w.Body)
	}
}

func TestGetVideo(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("owner@x.com")
	v := s.createVideo(owner, "clip")

	w := s.do(http.MethodGet, "/videos/"+v.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET: %d %s", w.Code, w.Body)
	}
	var got models.Video
	decode(t, w, &got)
	if got.ID != v.ID || !got.Controls || got.Transformation.Height != models.DefaultHeight {
		t.Fatalf("GET = %+v", got)
	}

	if w := s.do(http.MethodGet, "/videos/not-an-id", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("GET malformed: %d", w.Code)
	}
}

func TestUpdateVideo(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("owner@x.com")
	other := s.signUp("other@x.com")
	v := s.createVideo(owner, "clip")

	body := gin.H{
		"title":          "Renamed",
		"controls":       false,
		"transformation": gin.H{"height": 1280, "width": 720, "quality": 90},
		"userId":         "65a1f0c2e4b0a1b2c3d4e5f6",
		"videoUrl":       "/videos/other.mp4",
	}
	if w := s.do(http.MethodPut, "/videos/"+v.ID, other, body); w.Code != http.StatusForbidden {
		t.Fatalf("PUT by other: %d %s", w.Code, w.Body)
	}

	w := s.do(http.MethodPut, "/videos/"+v.ID, owner, body)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT by owner: %d %s", w.Code, w.Body)
	}
	var got models.Video
	decode(t, w, &got)
	if got.Title != "Renamed" || got.Controls || got.Transformation.Width != 720 || *got.Transformation.Quality != 90 {
		t.Fatalf("PUT = %+v", got)
	}
	if got.UserID != v.UserID || got.VideoURL != v.VideoURL {
		t.Fatalf("immutable fields changed: %+v", got)
	}

	if w := s.do(http.MethodPut, "/videos/"+v.ID, owner, gin.H{"title": ""}); w.Code != http.StatusBadRequest {
		t.Fatalf("PUT empty title: %d", w.Code)
	}
}

func TestCreateVideo(t *testing.T) {
	s := newTestServer(t)

	payload := gin.H{"title": "t", "description": "d", "videoUrl": "/videos/a.mp4"}
	if w := s.do(http.MethodPost, "/videos", "", payload); w.Code != http.StatusUnauthorized {
		t.Fatalf("POST anonymous: %d", w.Code)
	}

	token := s.signUp("a@x.com")
	if w := s.do(http.MethodPost, "/videos", token, gin.H{"title": "", "description": "d", "videoUrl": "/v.mp4"}); w.Code != http.StatusBadRequest {
		t.Fatalf("POST empty title: %d", w.Code)
	}

	w := s.do(http.MethodGet, "/videos", "", nil)
	var list []models.Video
	decode(t, w, &list)
	if len(list) != 0 {
		t.Fatalf("videos persisted after failed creates: %d", len(list))
	}
}

func TestListVideos(t *testing.T) {
	s := newTestServer(t)
	alice := s.signUp("alice@x.com")
	bob := s.signUp("bob@x.com")
	s.createVideo(alice, "one")
	s.createVideo(bob, "two")
	s.createVideo(alice, "three")

	w := s.do(http.MethodGet, "/videos", "", nil)
	var all []models.Video
	decode(t, w, &all)
	if len(all) != 3 || all[0].Title != "three" || all[2].Title != "one" {
		t.Fatalf("GET /videos = %s", w.Body)
	}

	if w := s.do(http.MethodGet, "/videos/mine", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("GET /videos/mine anonymous: %d", w.Code)
	}

	w = s.do(http.MethodGet, "/videos/mine", alice, nil)
	var mine []models.Video
	decode(t, w, &mine)
	if len(mine) != 2 || mine[0].Title != "three" || mine[1].Title != "one" {
		t.Fatalf("GET /videos/mine = %s", w.Body)
	}
}

func TestSignUpload(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{"fileType": "video", "fileName": "clip.mp4", "contentType": "video/mp4", "size": 1024}

	if w := s.do(http.MethodPost, "/uploads/sign", "", body); w.Code != http.StatusUnauthorized {
		t.Fatalf("sign anonymous: %d", w.Code)
	}

	token := s.signUp("a@x.com")
	w := s.do(http.MethodPost, "/uploads/sign", token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("sign: %d %s", w.Code, w.Body)
	}
	var ticket media.Ticket
	decode(t, w, &ticket)
	if !strings.HasPrefix(ticket.FilePath, "/videos/") || !strings.Contains(ticket.UploadURL, "signature") {
		t.Fatalf("ticket = %+v", ticket)
	}

	body["size"] = media.MaxVideoSize + 1
	if w := s.do(http.MethodPost, "/uploads/sign", token, body); w.Code != http.StatusBadRequest {
		t.Fatalf("sign oversized: %d", w.Code)
	}
}

func TestUploadMultipart(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("a@x.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("fileType", "video"); err != nil {
		t.Fatal(err)
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="clip.mp4"`)
	hdr.Set("Content-Type", "video/mp4")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("fake-video-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", w.Code, w.Body)
	}

	var res media.Result
	decode(t, w, &res)
	if got := s.backend.objects[strings.TrimPrefix(res.FilePath, "/")]; string(got) != "fake-video-bytes" {
		t.Fatalf("stored %q at %q", got, res.FilePath)
	}

	// the returned path feeds straight into video creation
	w = s.do(http.MethodPost, "/videos", token, gin.H{"title": "t", "description": "d", "videoUrl": res.FilePath})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body)
	}
}
