package handlers_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/database"
	"microblog/internal/handlers"
	"microblog/internal/repositories"
	"microblog/internal/routes"
	"microblog/internal/session"
)

type testEnv struct {
	handler http.Handler
	users   repositories.UserRepository
	topics  repositories.TopicRepository
	reviews repositories.ReviewRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	db, err := database.Open(dsn)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	users := repositories.NewUserRepository(db)
	topics := repositories.NewTopicRepository(db)
	reviews := repositories.NewReviewRepository(db)
	projects := repositories.NewProjectRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	sessions := session.NewManager(users, sessionRepo, []byte("development-key"), time.Hour)

	handler := routes.SetupRoutes(
		handlers.NewAuthHandler(users, sessions, log),
		handlers.NewPagesHandler(projects, log),
		handlers.NewReviewsHandler(reviews, log),
		handlers.NewProfileHandler(users, log),
		handlers.NewForumHandler(topics, users, log),
		handlers.NewAdminHandler(users, topics, reviews, projects, sessions, log),
		sessions, users, log,
	)

	return &testEnv{handler: handler, users: users, topics: topics, reviews: reviews}
}

func (e *testEnv) do(t *testing.T, method, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) register(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, "POST", "/register", url.Values{
		"username":  {username},
		"email":     {username + "@example.com"},
		"password":  {password},
		"password2": {password},
	}, nil)
}

func (e *testEnv) login(t *testing.T, username, password string) []*http.Cookie {
	t.Helper()
	rr := e.do(t, "POST", "/login", url.Values{
		"username": {username},
		"password": {password},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rr.Code, "login should redirect: %s", rr.Body.String())
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies, "login must set the session cookie")
	return cookies
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.register(t, "alice", "password123")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/login?success=")

	// Duplicate username fails and creates no second row.
	rr = env.register(t, "alice", "password123")
	assert.Contains(t, rr.Header().Get("Location"), "error=")

	rr = env.do(t, "POST", "/register", url.Values{
		"username":  {"bob"},
		"email":     {"not-an-email"},
		"password":  {"pw"},
		"password2": {"pw"},
	}, nil)
	assert.Contains(t, rr.Header().Get("Location"), "error=")

	rr = env.do(t, "POST", "/register", url.Values{
		"username":  {"bob"},
		"email":     {"bob@example.com"},
		"password":  {"pw1"},
		"password2": {"pw2"},
	}, nil)
	assert.Contains(t, rr.Header().Get("Location"), "error=")
}

func TestRegisteringAdminUsernameGrantsAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "admin", "password123")
	env.register(t, "alice", "password123")

	admin, err := env.users.FindByUsername("admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	alice, err := env.users.FindByUsername("alice")
	require.NoError(t, err)
	assert.False(t, alice.IsAdmin)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "password123")

	rr := env.do(t, "POST", "/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	}, nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "error=")
	assert.Empty(t, rr.Result().Cookies(), "a failed login must not establish a session")

	cookies := env.login(t, "alice", "password123")
	rr = env.do(t, "GET", "/forum", nil, cookies)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLoginRequiredRedirectsWithNext(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/forum", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/forum"), rr.Header().Get("Location"))
}

func TestAdminGuard(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "admin", "password123")
	env.register(t, "alice", "password123")

	// Anonymous and non-admin actors are both sent to login, not 403'd.
	rr := env.do(t, "GET", "/admin/users", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/login?next=")

	aliceCookies := env.login(t, "alice", "password123")
	rr = env.do(t, "GET", "/admin/users", nil, aliceCookies)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/login?next=")

	adminCookies := env.login(t, "admin", "password123")
	rr = env.do(t, "GET", "/admin/users", nil, adminCookies)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBannedUserLosesLiveSession(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "admin", "password123")
	env.register(t, "alice", "password123")
	adminCookies := env.login(t, "admin", "password123")
	aliceCookies := env.login(t, "alice", "password123")

	alice, err := env.users.FindByUsername("alice")
	require.NoError(t, err)

	rr := env.do(t, "POST", fmt.Sprintf("/admin/users/%d/flags", alice.ID), url.Values{
		"is_banned": {"on"},
	}, adminCookies)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	// Alice's very next request is treated as unauthenticated.
	rr = env.do(t, "GET", "/forum", nil, aliceCookies)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/login?next=")
}

func TestCreateTopicAndComment(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "password123")
	cookies := env.login(t, "alice", "password123")

	rr := env.do(t, "POST", "/create_topic", url.Values{
		"title": {"hello"},
		"body":  {"first message"},
	}, cookies)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	location := rr.Header().Get("Location")
	assert.Contains(t, location, "/view_topic/")
	assert.Contains(t, location, "success=")

	topicPath := strings.SplitN(location, "?", 2)[0]
	rr = env.do(t, "GET", topicPath, nil, cookies)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "hello")

	rr = env.do(t, "POST", topicPath, url.Values{"body": {"a comment"}}, cookies)
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	rr = env.do(t, "GET", topicPath, nil, cookies)
	assert.Contains(t, rr.Body.String(), "a comment")
}

func TestViewMissingTopic(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "password123")
	cookies := env.login(t, "alice", "password123")

	rr := env.do(t, "GET", "/view_topic/999", nil, cookies)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFollowEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "password123")
	env.register(t, "bob", "password123")
	cookies := env.login(t, "alice", "password123")

	rr := env.do(t, "POST", "/follow/bob", nil, cookies)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "success=")

	alice, err := env.users.FindByUsername("alice")
	require.NoError(t, err)
	bob, err := env.users.FindByUsername("bob")
	require.NoError(t, err)
	following, err := env.users.IsFollowing(alice.ID, bob)
	require.NoError(t, err)
	assert.True(t, following)

	rr = env.do(t, "POST", "/follow/alice", nil, cookies)
	assert.Contains(t, rr.Header().Get("Location"), "error=")

	rr = env.do(t, "POST", "/unfollow/bob", nil, cookies)
	assert.Contains(t, rr.Header().Get("Location"), "success=")
	following, err = env.users.IsFollowing(alice.ID, bob)
	require.NoError(t, err)
	assert.False(t, following)

	rr = env.do(t, "POST", "/follow/nobody", nil, cookies)
	assert.Contains(t, rr.Header().Get("Location"), "error=")
}

func TestGuestReviewUsesFreeformName(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/reviews", url.Values{
		"display_name": {"A happy visitor"},
		"body":         {"lovely site"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "success=")

	rr = env.do(t, "POST", "/reviews", url.Values{"body": {"me too"}}, nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	listed, err := env.reviews.List()
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Anonymous", listed[0].DisplayName)
	assert.Nil(t, listed[0].AuthorID)
	assert.Equal(t, "A happy visitor", listed[1].DisplayName)
}

func TestAuthenticatedReviewSnapshotsUsername(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "password123")
	cookies := env.login(t, "alice", "password123")

	rr := env.do(t, "POST", "/reviews", url.Values{"body": {"signed review"}}, cookies)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	listed, err := env.reviews.List()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "alice", listed[0].DisplayName)
	require.NotNil(t, listed[0].AuthorID)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "password123")
	cookies := env.login(t, "alice", "password123")

	rr := env.do(t, "GET", "/logout", nil, cookies)
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	// The old cookie no longer resolves to a session.
	rr = env.do(t, "GET", "/forum", nil, cookies)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/login?next=")
}
