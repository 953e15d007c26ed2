package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

type draftState struct {
	Step  int      `json:"step"`
	Names []string `json:"names"`
}

func TestSessionStateRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NoError(t, sess.PutState("draft", draftState{Step: 2, Names: []string{"a", "b"}}))
	sess.AddFlash(FlashMessage{Kind: FlashSuccess, Message: "saved"})

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)

	var got draftState
	ok, err := loaded.State("draft", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, draftState{Step: 2, Names: []string{"a", "b"}}, got)

	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "saved", flash.Message)
	assert.Nil(t, loaded.PopFlash())
}

func TestSessionStateMissing(t *testing.T) {
	sm := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	var got draftState
	ok, err := sess.State("draft", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionDestroyClearsCookie(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sm.Destroy(sess)

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestCSRFVerify(t *testing.T) {
	sm := newTestManager(t)
	csrf := NewCSRFManager("csrfsecret")
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	token, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.NoError(t, csrf.VerifyToken(context.Background(), sess, token))
	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, "bogus"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)
}

func TestParsePageResetsOnSizeChange(t *testing.T) {
	q := map[string][]string{"page": {"4"}, "limit": {"50"}, "prev_limit": {"15"}}
	page, limit := ParsePage(q)
	assert.Equal(t, 1, page)
	assert.Equal(t, 50, limit)

	page, limit = ParsePage(map[string][]string{})
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, limit)

	p := NewPagination(2, 15, 31)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
}
