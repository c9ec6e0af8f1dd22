package verification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/shop-api/internal/email"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type countingMetrics struct {
	issued  int
	checked map[string]int
}

func (c *countingMetrics) CodeIssued() { c.issued++ }
func (c *countingMetrics) CodeChecked(result string) {
	if c.checked == nil {
		c.checked = map[string]int{}
	}
	c.checked[result]++
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T, sender email.Sender) (*Service, *clock, *countingMetrics) {
	t.Helper()
	c := &clock{t: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
	m := &countingMetrics{}
	svc := NewService(NewMemoryStore(), sender, 0, m)
	svc.now = c.now
	svc.generate = func() (string, error) { return "123456", nil }
	return svc, c, m
}

func TestIssueThenVerify_SucceedsOnce(t *testing.T) {
	sender := &fakeSender{}
	svc, _, m := newTestService(t, sender)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "Ana@Example.com"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Ana@Example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Text, "123456")

	assert.NoError(t, svc.Verify(ctx, "ana@example.com", "123456"))
	assert.ErrorIs(t, svc.Verify(ctx, "ana@example.com", "123456"), ErrNoPendingCode)

	assert.Equal(t, 1, m.issued)
	assert.Equal(t, map[string]int{"verified": 1, "no_pending_code": 1}, m.checked)
}

func TestVerify_ExpiredEvenWhenCodeMatches(t *testing.T) {
	svc, c, _ := newTestService(t, &fakeSender{})
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "ana@example.com"))
	c.advance(DefaultTTL + time.Second)

	assert.ErrorIs(t, svc.Verify(ctx, "ana@example.com", "123456"), ErrCodeExpired)
}

func TestVerify_AtExactExpiryStillValid(t *testing.T) {
	svc, c, _ := newTestService(t, &fakeSender{})
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "ana@example.com"))
	c.advance(DefaultTTL)

	assert.NoError(t, svc.Verify(ctx, "ana@example.com", "123456"))
}

func TestVerify_MismatchKeepsEntry(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeSender{})
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "ana@example.com"))
	assert.ErrorIs(t, svc.Verify(ctx, "ana@example.com", "000000"), ErrCodeMismatch)
	assert.NoError(t, svc.Verify(ctx, "ana@example.com", "123456"))
}

func TestVerify_NoPendingCode(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeSender{})
	assert.ErrorIs(t, svc.Verify(context.Background(), "nobody@example.com", "123456"), ErrNoPendingCode)
}

func TestIssue_ReplacesPendingCode(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeSender{})
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "ana@example.com"))
	svc.generate = func() (string, error) { return "654321", nil }
	require.NoError(t, svc.Issue(ctx, "ana@example.com"))

	assert.ErrorIs(t, svc.Verify(ctx, "ana@example.com", "123456"), ErrCodeMismatch)
	assert.NoError(t, svc.Verify(ctx, "ana@example.com", "654321"))
}

func TestIssue_SendFailureStoresNothing(t *testing.T) {
	svc, _, m := newTestService(t, &fakeSender{err: errors.New("smtp down")})
	ctx := context.Background()

	err := svc.Issue(ctx, "ana@example.com")
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.ErrorIs(t, svc.Verify(ctx, "ana@example.com", "123456"), ErrNoPendingCode)
	assert.Zero(t, m.issued)
}

func TestIssue_RequiresEmail(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeSender{})
	assert.ErrorIs(t, svc.Issue(context.Background(), "  "), ErrEmailRequired)
}

func TestGenerateCode_InRange(t *testing.T) {
	for range 200 {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}

func TestMemoryStore_ConcurrentConsumeSucceedsOnce(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a@b.c", Entry{Code: "111111", ExpiresAt: now.Add(time.Minute)}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Consume(ctx, "a@b.c", "111111", now) == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestVerify_LongExpiredCodeStillReportedExpired(t *testing.T) {
	svc, c, _ := newTestService(t, &fakeSender{})
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "a@example.com"))
	c.advance(DefaultTTL + time.Hour)
	require.NoError(t, svc.Issue(ctx, "b@example.com"))

	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", "123456"), ErrCodeExpired)
	assert.NoError(t, svc.Verify(ctx, "b@example.com", "123456"))
}

func serve(t *testing.T, h http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_SendAndVerify(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeSender{})
	r := chi.NewRouter()
	NewHandler(svc, nil).Routes(r)

	rec := serve(t, r, "/api/send-email", `{"email":"ana@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = serve(t, r, "/api/verify-code", `{"email":"ana@example.com","code":"000000"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"verified":false,"reason":"mismatch"}`, rec.Body.String())

	rec = serve(t, r, "/api/verify-code", `{"email":"ana@example.com","code":"123456"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"verified":true}`, rec.Body.String())

	rec = serve(t, r, "/api/verify-code", `{"email":"ana@example.com","code":"123456"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"verified":false,"reason":"no_pending_code"}`, rec.Body.String())
}

func TestHandler_SendFailure(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeSender{err: errors.New("down")})
	r := chi.NewRouter()
	NewHandler(svc, nil).Routes(r)

	rec := serve(t, r, "/api/send-email", `{"email":"ana@example.com"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"failed to send email","code":"send_failed"}`, rec.Body.String())

	rec = serve(t, r, "/api/send-email", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
