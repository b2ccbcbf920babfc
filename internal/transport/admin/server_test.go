package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	modelpkg "realcoins/internal/sim/world/kernel/model"
)

type fakeWorld struct {
	balances map[modelpkg.PlayerID]int
	snapErr  error
}

func (f *fakeWorld) ID() string          { return "overworld" }
func (f *fakeWorld) CurrentTick() uint64 { return 77 }

func (f *fakeWorld) Balance(ctx context.Context, id modelpkg.PlayerID) (int, error) {
	return f.balances[id], nil
}

func (f *fakeWorld) RequestSnapshot(ctx context.Context) (uint64, error) {
	if f.snapErr != nil {
		return 0, f.snapErr
	}
	return 76, nil
}

func do(t *testing.T, h http.Handler, method, path, remote string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return doAuth(t, h, method, path, remote, "")
}

func doAuth(t *testing.T, h http.Handler, method, path, remote, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remote
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	h := NewServer(&fakeWorld{}, nil).Router()
	rec, body := do(t, h, http.MethodGet, "/health", "203.0.113.9:5000")
	if rec.Code != http.StatusOK || body["world"] != "overworld" || body["tick"] != float64(77) {
		t.Fatalf("code=%d body=%v", rec.Code, body)
	}
}

func TestBalance(t *testing.T) {
	id := uuid.New()
	h := NewServer(&fakeWorld{balances: map[modelpkg.PlayerID]int{id: 12}}, nil).Router()

	rec, body := do(t, h, http.MethodGet, "/admin/v1/balance/"+id.String(), "127.0.0.1:4000")
	if rec.Code != http.StatusOK || body["balance"] != float64(12) {
		t.Fatalf("code=%d body=%v", rec.Code, body)
	}
	rec, _ = do(t, h, http.MethodGet, "/admin/v1/balance/nobody", "127.0.0.1:4000")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestAdminRoutesAreLoopbackOnly(t *testing.T) {
	s := NewServer(&fakeWorld{}, nil)
	rec, _ := do(t, s.Router(), http.MethodPost, "/admin/v1/snapshot", "203.0.113.9:5000")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code=%d", rec.Code)
	}
	rec, _ = do(t, s.Router(), http.MethodPost, "/admin/v1/snapshot", "127.0.0.1:5000")
	if rec.Code != http.StatusOK {
		t.Fatalf("loopback code=%d", rec.Code)
	}
}

func TestAdminRoutesWithSecretNeedToken(t *testing.T) {
	s := NewServer(&fakeWorld{}, nil)
	s.Secret = []byte("s3cret")
	h := s.Router()

	// With a secret even loopback callers need a token.
	if rec, _ := do(t, h, http.MethodPost, "/admin/v1/snapshot", "127.0.0.1:5000"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token code=%d", rec.Code)
	}

	bad, err := SignToken([]byte("other"), "ops", time.Minute)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	if rec, _ := doAuth(t, h, http.MethodPost, "/admin/v1/snapshot", "203.0.113.9:5000", bad); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key code=%d", rec.Code)
	}

	expired, err := SignToken(s.Secret, "ops", -time.Minute)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	if rec, _ := doAuth(t, h, http.MethodPost, "/admin/v1/snapshot", "203.0.113.9:5000", expired); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired code=%d", rec.Code)
	}

	good, err := SignToken(s.Secret, "ops", time.Minute)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	rec, body := doAuth(t, h, http.MethodPost, "/admin/v1/snapshot", "203.0.113.9:5000", good)
	if rec.Code != http.StatusOK || body["tick"] != float64(76) {
		t.Fatalf("code=%d body=%v", rec.Code, body)
	}
}

func TestSignTokenRejectsEmptySecret(t *testing.T) {
	if _, err := SignToken(nil, "ops", time.Minute); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSnapshotFailure(t *testing.T) {
	h := NewServer(&fakeWorld{snapErr: errors.New("snapshot sink backpressure")}, nil).Router()
	rec, body := do(t, h, http.MethodPost, "/admin/v1/snapshot", "[::1]:4000")
	if rec.Code != http.StatusServiceUnavailable || body["error"] != "snapshot sink backpressure" {
		t.Fatalf("code=%d body=%v", rec.Code, body)
	}
}
