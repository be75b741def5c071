package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/mprisd/internal/shared"
	"golang.org/x/oauth2"
)

type exchangeFunc func(ctx context.Context, code string) (*oauth2.Token, error)

func (f exchangeFunc) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return f(ctx, code)
}

func fixedToken(code string) exchangeFunc {
	return func(ctx context.Context, got string) (*oauth2.Token, error) {
		if got != code {
			return nil, errors.New("bad code")
		}
		return &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}, nil
	}
}

func TestOAuthHandler(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		code    int
		wantErr bool
	}{
		{"success", "?state=s3cret&code=abc", http.StatusOK, false},
		{"wrong state", "?state=nope&code=abc", http.StatusBadRequest, true},
		{"denied", "?state=s3cret&error=access_denied", http.StatusBadRequest, true},
		{"exchange fails", "?state=s3cret&code=zzz", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOAuthHandler(fixedToken("abc"), "s3cret")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, rec.Code)
			}

			res, ok := <-h.Result()
			if !ok {
				t.Fatal("expected a result")
			}
			if tt.wantErr {
				if !errors.Is(res.Err, shared.ErrAuthFailed) {
					t.Errorf("expected ErrAuthFailed, got %v", res.Err)
				}
				return
			}
			if res.Err != nil || res.Token.AccessToken != "access" {
				t.Errorf("unexpected result %+v", res)
			}
		})
	}

	t.Run("second callback rejected", func(t *testing.T) {
		h := NewOAuthHandler(fixedToken("abc"), "s3cret")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s3cret&code=abc", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s3cret&code=abc", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAwaitToken(t *testing.T) {
	t.Run("returns token from callback", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		h := NewOAuthHandler(fixedToken("abc"), "s3cret")

		go func() {
			resp, err := http.Get("http://" + ln.Addr().String() + "/callback?state=s3cret&code=abc")
			if err == nil {
				resp.Body.Close()
			}
		}()

		tok, err := AwaitToken(context.Background(), ln, h, 2*time.Second, quietLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.RefreshToken != "refresh" {
			t.Errorf("expected refresh token, got %q", tok.RefreshToken)
		}
	})

	t.Run("times out", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		h := NewOAuthHandler(fixedToken("abc"), "s3cret")

		_, err = AwaitToken(context.Background(), ln, h, 20*time.Millisecond, quietLogger())
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})
}
