package identity

import (
	"errors"
	"net/http/httptest"
	"testing"
)

func TestQueryProviderIdentify(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantID   int64
		wantName string
		wantErr  bool
	}{
		{
			name:     "id and name",
			url:      "/ws?player=42&name=alice",
			wantID:   42,
			wantName: "alice",
		},
		{
			name:     "missing name falls back to generated one",
			url:      "/ws?player=42",
			wantID:   42,
			wantName: "Player 42",
		},
		{
			name:    "missing player",
			url:     "/ws?name=alice",
			wantErr: true,
		},
		{
			name:    "non-numeric player",
			url:     "/ws?player=abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			id, name, err := QueryProvider{}.Identify(req)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Identify() error = %v", err)
			}
			if int64(id) != tt.wantID {
				t.Errorf("id = %d, want %d", id, tt.wantID)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
		})
	}
}

func TestMissingIdentitySentinel(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	_, _, err := QueryProvider{}.Identify(req)
	if !errors.Is(err, ErrNoIdentity) {
		t.Errorf("error = %v, want ErrNoIdentity", err)
	}
}
