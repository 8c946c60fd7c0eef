package session

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSessionIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		expiresIn time.Duration
		want      bool
	}{
		{"expires well in the future", 10 * time.Minute, true},
		{"expires in one second", time.Second, true},
		{"expired a millisecond ago", -time.Millisecond, false},
		{"expired long ago", -10 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &Session{
				WalletName: "main",
				CreatedAt:  time.Now().Add(-5 * time.Minute),
				ExpiresAt:  time.Now().Add(tt.expiresIn),
			}
			if got := s.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionTTL(t *testing.T) {
	t.Parallel()

	t.Run("active session reports remaining time", func(t *testing.T) {
		t.Parallel()
		s := &Session{ExpiresAt: time.Now().Add(10 * time.Minute)}

		got := s.TTL()
		if got < 9*time.Minute || got > 10*time.Minute {
			t.Errorf("TTL() = %v, want roughly 10 minutes", got)
		}
	})

	t.Run("expired session reports zero, never negative", func(t *testing.T) {
		t.Parallel()
		s := &Session{ExpiresAt: time.Now().Add(-10 * time.Minute)}

		if got := s.TTL(); got != 0 {
			t.Errorf("TTL() = %v, want 0", got)
		}
	})
}

// TestSessionFileSchema pins the JSON field names; renaming one would
// orphan sessions written by earlier releases.
func TestSessionFileSchema(t *testing.T) {
	t.Parallel()

	now := time.Now()
	env := sessionEnvelope{
		Meta: &Session{
			WalletName: "main",
			CreatedAt:  now,
			ExpiresAt:  now.Add(15 * time.Minute),
		},
		SealedSeed: []byte{0x01, 0x02},
	}

	data, err := json.Marshal(&env)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	for _, field := range []string{`"meta"`, `"sealed_seed"`, `"wallet_name"`, `"created_at"`, `"expires_at"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("envelope JSON missing field %s: %s", field, data)
		}
	}

	var decoded sessionEnvelope
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Meta.WalletName != "main" {
		t.Errorf("WalletName = %q, want main", decoded.Meta.WalletName)
	}
	if !decoded.Meta.ExpiresAt.Equal(env.Meta.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", decoded.Meta.ExpiresAt, env.Meta.ExpiresAt)
	}
}
