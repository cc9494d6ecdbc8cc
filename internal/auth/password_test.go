package auth_test

import (
	"testing"

	"github.com/jaekwang-park/taskboard-api/internal/auth"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := auth.NewPasswordHasher(4)

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"unicode password", "비밀번호-123"},
		{"empty password", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if hash == tt.password {
				t.Fatal("Hash() returned the plaintext")
			}
			if !hasher.Verify(tt.password, hash) {
				t.Error("Verify() = false for the hashed password")
			}
			if hasher.Verify(tt.password+"x", hash) {
				t.Error("Verify() = true for a different password")
			}
		})
	}
}

func TestPasswordHasher_SaltsEachHash(t *testing.T) {
	hasher := auth.NewPasswordHasher(4)

	h1, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if h1 == h2 {
		t.Error("expected two hashes of the same password to differ")
	}
}

func TestPasswordHasher_VerifyMalformedHash(t *testing.T) {
	hasher := auth.NewPasswordHasher(4)

	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		if hasher.Verify("password123", hash) {
			t.Errorf("Verify() = true for malformed hash %q", hash)
		}
	}
}

func TestPasswordHasher_TooLongPassword(t *testing.T) {
	hasher := auth.NewPasswordHasher(4)
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}

	if _, err := hasher.Hash(string(long)); err == nil {
		t.Error("expected error hashing a password over 72 bytes")
	}
}
