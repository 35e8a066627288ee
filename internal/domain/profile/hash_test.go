package profile

import "testing"

func TestHashPasswordRoundTrip(t *testing.T) {
	hashed, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "s3cret!" {
		t.Fatal("expected the hash to differ from the plaintext password")
	}
	if !VerifyPassword("s3cret!", hashed) {
		t.Fatal("expected the correct password to verify against its own hash")
	}
	if VerifyPassword("wrong", hashed) {
		t.Fatal("expected an incorrect password to fail verification")
	}
}
