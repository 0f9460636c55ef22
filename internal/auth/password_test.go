package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("front-desk-secret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "front-desk-secret" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword("front-desk-secret", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash accepted")
	}
}
