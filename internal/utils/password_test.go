package utils_test

import (
	"testing"

	"github.com/mockview/backend/internal/utils"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash equals the plain password")
	}
	if err := utils.CheckPassword(hash, "hunter22"); err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if err := utils.CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("CheckPassword accepted a wrong password")
	}
}
