package models

import (
	"testing"

	"github.com/mkitchen/resto_backend/utils"
)

func TestAuthenticate(t *testing.T) {
	ctx := setupTest(t)
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	created, err := CreateUser(ctx, businessId, &NewUser{
		Name: "Demo Chef", Username: "chef", Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Role != "staff" {
		t.Fatalf("role = %q, want default staff", created.Role)
	}
	if created.Password == "s3cret-pass" {
		t.Fatal("password must be stored hashed")
	}

	user, err := Authenticate(ctx, "chef", "s3cret-pass")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("user id = %d, want %d", user.ID, created.ID)
	}

	if _, err := Authenticate(ctx, "chef", "wrong"); err == nil {
		t.Fatal("wrong password must be rejected")
	}
	if _, err := Authenticate(ctx, "nobody", "s3cret-pass"); err == nil {
		t.Fatal("unknown user must be rejected")
	}
}
