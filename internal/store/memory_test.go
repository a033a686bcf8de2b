package store

import (
	"context"
	"testing"

	"github.com/k9mail/accountauth/internal/models"
)

func strPtr(s string) *string { return &s }

func testAccount(name string) models.Account {
	return models.Account{Name: name, Type: "com.fsck.k9.authenticator.AccountType"}
}

func TestAddAccountExplicitly_Idempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	account := testAccount("alice@example.com")

	if err := s.AddAccountExplicitly(ctx, account, strPtr("hunter2"), models.UserData{"uuid": "A-UUID-1"}); err != nil {
		t.Fatalf("AddAccountExplicitly returned error: %v", err)
	}
	// second insert must not clobber the original
	if err := s.AddAccountExplicitly(ctx, account, strPtr("other"), models.UserData{"uuid": "A-UUID-2"}); err != nil {
		t.Fatalf("AddAccountExplicitly returned error: %v", err)
	}

	accounts, _ := s.ListAccountsByType(ctx, account.Type)
	if len(accounts) != 1 {
		t.Fatalf("store contains %d accounts; want 1", len(accounts))
	}
	password, _ := s.GetPassword(ctx, account)
	if password == nil || *password != "hunter2" {
		t.Errorf("password = %v; want %q", password, "hunter2")
	}
	uid, _ := s.GetUserData(ctx, account, "uuid")
	if uid != "A-UUID-1" {
		t.Errorf("uuid = %q; want %q", uid, "A-UUID-1")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	account := testAccount("alice@example.com")

	if err := s.AddAccountExplicitly(ctx, account, nil, nil); err != nil {
		t.Fatalf("AddAccountExplicitly returned error: %v", err)
	}
	if password, _ := s.GetPassword(ctx, account); password != nil {
		t.Errorf("initial password = %q; want unset", *password)
	}

	if err := s.SetPassword(ctx, account, strPtr("newpw")); err != nil {
		t.Fatalf("SetPassword returned error: %v", err)
	}
	password, _ := s.GetPassword(ctx, account)
	if password == nil || *password != "newpw" {
		t.Errorf("password = %v; want %q", password, "newpw")
	}

	// explicit unset
	if err := s.SetPassword(ctx, account, nil); err != nil {
		t.Fatalf("SetPassword returned error: %v", err)
	}
	if password, _ := s.GetPassword(ctx, account); password != nil {
		t.Errorf("password after unset = %q; want nil", *password)
	}
}

func TestAuthTokenRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	account := testAccount("alice@example.com")

	if err := s.AddAccountExplicitly(ctx, account, nil, nil); err != nil {
		t.Fatalf("AddAccountExplicitly returned error: %v", err)
	}
	if err := s.SetAuthToken(ctx, account, "token_password", strPtr("hunter2")); err != nil {
		t.Fatalf("SetAuthToken returned error: %v", err)
	}

	token, _ := s.GetAuthToken(ctx, account, "token_password")
	if token == nil || *token != "hunter2" {
		t.Errorf("token = %v; want %q", token, "hunter2")
	}
	if token, _ := s.GetAuthToken(ctx, account, "other"); token != nil {
		t.Errorf("token for unknown type = %q; want nil", *token)
	}
}

func TestListAccountsByType(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := testAccount("alice@example.com")
	second := testAccount("bob@example.com")
	other := models.Account{Name: "carol@example.com", Type: "com.example.other"}
	for _, account := range []models.Account{first, second, other} {
		if err := s.AddAccountExplicitly(ctx, account, nil, nil); err != nil {
			t.Fatalf("AddAccountExplicitly returned error: %v", err)
		}
	}

	accounts, _ := s.ListAccountsByType(ctx, first.Type)
	if len(accounts) != 2 {
		t.Fatalf("ListAccountsByType returned %d accounts; want 2", len(accounts))
	}
	if accounts[0] != first || accounts[1] != second {
		t.Errorf("ListAccountsByType = %v; want insertion order", accounts)
	}
}

func TestRemoveAccount(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	account := testAccount("alice@example.com")

	if err := s.AddAccountExplicitly(ctx, account, strPtr("pw"), nil); err != nil {
		t.Fatalf("AddAccountExplicitly returned error: %v", err)
	}
	if err := s.RemoveAccount(ctx, account); err != nil {
		t.Fatalf("RemoveAccount returned error: %v", err)
	}

	accounts, _ := s.ListAccountsByType(ctx, account.Type)
	if len(accounts) != 0 {
		t.Errorf("store contains %d accounts after removal; want 0", len(accounts))
	}
	// removing again is a no-op
	if err := s.RemoveAccount(ctx, account); err != nil {
		t.Errorf("RemoveAccount on unknown account returned error: %v", err)
	}
}

func TestUnknownAccountReads(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	account := testAccount("ghost@example.com")

	if password, _ := s.GetPassword(ctx, account); password != nil {
		t.Errorf("password for unknown account = %q; want nil", *password)
	}
	if uid, _ := s.GetUserData(ctx, account, "uuid"); uid != "" {
		t.Errorf("userdata for unknown account = %q; want empty", uid)
	}
}
