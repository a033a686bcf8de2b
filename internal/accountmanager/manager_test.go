package accountmanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/k9mail/accountauth/internal/authenticator"
	"github.com/k9mail/accountauth/internal/bundle"
	"github.com/k9mail/accountauth/internal/models"
	"github.com/k9mail/accountauth/internal/store"
	"github.com/k9mail/accountauth/internal/verify"
)

const testTimeout = 5 * time.Second

func newTestManager(t *testing.T) (*AccountManager, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	log := zap.NewNop()
	backend := authenticator.NewBackend(st, verify.NewChecker(log), log)
	bridge := authenticator.NewBridge(backend, log)
	manager := New(st, log)
	manager.RegisterAuthenticator(authenticator.AccountType, bridge)
	return manager, st
}

func addOptions(name, password string) *bundle.Bundle {
	options := bundle.New()
	options.PutString(bundle.KeyAccountName, name)
	options.PutString(bundle.KeyPassword, password)
	options.PutBool(authenticator.KeyOnline, false)
	return options
}

func TestAddAccount_ResolvesBundle(t *testing.T) {
	manager, st := newTestManager(t)

	future := manager.AddAccount(authenticator.AccountType, "", []string{"uuid:A-UUID-1"},
		addOptions("alice@example.com", "hunter2"))
	result, err := future.Result(testTimeout)
	require.NoError(t, err)

	name, _ := result.GetString(bundle.KeyAccountName)
	assert.Equal(t, "alice@example.com", name)

	accounts, err := st.ListAccountsByType(context.Background(), authenticator.AccountType)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestAddAccount_ErrorBundleBecomesFault(t *testing.T) {
	manager, _ := newTestManager(t)

	future := manager.AddAccount(authenticator.AccountType, "", nil, addOptions("alice@example.com", "pw"))
	_, err := future.Result(testTimeout)

	var authErr *AuthenticatorError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, authenticator.CodeBadRequest, authErr.Code)
}

func TestAddAccount_NoAuthenticatorRegistered(t *testing.T) {
	manager := New(store.NewMemoryStore(), zap.NewNop())

	future := manager.AddAccount("com.example.other", "", nil, nil)
	_, err := future.Result(testTimeout)

	var authErr *AuthenticatorError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, authenticator.CodeRemoteException, authErr.Code)
}

func TestGetAuthToken_UsesTokenCache(t *testing.T) {
	manager, _ := newTestManager(t)
	account := models.Account{Name: "alice@example.com", Type: authenticator.AccountType}

	_, err := manager.AddAccount(authenticator.AccountType, "", []string{"uuid:A-UUID-1"},
		addOptions(account.Name, "hunter2")).Result(testTimeout)
	require.NoError(t, err)

	result, err := manager.GetAuthToken(account, authenticator.TokenTypePassword, nil).Result(testTimeout)
	require.NoError(t, err)
	token, _ := result.GetString(bundle.KeyAuthToken)
	assert.Equal(t, "hunter2", token)
}

func TestGetAuthToken_FallsBackToAuthenticator(t *testing.T) {
	manager, st := newTestManager(t)
	account := models.Account{Name: "alice@example.com", Type: authenticator.AccountType}

	_, err := manager.AddAccount(authenticator.AccountType, "", []string{"uuid:A-UUID-1"},
		addOptions(account.Name, "hunter2")).Result(testTimeout)
	require.NoError(t, err)

	// drop the cached token so the authenticator path is exercised
	require.NoError(t, st.SetAuthToken(context.Background(), account, authenticator.TokenTypePassword, nil))

	result, err := manager.GetAuthToken(account, authenticator.TokenTypePassword, nil).Result(testTimeout)
	require.NoError(t, err)
	token, _ := result.GetString(bundle.KeyAuthToken)
	assert.Equal(t, "hunter2", token)
}

func TestUpdateCredentials_WritesBothSlots(t *testing.T) {
	manager, st := newTestManager(t)
	account := models.Account{Name: "alice@example.com", Type: authenticator.AccountType}
	ctx := context.Background()

	_, err := manager.AddAccount(authenticator.AccountType, "", []string{"uuid:A-UUID-1"},
		addOptions(account.Name, "hunter2")).Result(testTimeout)
	require.NoError(t, err)

	options := bundle.New()
	options.PutString(bundle.KeyPassword, "newpw")
	_, err = manager.UpdateCredentials(account, authenticator.TokenTypePassword, options).Result(testTimeout)
	require.NoError(t, err)

	password, err := st.GetPassword(ctx, account)
	require.NoError(t, err)
	require.NotNil(t, password)
	assert.Equal(t, "newpw", *password)

	token, err := st.GetAuthToken(ctx, account, authenticator.TokenTypePassword)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "newpw", *token)
}

func TestRemoveAccount(t *testing.T) {
	manager, st := newTestManager(t)
	account := models.Account{Name: "alice@example.com", Type: authenticator.AccountType}

	_, err := manager.AddAccount(authenticator.AccountType, "", []string{"uuid:A-UUID-1"},
		addOptions(account.Name, "hunter2")).Result(testTimeout)
	require.NoError(t, err)

	removed, err := manager.RemoveAccount(account).Result(testTimeout)
	require.NoError(t, err)
	assert.True(t, removed)

	accounts, err := st.ListAccountsByType(context.Background(), authenticator.AccountType)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestGetAccountsByTypeAndFeatures(t *testing.T) {
	manager, _ := newTestManager(t)

	for _, a := range []struct{ uuid, name string }{
		{"A-UUID-1", "alice@example.com"},
		{"A-UUID-2", "bob@example.com"},
	} {
		_, err := manager.AddAccount(authenticator.AccountType, "", []string{"uuid:" + a.uuid},
			addOptions(a.name, "pw")).Result(testTimeout)
		require.NoError(t, err)
	}

	accounts, err := manager.GetAccountsByTypeAndFeatures(authenticator.AccountType,
		[]string{"uuid:A-UUID-2"}).Result(testTimeout)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "bob@example.com", accounts[0].Name)

	// the empty feature set matches every account
	accounts, err = manager.GetAccountsByTypeAndFeatures(authenticator.AccountType, nil).Result(testTimeout)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}
