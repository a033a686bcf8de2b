// Package accountmanager implements the host-side account manager: a
// registry of authenticators dispatched through future-returning
// operations, backed by a shared account store.
package accountmanager

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/k9mail/accountauth/internal/authenticator"
	"github.com/k9mail/accountauth/internal/bundle"
	"github.com/k9mail/accountauth/internal/models"
)

// Store is the account persistence the manager consults directly.
// Implementations must be safe for concurrent use.
type Store interface {
	// GetAuthToken returns the cached token for (account, tokenType),
	// nil when absent.
	GetAuthToken(ctx context.Context, account models.Account, tokenType string) (*string, error)
	// ListAccountsByType returns all accounts of the given type.
	ListAccountsByType(ctx context.Context, accountType string) ([]models.Account, error)
	// RemoveAccount deletes the account and its associated state.
	RemoveAccount(ctx context.Context, account models.Account) error
}

// Authenticator is the host-side view of a registered account
// authenticator.
type Authenticator interface {
	AddAccount(ctx context.Context, response authenticator.Response, accountType, authTokenType string, requiredFeatures []string, options *bundle.Bundle) (*bundle.Bundle, error)
	ConfirmCredentials(ctx context.Context, response authenticator.Response, account models.Account, options *bundle.Bundle) (*bundle.Bundle, error)
	UpdateCredentials(ctx context.Context, response authenticator.Response, account models.Account, authTokenType string, options *bundle.Bundle) (*bundle.Bundle, error)
	HasFeatures(ctx context.Context, response authenticator.Response, account models.Account, features []string) (*bundle.Bundle, error)
	GetAuthToken(ctx context.Context, response authenticator.Response, account models.Account, authTokenType string, options *bundle.Bundle) (*bundle.Bundle, error)
	GetAccountRemovalAllowed(ctx context.Context, response authenticator.Response, account models.Account) (*bundle.Bundle, error)
	GetAuthTokenLabel(authTokenType string) (string, bool)
	EditProperties(response authenticator.Response, accountType string) *bundle.Bundle
}

// AccountManager dispatches account operations to the authenticator
// registered for the account type and resolves their results as
// futures. A result bundle carrying an error code resolves the future
// with an AuthenticatorError rather than a value.
type AccountManager struct {
	store Store
	log   *zap.Logger

	mu             sync.RWMutex
	authenticators map[string]Authenticator
}

// New constructs an AccountManager over the given store.
func New(store Store, log *zap.Logger) *AccountManager {
	return &AccountManager{
		store:          store,
		log:            log,
		authenticators: make(map[string]Authenticator),
	}
}

// RegisterAuthenticator installs auth as the authenticator for
// accountType, replacing any previous registration.
func (m *AccountManager) RegisterAuthenticator(accountType string, auth Authenticator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticators[accountType] = auth
}

func (m *AccountManager) authenticatorFor(accountType string) (Authenticator, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	auth, ok := m.authenticators[accountType]
	return auth, ok
}

// futureResponse adapts a bundle future into the response sink handed
// to the authenticator.
type futureResponse struct {
	future *Future[*bundle.Bundle]
}

func (r *futureResponse) OnResult(result *bundle.Bundle) {
	r.future.resolve(result)
}

func (r *futureResponse) OnError(code int, message string) {
	r.future.fail(&AuthenticatorError{Code: code, Message: message})
}

// discardResponse is handed to operations whose reply travels in the
// return value only.
type discardResponse struct{}

func (discardResponse) OnResult(*bundle.Bundle) {}

func (discardResponse) OnError(int, string) {}

// dispatch runs fn against the registered authenticator and settles
// the returned future with its outcome.
func (m *AccountManager) dispatch(accountType string, fn func(ctx context.Context, auth Authenticator, response authenticator.Response) (*bundle.Bundle, error)) *Future[*bundle.Bundle] {
	future := newFuture[*bundle.Bundle]()
	auth, ok := m.authenticatorFor(accountType)
	if !ok {
		future.fail(&AuthenticatorError{
			Code:    authenticator.CodeRemoteException,
			Message: "no authenticator registered for type " + accountType,
		})
		return future
	}
	go func() {
		result, err := fn(context.Background(), auth, &futureResponse{future: future})
		settle(future, result, err)
	}()
	return future
}

// convertReply normalises an authenticator reply, turning error
// bundles into authenticator faults.
func convertReply(result *bundle.Bundle, err error) (*bundle.Bundle, error) {
	switch {
	case err != nil:
		return nil, err
	case result == nil:
		return nil, &AuthenticatorError{
			Code:    authenticator.CodeInvalidResponse,
			Message: "authenticator produced no result",
		}
	case result.Has(bundle.KeyErrorCode):
		code, _ := result.GetInt(bundle.KeyErrorCode)
		message, _ := result.GetString(bundle.KeyErrorMessage)
		return nil, &AuthenticatorError{Code: code, Message: message}
	default:
		return result, nil
	}
}

// settle resolves future from an authenticator reply.
func settle(future *Future[*bundle.Bundle], result *bundle.Bundle, err error) {
	converted, convErr := convertReply(result, err)
	if convErr != nil {
		future.fail(convErr)
		return
	}
	future.resolve(converted)
}

// AddAccount asks the authenticator for accountType to register a new
// account.
func (m *AccountManager) AddAccount(accountType, authTokenType string, requiredFeatures []string, options *bundle.Bundle) *Future[*bundle.Bundle] {
	return m.dispatch(accountType, func(ctx context.Context, auth Authenticator, response authenticator.Response) (*bundle.Bundle, error) {
		return auth.AddAccount(ctx, response, accountType, authTokenType, requiredFeatures, options)
	})
}

// ConfirmCredentials asks the account's authenticator to verify the
// supplied credentials.
func (m *AccountManager) ConfirmCredentials(account models.Account, options *bundle.Bundle) *Future[*bundle.Bundle] {
	return m.dispatch(account.Type, func(ctx context.Context, auth Authenticator, response authenticator.Response) (*bundle.Bundle, error) {
		return auth.ConfirmCredentials(ctx, response, account, options)
	})
}

// UpdateCredentials asks the account's authenticator to update the
// stored credentials.
func (m *AccountManager) UpdateCredentials(account models.Account, authTokenType string, options *bundle.Bundle) *Future[*bundle.Bundle] {
	return m.dispatch(account.Type, func(ctx context.Context, auth Authenticator, response authenticator.Response) (*bundle.Bundle, error) {
		return auth.UpdateCredentials(ctx, response, account, authTokenType, options)
	})
}

// GetAuthToken fetches an auth token for the account, consulting the
// store's token cache before involving the authenticator.
func (m *AccountManager) GetAuthToken(account models.Account, authTokenType string, options *bundle.Bundle) *Future[*bundle.Bundle] {
	if token, err := m.store.GetAuthToken(context.Background(), account, authTokenType); err == nil && token != nil {
		result := bundle.New()
		result.PutString(bundle.KeyAccountName, account.Name)
		result.PutString(bundle.KeyAccountType, account.Type)
		result.PutString(bundle.KeyAuthToken, *token)
		return Resolved(result)
	}
	return m.dispatch(account.Type, func(ctx context.Context, auth Authenticator, response authenticator.Response) (*bundle.Bundle, error) {
		return auth.GetAuthToken(ctx, response, account, authTokenType, options)
	})
}

// RemoveAccount deletes the account after the authenticator permits
// its removal. The future yields whether the account was removed.
func (m *AccountManager) RemoveAccount(account models.Account) *Future[bool] {
	future := newFuture[bool]()
	auth, ok := m.authenticatorFor(account.Type)
	if !ok {
		future.fail(&AuthenticatorError{
			Code:    authenticator.CodeRemoteException,
			Message: "no authenticator registered for type " + account.Type,
		})
		return future
	}
	go func() {
		ctx := context.Background()
		allowed, err := convertReply(auth.GetAccountRemovalAllowed(ctx, discardResponse{}, account))
		if err != nil {
			future.fail(err)
			return
		}
		if !allowed.GetBool(bundle.KeyBooleanResult, false) {
			future.resolve(false)
			return
		}
		if err := m.store.RemoveAccount(ctx, account); err != nil {
			future.fail(err)
			return
		}
		future.resolve(true)
	}()
	return future
}

// GetAccountsByType returns all accounts of the given type.
func (m *AccountManager) GetAccountsByType(ctx context.Context, accountType string) ([]models.Account, error) {
	return m.store.ListAccountsByType(ctx, accountType)
}

// GetAccountsByTypeAndFeatures returns the accounts of the given type
// whose authenticator reports support for every requested feature.
func (m *AccountManager) GetAccountsByTypeAndFeatures(accountType string, features []string) *Future[[]models.Account] {
	future := newFuture[[]models.Account]()
	auth, ok := m.authenticatorFor(accountType)
	if !ok {
		future.fail(&AuthenticatorError{
			Code:    authenticator.CodeRemoteException,
			Message: "no authenticator registered for type " + accountType,
		})
		return future
	}
	go func() {
		ctx := context.Background()
		accounts, err := m.store.ListAccountsByType(ctx, accountType)
		if err != nil {
			future.fail(err)
			return
		}
		var matched []models.Account
		for _, account := range accounts {
			check, err := convertReply(auth.HasFeatures(ctx, discardResponse{}, account, features))
			if err != nil {
				future.fail(err)
				return
			}
			if check.GetBool(bundle.KeyBooleanResult, false) {
				matched = append(matched, account)
			}
		}
		future.resolve(matched)
	}()
	return future
}
