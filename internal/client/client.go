// Package client provides a blocking helper over the account
// manager's future-returning API. Every operation waits at most
// Timeout and normalises all failure modes into its neutral value.
// Not to be invoked from UI goroutines.
package client

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/k9mail/accountauth/internal/accountmanager"
	"github.com/k9mail/accountauth/internal/authenticator"
	"github.com/k9mail/accountauth/internal/bundle"
	"github.com/k9mail/accountauth/internal/models"
)

// Timeout bounds the wait on every account manager future. Expiry is
// treated identically to cancellation.
const Timeout = 10 * time.Second

// AccountManager is the subset of the host account manager the client
// uses.
type AccountManager interface {
	AddAccount(accountType, authTokenType string, requiredFeatures []string, options *bundle.Bundle) *accountmanager.Future[*bundle.Bundle]
	RemoveAccount(account models.Account) *accountmanager.Future[bool]
	UpdateCredentials(account models.Account, authTokenType string, options *bundle.Bundle) *accountmanager.Future[*bundle.Bundle]
	GetAuthToken(account models.Account, authTokenType string, options *bundle.Bundle) *accountmanager.Future[*bundle.Bundle]
	GetAccountsByType(ctx context.Context, accountType string) ([]models.Account, error)
	GetAccountsByTypeAndFeatures(accountType string, features []string) *accountmanager.Future[[]models.Account]
}

// Client wraps the account manager with named blocking operations.
type Client struct {
	manager AccountManager
	log     *zap.Logger
}

// New constructs a Client over the given account manager.
func New(manager AccountManager, log *zap.Logger) *Client {
	return &Client{manager: manager, log: log}
}

// CreateAccount registers a new account carrying uuid as its stable
// identifier. It returns false when an account with displayName
// already exists or the add request fails. password may be nil.
func (c *Client) CreateAccount(uuid, displayName string, password *string) bool {
	if c.FindAccountByName(displayName) != nil {
		// already existing
		return false
	}
	options := bundle.New()
	options.PutString(bundle.KeyAccountName, displayName)
	options.PutStringPtr(bundle.KeyPassword, password)
	options.PutBool(authenticator.KeyOnline, false)

	future := c.manager.AddAccount(authenticator.AccountType, "", []string{
		authenticator.FeatureUUIDPrefix + uuid,
	}, options)
	result, err := future.Result(Timeout)
	if err != nil {
		c.logFailure("createAccount", err)
		return false
	}
	name, ok := result.GetString(bundle.KeyAccountName)
	return ok && name == displayName
}

// RemoveAccount removes the account, returning false on any failure.
func (c *Client) RemoveAccount(account models.Account) bool {
	future := c.manager.RemoveAccount(account)
	removed, err := future.Result(Timeout)
	if err != nil {
		c.logFailure("removeAccount", err)
		return false
	}
	return removed
}

// FindAccountByUUID locates the account carrying uuid. Exactly one
// match yields the account; zero or several yield nil.
func (c *Client) FindAccountByUUID(uuid string) *models.Account {
	future := c.manager.GetAccountsByTypeAndFeatures(authenticator.AccountType, []string{
		authenticator.FeatureUUIDPrefix + uuid,
	})
	accounts, err := future.Result(Timeout)
	if err != nil {
		// lookup faults are diagnostics only
		c.log.Debug("getAccounts by features failed", zap.Error(err))
		return nil
	}
	if len(accounts) == 1 {
		return &accounts[0]
	}
	if len(accounts) > 1 {
		c.log.Error("more than 1 account with UUID", zap.String("uuid", uuid))
	}
	return nil
}

// FindAccountByName returns the first account of this authenticator's
// type whose name equals name, or nil.
func (c *Client) FindAccountByName(name string) *models.Account {
	accounts, err := c.manager.GetAccountsByType(context.Background(), authenticator.AccountType)
	if err != nil {
		c.log.Debug("getAccounts by type failed", zap.Error(err))
		return nil
	}
	for _, account := range accounts {
		if account.Name == name {
			return &account
		}
	}
	return nil
}

// SetPassword updates the account's stored password, which may be nil
// to unset it. It returns true iff the update completed.
func (c *Client) SetPassword(account models.Account, password *string) bool {
	options := bundle.New()
	options.PutStringPtr(bundle.KeyPassword, password)

	c.log.Info("storing password in account manager", zap.String("account", account.Name))
	future := c.manager.UpdateCredentials(account, authenticator.TokenTypePassword, options)
	if _, err := future.Result(Timeout); err != nil {
		c.logFailure("setPassword", err)
		return false
	}
	return true
}

// GetPassword retrieves the account's password through the password
// auth token, nil on any failure.
func (c *Client) GetPassword(account models.Account) *string {
	future := c.manager.GetAuthToken(account, authenticator.TokenTypePassword, nil)
	result, err := future.Result(Timeout)
	if err != nil {
		c.logFailure("getPassword", err)
		return nil
	}
	token, _ := result.GetStringPtr(bundle.KeyAuthToken)
	return token
}

// logFailure records a normalised operation failure: cancellations at
// info, everything else at warn.
func (c *Client) logFailure(op string, err error) {
	if errors.Is(err, accountmanager.ErrCanceled) {
		c.log.Info(op+" canceled", zap.Error(err))
		return
	}
	c.log.Warn(op+" failed", zap.Error(err))
}
