// Package authenticator implements the account authenticator: a
// synchronous backend holding the option-validation and credential
// logic, and a bridge adapting it to the host authenticator protocol.
package authenticator

import (
	"context"

	"go.uber.org/zap"

	"github.com/k9mail/accountauth/internal/bundle"
	"github.com/k9mail/accountauth/internal/models"
)

// AccountStore defines the persistence operations required by the
// backend. Implementations must be safe for concurrent use; the
// backend adds no synchronisation of its own.
type AccountStore interface {
	// AddAccountExplicitly inserts the account with its password and
	// userdata. The insert is idempotent, keyed by (name, type).
	AddAccountExplicitly(ctx context.Context, account models.Account, password *string, userdata models.UserData) error
	// SetPassword stores the account's password slot; nil unsets it.
	SetPassword(ctx context.Context, account models.Account, password *string) error
	// GetPassword returns the account's password slot, nil when unset.
	GetPassword(ctx context.Context, account models.Account) (*string, error)
	// SetAuthToken stores an auth token for the account.
	SetAuthToken(ctx context.Context, account models.Account, tokenType string, token *string) error
	// GetUserData returns a userdata value, "" when the key is absent.
	GetUserData(ctx context.Context, account models.Account, key string) (string, error)
}

// OnlineVerifier checks credentials against the live mail server named
// by the request options.
type OnlineVerifier interface {
	// CheckCredentials returns whether the credentials were accepted.
	CheckCredentials(ctx context.Context, options *bundle.Bundle) (bool, error)
}

// Backend is the synchronous authenticator core. It validates request
// option bundles, upholds the account-type and feature invariants, and
// keeps the password slot and the password auth token in sync on every
// write path it owns.
//
// Backend is re-entrant; thread safety of the underlying store is the
// store's responsibility.
type Backend struct {
	store    AccountStore
	verifier OnlineVerifier
	log      *zap.Logger
}

// NewBackend constructs a Backend over the given store and online
// verifier.
func NewBackend(store AccountStore, verifier OnlineVerifier, log *zap.Logger) *Backend {
	return &Backend{store: store, verifier: verifier, log: log}
}

// AddAccount registers a new account of the given type.
//
// requiredFeatures must contain exactly one "uuid:<UUID>" feature; the
// parsed UUID is persisted in the account's userdata. authTokenType may
// be empty; when it names the password token type, the result bundle is
// augmented with the auth token. Unless options disable online mode,
// verification is attempted before the store is touched.
func (b *Backend) AddAccount(ctx context.Context, accountType, authTokenType string, requiredFeatures []string, options *bundle.Bundle) (*bundle.Bundle, error) {
	b.log.Debug("backend: addAccount")

	if accountType != AccountType {
		return nil, Errorf(CodeBadArguments, "invalid account type requested: %s", accountType)
	}
	if authTokenType != "" && !isValidAuthTokenType(authTokenType) {
		return nil, Errorf(CodeBadArguments, "unsupported auth token type: %s", authTokenType)
	}
	if options == nil {
		return nil, NewError(CodeBadRequest, "missing options (username, password, etc.)")
	}
	if len(requiredFeatures) != 1 {
		return nil, NewError(CodeBadRequest, "missing UUID feature")
	}
	uid, ok := FeatureToUUID(requiredFeatures[0])
	if !ok {
		return nil, NewError(CodeBadRequest, "missing UUID feature")
	}
	accountName, _ := options.GetString(bundle.KeyAccountName)
	if accountName == "" {
		return nil, NewError(CodeBadArguments, "empty account name")
	}
	account := models.Account{Name: accountName, Type: accountType}

	// online mode is the default (although unsupported for now)
	if options.GetBool(KeyOnline, true) {
		verified, err := b.verifier.CheckCredentials(ctx, options)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, NewError(CodeBadArguments, "verification failed")
		}
	}

	// online check successful OR we're in offline mode

	password, _ := options.GetStringPtr(bundle.KeyPassword)

	userdata := models.UserData{KeyUUID: uid}
	if extra, ok := options.GetBundle(bundle.KeyUserData); ok {
		for _, key := range extra.Keys() {
			if v, ok := extra.GetString(key); ok && key != KeyUUID {
				userdata[key] = v
			}
		}
	}

	if err := b.store.AddAccountExplicitly(ctx, account, password, userdata); err != nil {
		return nil, remoteError("addAccountExplicitly", err)
	}
	// callers should not need AccountStore.GetPassword, so the
	// password is mirrored as an auth token
	if err := b.store.SetAuthToken(ctx, account, TokenTypePassword, password); err != nil {
		return nil, remoteError("setAuthToken", err)
	}

	if authTokenType == "" {
		result := bundle.New()
		result.PutString(bundle.KeyAccountName, accountName)
		result.PutString(bundle.KeyAccountType, accountType)
		return result, nil
	}
	return b.GetAuthToken(ctx, account, authTokenType, options)
}

// ConfirmCredentials checks that the caller knows the account's
// credentials. In offline mode the supplied password is compared
// byte-wise with the stored slot; two absent passwords also match,
// which lets callers verify a password is unset.
func (b *Backend) ConfirmCredentials(ctx context.Context, account models.Account, options *bundle.Bundle) (*bundle.Bundle, error) {
	b.log.Debug("backend: confirmCredentials")

	if options == nil {
		return nil, NewError(CodeBadRequest, "no options specified")
	}

	var confirmed bool
	if options.GetBool(KeyOnline, true) {
		verified, err := b.verifier.CheckCredentials(ctx, options)
		if err != nil {
			return nil, err
		}
		confirmed = verified
	} else {
		given, _ := options.GetStringPtr(bundle.KeyPassword)
		expected, err := b.store.GetPassword(ctx, account)
		if err != nil {
			return nil, remoteError("getPassword", err)
		}
		confirmed = (given == nil && expected == nil) ||
			(given != nil && expected != nil && *given == *expected)
	}
	return booleanBundle(confirmed), nil
}

// UpdateCredentials replaces the account's stored credentials with the
// password from options, which may be explicitly null to unset it.
// Both the password slot and the password auth token are written.
func (b *Backend) UpdateCredentials(ctx context.Context, account models.Account, authTokenType string, options *bundle.Bundle) (*bundle.Bundle, error) {
	b.log.Debug("backend: updateCredentials")

	if authTokenType != "" && !isValidAuthTokenType(authTokenType) {
		return nil, Errorf(CodeBadArguments, "unsupported auth token type: %s", authTokenType)
	}
	if options == nil {
		return nil, NewError(CodeBadRequest, "missing options")
	}
	// password may be null here
	password, _ := options.GetStringPtr(bundle.KeyPassword)

	if err := b.store.SetPassword(ctx, account, password); err != nil {
		return nil, remoteError("setPassword", err)
	}
	if err := b.store.SetAuthToken(ctx, account, TokenTypePassword, password); err != nil {
		return nil, remoteError("setAuthToken", err)
	}

	if authTokenType == "" {
		result := bundle.New()
		result.PutString(bundle.KeyAccountName, account.Name)
		result.PutString(bundle.KeyAccountType, account.Type)
		return result, nil
	}
	return b.GetAuthToken(ctx, account, authTokenType, options)
}

// HasFeatures reports whether the account supports all the given
// authenticator-specific features. The empty feature set is trivially
// satisfied; the only recognised non-empty shape is a single
// "uuid:<UUID>" feature compared against the stored UUID.
func (b *Backend) HasFeatures(ctx context.Context, account models.Account, features []string) (*bundle.Bundle, error) {
	b.log.Debug("backend: hasFeatures")

	if len(features) == 0 {
		// yes, we have at least "no feature"
		return booleanBundle(true), nil
	}
	hasFeature := false
	if len(features) == 1 {
		if expected, ok := FeatureToUUID(features[0]); ok {
			actual, err := b.store.GetUserData(ctx, account, KeyUUID)
			if err != nil {
				return nil, remoteError("getUserData", err)
			}
			hasFeature = expected == actual
		}
	}
	return booleanBundle(hasFeature), nil
}

// GetAuthToken returns the auth token of the given type for the
// account. Only the password token type is supported; its value is the
// stored password, which may be null.
func (b *Backend) GetAuthToken(ctx context.Context, account models.Account, authTokenType string, options *bundle.Bundle) (*bundle.Bundle, error) {
	b.log.Debug("backend: getAuthToken")

	if authTokenType != TokenTypePassword {
		return nil, Errorf(CodeBadArguments, "unsupported auth token type: %s", authTokenType)
	}
	password, err := b.store.GetPassword(ctx, account)
	if err != nil {
		return nil, remoteError("getPassword", err)
	}
	result := bundle.New()
	result.PutString(bundle.KeyAccountName, account.Name)
	result.PutString(bundle.KeyAccountType, account.Type)
	result.PutStringPtr(bundle.KeyAuthToken, password)
	return result, nil
}

// GetAuthTokenLabel returns the label for the given auth token type,
// reporting false for unknown types.
func (b *Backend) GetAuthTokenLabel(authTokenType string) (string, bool) {
	if authTokenType == TokenTypePassword {
		return "Account password", true
	}
	return "", false
}

// GetAccountRemovalAllowed reports whether the account may be removed.
func (b *Backend) GetAccountRemovalAllowed(ctx context.Context, account models.Account) (*bundle.Bundle, error) {
	// for now, allow any account removal
	return booleanBundle(true), nil
}

// EditProperties applies to the whole authenticator rather than a
// particular account and is not supported.
func (b *Backend) EditProperties(accountType string) (*bundle.Bundle, error) {
	return nil, NewError(CodeUnsupportedOperation, "editProperties not supported")
}

func isValidAuthTokenType(authTokenType string) bool {
	return authTokenType == TokenTypePassword
}

func booleanBundle(value bool) *bundle.Bundle {
	b := bundle.New()
	b.PutBool(bundle.KeyBooleanResult, value)
	return b
}
