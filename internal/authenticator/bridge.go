package authenticator

import (
	"context"

	"go.uber.org/zap"

	"github.com/k9mail/accountauth/internal/bundle"
	"github.com/k9mail/accountauth/internal/models"
)

// Response is the host's asynchronous reply sink for authenticator
// operations.
type Response interface {
	// OnResult delivers a result bundle.
	OnResult(result *bundle.Bundle)
	// OnError delivers a failure outside the bundle channel.
	OnError(code int, message string)
}

// Intent instructs the host to launch an activity so the operation can
// be resumed interactively.
type Intent struct {
	// Activity names the UI to launch.
	Activity string
	// Extras carries the activity's string arguments.
	Extras map[string]string
}

// Bridge adapts the synchronous Backend to the host authenticator
// protocol. Each inbound call is performed synchronously against the
// backend, and backend errors are projected into error bundles; the
// bridge never propagates a typed failure into the host. The error
// return is reserved for network faults.
type Bridge struct {
	backend *Backend
	log     *zap.Logger
}

// NewBridge constructs a Bridge over the given backend.
func NewBridge(backend *Backend, log *zap.Logger) *Bridge {
	return &Bridge{backend: backend, log: log}
}

// EditProperties reports its failure through the response sink's error
// channel; this is the only operation that does not use bundle-borne
// errors.
func (br *Bridge) EditProperties(response Response, accountType string) *bundle.Bundle {
	// this method applies to the whole authenticator, not a
	// particular account
	response.OnError(CodeUnsupportedOperation, "editProperties not supported")
	return nil
}

// AddAccount registers a new account through the backend.
func (br *Bridge) AddAccount(ctx context.Context, response Response, accountType, authTokenType string, requiredFeatures []string, options *bundle.Bundle) (*bundle.Bundle, error) {
	return br.convert(br.backend.AddAccount(ctx, accountType, authTokenType, requiredFeatures, options))
}

// ConfirmCredentials checks the supplied credentials through the
// backend.
func (br *Bridge) ConfirmCredentials(ctx context.Context, response Response, account models.Account, options *bundle.Bundle) (*bundle.Bundle, error) {
	return br.convert(br.backend.ConfirmCredentials(ctx, account, options))
}

// UpdateCredentials updates the stored credentials. When options
// request interactive mode the backend is not consulted; the result is
// a launch-UI instruction naming the credential-entry activity.
func (br *Bridge) UpdateCredentials(ctx context.Context, response Response, account models.Account, authTokenType string, options *bundle.Bundle) (*bundle.Bundle, error) {
	br.log.Debug("bridge: updateCredentials")

	if options == nil {
		result := bundle.New()
		result.PutInt(bundle.KeyErrorCode, CodeBadRequest)
		result.PutString(bundle.KeyErrorMessage, "missing authenticator options")
		return result, nil
	}
	if options.GetBool(KeyInteractive, false) {
		intent := &Intent{
			Activity: CredentialsActivity,
			Extras: map[string]string{
				ParamUsername:      account.Name,
				ParamAuthTokenType: authTokenType,
			},
		}
		result := bundle.New()
		result.Put(bundle.KeyIntent, intent)
		return result, nil
	}
	return br.convert(br.backend.UpdateCredentials(ctx, account, authTokenType, options))
}

// HasFeatures checks the account's features through the backend.
func (br *Bridge) HasFeatures(ctx context.Context, response Response, account models.Account, features []string) (*bundle.Bundle, error) {
	return br.convert(br.backend.HasFeatures(ctx, account, features))
}

// GetAuthToken fetches an auth token through the backend.
func (br *Bridge) GetAuthToken(ctx context.Context, response Response, account models.Account, authTokenType string, options *bundle.Bundle) (*bundle.Bundle, error) {
	return br.convert(br.backend.GetAuthToken(ctx, account, authTokenType, options))
}

// GetAuthTokenLabel returns the label for an auth token type.
func (br *Bridge) GetAuthTokenLabel(authTokenType string) (string, bool) {
	return br.backend.GetAuthTokenLabel(authTokenType)
}

// GetAccountRemovalAllowed reports whether the account may be removed.
func (br *Bridge) GetAccountRemovalAllowed(ctx context.Context, response Response, account models.Account) (*bundle.Bundle, error) {
	return br.convert(br.backend.GetAccountRemovalAllowed(ctx, account))
}

// convert projects a typed backend error into its bundle form. Errors
// without a host code pass through as the network-fault channel.
func (br *Bridge) convert(result *bundle.Bundle, err error) (*bundle.Bundle, error) {
	if err == nil {
		return result, nil
	}
	if e, ok := AsError(err); ok {
		return e.ToBundle(), nil
	}
	return nil, err
}
