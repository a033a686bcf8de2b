// Package verify holds the online credential verification entry
// points. Verification against live IMAP/POP3/WebDAV servers is not
// implemented yet; every check fails with an unsupported-operation
// error without touching the network.
package verify

import (
	"context"

	"go.uber.org/zap"

	"github.com/k9mail/accountauth/internal/authenticator"
	"github.com/k9mail/accountauth/internal/bundle"
)

// Checker verifies credentials against the mail server named by the
// request options.
type Checker struct {
	log *zap.Logger
}

// NewChecker constructs a Checker.
func NewChecker(log *zap.Logger) *Checker {
	return &Checker{log: log}
}

// CheckCredentials dispatches on the protocol option. All protocols
// are currently unsupported.
func (c *Checker) CheckCredentials(ctx context.Context, options *bundle.Bundle) (bool, error) {
	protocol, _ := options.GetString(authenticator.KeyProtocol)
	switch protocol {
	case "imap":
		return c.checkIMAP(ctx, options)
	case "pop3":
		return c.checkPOP3(ctx, options)
	case "webdav":
		return c.checkWebDAV(ctx, options)
	}
	return false, authenticator.NewError(authenticator.CodeUnsupportedOperation,
		"online password check not yet supported")
}

func (c *Checker) checkIMAP(ctx context.Context, options *bundle.Bundle) (bool, error) {
	return false, authenticator.NewError(authenticator.CodeUnsupportedOperation,
		"online password check not yet supported")
}

func (c *Checker) checkPOP3(ctx context.Context, options *bundle.Bundle) (bool, error) {
	return false, authenticator.NewError(authenticator.CodeUnsupportedOperation,
		"online password check not yet supported")
}

func (c *Checker) checkWebDAV(ctx context.Context, options *bundle.Bundle) (bool, error) {
	return false, authenticator.NewError(authenticator.CodeUnsupportedOperation,
		"online password check not yet supported")
}
