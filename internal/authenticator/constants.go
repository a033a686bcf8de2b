package authenticator

import "strings"

// AccountType identifies this authenticator within the host account
// manager namespace.
const AccountType = "com.fsck.k9.authenticator.AccountType"

// TokenTypePassword is the only supported auth token type. Its value
// mirrors the account's password slot so callers can retrieve the
// password through the token-fetch path.
const TokenTypePassword = "token_password"

// FeatureUUIDPrefix prefixes the only recognised feature string,
// "uuid:<UUID>".
const FeatureUUIDPrefix = "uuid:"

// Option keys recognised in request bundles.
const (
	// KeyOnline selects online verification; defaults to true.
	KeyOnline = "online"
	// KeyInteractive asks the bridge to launch the credential-entry
	// UI instead of updating credentials directly.
	KeyInteractive = "interactive"
	// KeyUUID is the userdata key holding the account's stable UUID.
	KeyUUID = "uuid"
	// KeyServer, KeyPort, KeySecurity and KeyProtocol are connection
	// parameters carried in userdata for online verification.
	KeyServer   = "server"
	KeyPort     = "port"
	KeySecurity = "security"
	KeyProtocol = "protocol"
)

// CredentialsActivity names the credential-entry UI referenced by
// launch-UI intents.
const CredentialsActivity = "com.fsck.k9.authenticator.AuthenticatorActivity"

// Intent extras used by launch-UI instructions.
const (
	ParamUsername      = "username"
	ParamAuthTokenType = "authtokenType"
)

// FeatureToUUID extracts the UUID from a feature string. A feature
// qualifies iff it starts with the "uuid:" prefix and carries a
// non-empty UUID after it.
func FeatureToUUID(feature string) (string, bool) {
	if len(feature) > len(FeatureUUIDPrefix) && strings.HasPrefix(feature, FeatureUUIDPrefix) {
		return feature[len(FeatureUUIDPrefix):], true
	}
	return "", false
}
