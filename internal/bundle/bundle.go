// Package bundle provides the ordered key/value container used as the
// universal request and result vehicle between the authenticator, the
// account manager, and their callers.
package bundle

// Keys shared with the host account manager protocol.
const (
	// KeyAccountName is the user-visible account name.
	KeyAccountName = "authAccount"
	// KeyAccountType is the authenticator's account type.
	KeyAccountType = "accountType"
	// KeyPassword is the account secret; may be present and null.
	KeyPassword = "password"
	// KeyAuthToken is an auth token value.
	KeyAuthToken = "authtoken"
	// KeyBooleanResult carries the outcome of a boolean operation.
	KeyBooleanResult = "booleanResult"
	// KeyUserData is a nested bundle of userdata entries.
	KeyUserData = "userdata"
	// KeyIntent carries a launch-UI instruction.
	KeyIntent = "intent"
	// KeyErrorCode marks a bundle as an error result.
	KeyErrorCode = "errorCode"
	// KeyErrorMessage is the human-readable error description.
	KeyErrorMessage = "errorMessage"
)

// Bundle is an insertion-ordered mapping from short string keys to
// tagged values. A string value may be present and null, which is
// distinct from the key being absent.
//
// The zero value is not usable; construct with New.
type Bundle struct {
	keys   []string
	values map[string]any
}

// New returns an empty Bundle.
func New() *Bundle {
	return &Bundle{values: make(map[string]any)}
}

// put stores value under key, keeping the key's original position if
// it is already present.
func (b *Bundle) put(key string, value any) {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
}

// PutString stores a non-null string value.
func (b *Bundle) PutString(key, value string) {
	b.put(key, value)
}

// PutStringPtr stores a nullable string value. A nil pointer stores an
// explicit null.
func (b *Bundle) PutStringPtr(key string, value *string) {
	if value == nil {
		b.put(key, nil)
		return
	}
	b.put(key, *value)
}

// PutBool stores a boolean value.
func (b *Bundle) PutBool(key string, value bool) {
	b.put(key, value)
}

// PutInt stores an integer value.
func (b *Bundle) PutInt(key string, value int) {
	b.put(key, value)
}

// PutBundle stores a nested bundle.
func (b *Bundle) PutBundle(key string, value *Bundle) {
	b.put(key, value)
}

// Put stores an arbitrary tagged value, such as an intent payload.
func (b *Bundle) Put(key string, value any) {
	b.put(key, value)
}

// Has reports whether key is present, including present-and-null keys.
func (b *Bundle) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Len returns the number of keys.
func (b *Bundle) Len() int {
	return len(b.keys)
}

// Keys returns the keys in insertion order.
func (b *Bundle) Keys() []string {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	return keys
}

// Get returns the raw value stored under key.
func (b *Bundle) Get(key string) (any, bool) {
	v, ok := b.values[key]
	return v, ok
}

// GetString returns the string stored under key. It reports false when
// the key is absent, null, or not a string.
func (b *Bundle) GetString(key string) (string, bool) {
	s, ok := b.values[key].(string)
	return s, ok
}

// GetStringPtr returns the nullable string stored under key. The
// second return reports key presence; a present-and-null value yields
// (nil, true).
func (b *Bundle) GetStringPtr(key string) (*string, bool) {
	v, ok := b.values[key]
	if !ok {
		return nil, false
	}
	if s, ok := v.(string); ok {
		return &s, true
	}
	return nil, true
}

// GetBool returns the boolean stored under key, or def when the key is
// absent or not a boolean.
func (b *Bundle) GetBool(key string, def bool) bool {
	if v, ok := b.values[key].(bool); ok {
		return v
	}
	return def
}

// GetInt returns the integer stored under key.
func (b *Bundle) GetInt(key string) (int, bool) {
	v, ok := b.values[key].(int)
	return v, ok
}

// GetBundle returns the nested bundle stored under key.
func (b *Bundle) GetBundle(key string) (*Bundle, bool) {
	v, ok := b.values[key].(*Bundle)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
