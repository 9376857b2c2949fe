package session

// Fixed keystore keys. The persisted layout is three keyed values, restored
// at startup to pre-populate the session before the first network call.
const (
	KeyUser         = "user"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Keystore persists string values under fixed keys.
type Keystore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}
