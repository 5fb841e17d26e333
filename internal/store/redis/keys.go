package redis

const (
	// KeyPrefixSecret is the prefix for per-secret keys
	KeyPrefixSecret = "expiryguard:secret:"
	// KeyAllSecrets is the key for the set of all secret IDs
	KeyAllSecrets = "expiryguard:secrets:all"
	// KeyByExpiry is the ZSET indexing secret IDs by expiry epoch-day
	KeyByExpiry = "expiryguard:secrets:by_expiry"
)

// SecretKey returns the Redis key for a secret by ID
func SecretKey(id string) string {
	return KeyPrefixSecret + id
}
