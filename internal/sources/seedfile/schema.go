package seedfile

// File is the top-level structure of a secrets seed file.
type File struct {
	Secrets []SecretEntry `yaml:"secrets"`
}

// SecretEntry is one seeded secret.
type SecretEntry struct {
	Name       string `yaml:"name"`
	OwnerEmail string `yaml:"owner_email"`
	ExpiryDate string `yaml:"expiry_date"` // calendar date, "2006-01-02"
	Notes      string `yaml:"notes,omitempty"`
}
