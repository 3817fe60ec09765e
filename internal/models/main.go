// Package models defines the core data structures for identities and their credentials.
package models

// Identity is a fixed user record known to the dashboard.
// The JSON field order is the one used by the persisted session mirror.
type Identity struct {
	// ID is the opaque identifier of the identity.
	ID string `json:"id" yaml:"id"`
	// Username is the login handle.
	Username string `json:"username" yaml:"username"`
	// Name is the display name.
	Name string `json:"name" yaml:"name"`
	// Email is the contact address.
	Email string `json:"email" yaml:"email"`
	// Premium is the entitlement flag.
	Premium bool `json:"premium" yaml:"premium"`
	// CreatedAt is a calendar date string (YYYY-MM-DD).
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
}

// Valid reports whether the record carries the fields a rehydrated session needs.
func (i Identity) Valid() bool {
	return i.ID != "" && i.Username != ""
}

// Credentials maps a login handle to its plaintext shared secret.
type Credentials map[string]string

// Fixtures is the injected identity table together with its credential table.
type Fixtures struct {
	// Identities is the fixed list of known identities.
	Identities []Identity `yaml:"identities"`
	// Credentials holds the secret for each handle.
	Credentials Credentials `yaml:"credentials"`
}

// DefaultFixtures returns the built-in identity table.
func DefaultFixtures() Fixtures {
	return Fixtures{
		Identities: []Identity{
			{
				ID:        "1",
				Username:  "admin",
				Name:      "Admin User",
				Email:     "admin@example.com",
				Premium:   true,
				CreatedAt: "2023-01-01",
			},
			{
				ID:        "2",
				Username:  "dev1",
				Name:      "Developer One",
				Email:     "dev1@example.com",
				Premium:   true,
				CreatedAt: "2023-02-15",
			},
			{
				ID:        "3",
				Username:  "user",
				Name:      "Regular User",
				Email:     "user@example.com",
				Premium:   false,
				CreatedAt: "2023-03-20",
			},
		},
		Credentials: Credentials{
			"admin": "12345",
			"dev1":  "12345",
			"user":  "12345",
		},
	}
}

// Entry is a single record held by a dependent state container.
type Entry struct {
	// ID is the unique identifier for the entry.
	ID string `json:"id"`
	// Value is the opaque payload supplied by the client.
	Value string `json:"value"`
	// CreatedAt is the Unix time the entry was added.
	CreatedAt int64 `json:"createdAt"`
}
