package ports

// Hasher defines the interface for computing content fingerprints.
//
//go:generate mockgen -destination=mocks/mock_hasher.go -package=mocks -source=hasher.go
type Hasher interface {
	// Fingerprint hashes the contents of the given files. Missing files
	// contribute a fixed marker instead of failing.
	Fingerprint(paths []string) (string, error)
}
