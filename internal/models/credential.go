package models

// Credential is the persisted password verifier and the salt it was
// derived with, both hex-encoded.
type Credential struct {
	SaltHex     string
	VerifierHex string
}
