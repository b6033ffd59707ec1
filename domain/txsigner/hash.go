package txsigner

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// DoubleSha256 calculates sha256(sha256(b)).
func DoubleSha256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}

// Hash160 calculates ripemd160(sha256(b)), the hash committed to by
// pay-to-pubkey-hash and pay-to-script-hash outputs.
func Hash160(b []byte) []byte {
	sha := sha256.Sum256(b)
	hasher := ripemd160.New()
	_, _ = hasher.Write(sha[:])
	return hasher.Sum(nil)
}
