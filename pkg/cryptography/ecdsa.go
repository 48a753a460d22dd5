package cryptography

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

const (
	signaturePrefix = "\x19Ethereum Signed Message:\n"
	signatureLen    = 65
)

// ChallengeDigest returns the keccak digest of a challenge message in
// wallet personal-sign form, so signatures produced by standard wallet
// tooling verify here unmodified.
func ChallengeDigest(msg string) []byte {
	return ethCrypto.Keccak256([]byte(fmt.Sprintf("%s%d%s", signaturePrefix, len(msg), msg)))
}

// GenerateKey creates a new secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	pk, err := ethCrypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generating ecdsa key")
	}

	return pk, nil
}

// Address derives the hex wallet address of a public key.
func Address(pub *ecdsa.PublicKey) string {
	return ethCrypto.PubkeyToAddress(*pub).Hex()
}

// SignChallenge signs a challenge message, returning the 65-byte
// recoverable signature.
func SignChallenge(priv *ecdsa.PrivateKey, msg string) ([]byte, error) {
	sig, err := ethCrypto.Sign(ChallengeDigest(msg), priv)
	if err != nil {
		return nil, errors.Wrap(err, "signing challenge")
	}

	return sig, nil
}

// VerifyChallenge recovers the public key from a recoverable signature
// over the challenge message and compares the derived address against
// the claimed one.
func VerifyChallenge(address, msg string, sig []byte) (bool, error) {
	if len(sig) != signatureLen {
		return false, errors.New("signature must be 65 bytes")
	}

	// wallets emit V as 27/28
	s := make([]byte, signatureLen)
	copy(s, sig)
	if s[signatureLen-1] >= 27 {
		s[signatureLen-1] -= 27
	}

	pub, err := ethCrypto.SigToPub(ChallengeDigest(msg), s)
	if err != nil {
		return false, errors.Wrap(err, "recovering public key")
	}

	return strings.EqualFold(Address(pub), address), nil
}
