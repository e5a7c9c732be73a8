package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/alexbotov/gpay/internal/rng"
	"github.com/pkg/errors"
)

// SaltSize is the number of random bytes behind every salt
const SaltSize = 32

// Entropy supplies random bytes for salts
type Entropy interface {
	GenerateBytes(n int) ([]byte, error)
}

// Material is the salt, hash token and signature produced for one message
type Material struct {
	Salt      string
	HashToken string
	Signature string
}

// Engine generates salts and signs or verifies parameter sets.
// It is safe for concurrent use when its Entropy is.
type Engine struct {
	entropy Entropy
}

// NewEngine returns an Engine reading from entropy, or from the process-wide
// CSPRNG when entropy is nil.
func NewEngine(entropy Entropy) *Engine {
	if entropy == nil {
		entropy = rng.New()
	}
	return &Engine{entropy: entropy}
}

// GenerateSalt returns SaltSize fresh random bytes, base64 encoded
func (e *Engine) GenerateSalt() (string, error) {
	buf, err := e.entropy.GenerateBytes(SaltSize)
	if err != nil {
		return "", errors.Wrap(err, "generate salt")
	}
	if len(buf) != SaltSize {
		return "", errors.Errorf("generate salt: got %d random bytes, want %d", len(buf), SaltSize)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// NewMaterial signs params under a fresh salt
func (e *Engine) NewMaterial(password, secretKey string, params Params) (*Material, error) {
	salt, err := e.GenerateSalt()
	if err != nil {
		return nil, err
	}
	token := DeriveHashToken(salt, password)
	return &Material{
		Salt:      salt,
		HashToken: token,
		Signature: Sign(token, params, secretKey),
	}, nil
}

// DeriveHashToken concatenates salt and password. The result is not hashed.
func DeriveHashToken(salt, password string) string {
	return salt + password
}

// Sign returns base64(HMAC-SHA256(secretKey, hashToken + Canonicalize(params)))
func Sign(hashToken string, params Params, secretKey string) string {
	return base64.StdEncoding.EncodeToString(mac(hashToken, params, secretKey))
}

// Verify reports whether signature was produced over params with the given
// salt, password and secret key. The comparison runs in constant time.
func Verify(signature, salt, password string, params Params, secretKey string) bool {
	expected := Sign(DeriveHashToken(salt, password), params, secretKey)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func mac(hashToken string, params Params, secretKey string) []byte {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(hashToken))
	h.Write([]byte(Canonicalize(params)))
	return h.Sum(nil)
}
