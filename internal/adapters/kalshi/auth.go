package kalshi

// auth.go — credential loading and JWT token management.
//
// Credentials live in a local JSON secret file and are validated exactly once,
// at client construction. Tokens are RS256 JWTs with a 5 minute lifetime,
// cached and treated as expired 60 seconds before their true expiry so a
// request never races the server-side cutoff.

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

const (
	tokenTTL    = 5 * time.Minute
	tokenBuffer = 60 * time.Second
)

// Credentials is the content of the secret file.
type Credentials struct {
	APIKeyID   string `json:"api_key_id"`
	PrivateKey string `json:"private_key"`
}

// LoadCredentials reads and validates the credential file. Every failure mode
// (missing file, unreadable, malformed JSON, missing fields, unparseable key)
// is a ConfigError: the process must not proceed.
func LoadCredentials(path string) (Credentials, *rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, nil, &domain.ConfigError{
			Reason: fmt.Sprintf("credential file %q not readable", path),
			Err:    err,
		}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, nil, &domain.ConfigError{
			Reason: fmt.Sprintf("credential file %q is not valid JSON", path),
			Err:    err,
		}
	}

	if creds.APIKeyID == "" {
		return Credentials{}, nil, &domain.ConfigError{Reason: "api_key_id is required in credential file"}
	}
	creds.PrivateKey = strings.TrimSpace(creds.PrivateKey)
	if creds.PrivateKey == "" {
		return Credentials{}, nil, &domain.ConfigError{Reason: "private_key is required in credential file"}
	}

	key, err := parsePrivateKey(creds.PrivateKey)
	if err != nil {
		return Credentials{}, nil, &domain.ConfigError{Reason: "failed to parse private key", Err: err}
	}

	return creds, key, nil
}

// parsePrivateKey accepts PKCS#1 and PKCS#8 PEM-encoded RSA keys.
func parsePrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("not a PKCS#1 or PKCS#8 key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("PKCS#8 key is %T, want *rsa.PrivateKey", parsed)
	}
	return key, nil
}

// tokenSource caches one signed token and refreshes it inside the expiry
// buffer. The clock is injectable for tests.
type tokenSource struct {
	keyID  string
	key    *rsa.PrivateKey
	ttl    time.Duration
	buffer time.Duration
	now    func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newTokenSource(keyID string, key *rsa.PrivateKey) *tokenSource {
	return &tokenSource{
		keyID:  keyID,
		key:    key,
		ttl:    tokenTTL,
		buffer: tokenBuffer,
		now:    time.Now,
	}
}

// Token returns a cached token while it remains valid past the buffer, and
// signs a fresh one otherwise.
func (ts *tokenSource) Token() (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := ts.now()
	if ts.token != "" && now.Before(ts.expires.Add(-ts.buffer)) {
		return ts.token, nil
	}

	expires := now.Add(ts.ttl)
	claims := jwt.MapClaims{
		"sub": ts.keyID,
		"iat": now.Unix(),
		"exp": expires.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(ts.key)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}

	ts.token = signed
	ts.expires = expires
	return signed, nil
}
