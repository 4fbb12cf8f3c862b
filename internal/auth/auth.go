// Package auth produces Kalshi request signatures using RSA-PSS.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Header names expected by the venue on every authenticated connection.
const (
	HeaderKey       = "KALSHI-ACCESS-KEY"
	HeaderSignature = "KALSHI-ACCESS-SIGNATURE"
	HeaderTimestamp = "KALSHI-ACCESS-TIMESTAMP"
)

// WebSocketPath is the path signed for WebSocket handshakes.
const WebSocketPath = "/trade-api/ws/v2"

// Signer holds the API key ID and private key used to sign requests.
//
// PSS uses a random salt, so signing the same input twice yields different
// bytes; callers must not compare or cache signatures.
type Signer struct {
	KeyID      string
	PrivateKey *rsa.PrivateKey
}

// NewSigner loads a signer from a key ID and a PEM private key file.
// Any failure here is fatal to the streaming path: the caller should fall
// back to polling rather than retry.
func NewSigner(keyID, privateKeyPath string) (*Signer, error) {
	if keyID == "" {
		return nil, fmt.Errorf("API key ID is required")
	}
	if privateKeyPath == "" {
		return nil, fmt.Errorf("private key path is required")
	}

	key, err := LoadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}

	return &Signer{KeyID: keyID, PrivateKey: key}, nil
}

// LoadPrivateKey loads an RSA private key from a PEM file.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	// PKCS#8 first (newer format)
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("key is not an RSA private key")
		}
		return rsaKey, nil
	}

	// Fall back to PKCS#1
	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return rsaKey, nil
}

// Sign produces a base64 RSA-PSS signature over timestampMs + method + path.
func (s *Signer) Sign(timestampMs int64, method, path string) (string, error) {
	message := strconv.FormatInt(timestampMs, 10) + method + path
	hashed := sha256.Sum256([]byte(message))

	sig, err := rsa.SignPSS(
		rand.Reader,
		s.PrivateKey,
		crypto.SHA256,
		hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash},
	)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}

	return base64.StdEncoding.EncodeToString(sig), nil
}

// Headers builds the auth headers for one connection attempt. The timestamp
// is taken from the wall clock at call time, so headers are single-use and
// must be regenerated for every attempt.
func (s *Signer) Headers(method, path string) (map[string]string, error) {
	timestampMs := time.Now().UnixMilli()

	sig, err := s.Sign(timestampMs, method, path)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderKey:       s.KeyID,
		HeaderSignature: sig,
		HeaderTimestamp: strconv.FormatInt(timestampMs, 10),
	}, nil
}

// WebSocketHeaders builds auth headers for the WebSocket handshake.
func (s *Signer) WebSocketHeaders() (map[string]string, error) {
	return s.Headers("GET", WebSocketPath)
}
