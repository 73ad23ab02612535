package qstash

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignatureHeader carries the JWT QStash signs every delivery with.
const SignatureHeader = "Upstash-Signature"

var ErrInvalidSignature = errors.New("invalid qstash signature")

type signatureClaims struct {
	Body string `json:"body"`
	jwt.RegisteredClaims
}

// Verify checks that a delivery of body to the destination URL was signed
// by QStash. The current signing key is tried first, then the next one, so
// deliveries keep verifying while keys rotate.
func (c *Client) Verify(signature string, body []byte) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("%w: missing %s header", ErrInvalidSignature, SignatureHeader)
	}

	err := verifyWithKey(signature, c.currentSigningKey, c.destinationURL, body)
	if err == nil {
		return nil
	}
	if c.nextSigningKey == "" {
		return err
	}
	if nextErr := verifyWithKey(signature, c.nextSigningKey, c.destinationURL, body); nextErr != nil {
		return errors.Join(err, nextErr)
	}
	return nil
}

func verifyWithKey(signature, key, destination string, body []byte) error {
	if key == "" {
		return fmt.Errorf("%w: signing key is empty", ErrInvalidSignature)
	}

	claims := &signatureClaims{}
	_, err := jwt.ParseWithClaims(signature, claims,
		func(*jwt.Token) (any, error) { return []byte(key), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("Upstash"),
		jwt.WithSubject(destination),
		jwt.WithLeeway(time.Second),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if strings.TrimRight(claims.Body, "=") != bodyHash(body) {
		return fmt.Errorf("%w: body hash mismatch", ErrInvalidSignature)
	}
	return nil
}

func bodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
