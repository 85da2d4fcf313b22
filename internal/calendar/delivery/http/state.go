package http

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultStateTTL = 15 * time.Minute
	// stateClockSkew tolerates issuers whose clock runs slightly ahead.
	stateClockSkew = time.Minute
)

var (
	errStateMalformed = errors.New("malformed state")
	errStateSignature = errors.New("state signature mismatch")
	errStateExpired   = errors.New("state expired")
	errStateFuture    = errors.New("state issued in the future")
)

// stateSigner binds a consent round trip to a user id.
// Format: base64url(userID).nonce.issuedAtUnix.hex(hmac-sha256).
type stateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newStateSigner(secret string, ttl time.Duration) (*stateSigner, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate state secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &stateSigner{secret: key, ttl: ttl, now: time.Now}, nil
}

func (s *stateSigner) Sign(userID string) string {
	payload := strings.Join([]string{
		base64.RawURLEncoding.EncodeToString([]byte(userID)),
		uuid.NewString(),
		strconv.FormatInt(s.now().Unix(), 10),
	}, ".")
	return payload + "." + s.mac(payload)
}

// Verify returns the user id a state was issued for.
func (s *stateSigner) Verify(state string) (string, error) {
	idx := strings.LastIndexByte(state, '.')
	if idx < 0 {
		return "", errStateMalformed
	}
	payload, sigHex := state[:idx], state[idx+1:]

	expected, err := hex.DecodeString(sigHex)
	if err != nil {
		return "", errStateMalformed
	}
	actual, _ := hex.DecodeString(s.mac(payload))
	if !hmac.Equal(expected, actual) {
		return "", errStateSignature
	}

	parts := strings.Split(payload, ".")
	if len(parts) != 3 {
		return "", errStateMalformed
	}
	issued, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", errStateMalformed
	}
	age := s.now().Sub(time.Unix(issued, 0))
	if age < -stateClockSkew {
		return "", errStateFuture
	}
	if age > s.ttl {
		return "", errStateExpired
	}
	userID, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || len(userID) == 0 {
		return "", errStateMalformed
	}
	return string(userID), nil
}

func (s *stateSigner) mac(payload string) string {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(payload))
	return hex.EncodeToString(m.Sum(nil))
}
