package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"speechwell-server/pkg/errors"
)

// SignatureHeader is the HTTP header carrying the webhook signature.
const SignatureHeader = "Elevenlabs-Signature"

// DefaultSignatureMaxAge is how old a signed timestamp may be before
// the request is rejected as a possible replay.
const DefaultSignatureMaxAge = 30 * time.Minute

// Verifier checks webhook signatures of the form "t=<unix>,v0=<hex>",
// where the hex digest is an HMAC-SHA256 over "<unix>.<body>".
type Verifier struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewVerifier creates a signature verifier with the given shared secret.
// A non-positive maxAge falls back to DefaultSignatureMaxAge.
func NewVerifier(secret string, maxAge time.Duration) *Verifier {
	if maxAge <= 0 {
		maxAge = DefaultSignatureMaxAge
	}
	return &Verifier{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Verify validates the signature header against the raw request body.
// It returns nil only when the header parses, the signed timestamp is
// within the allowed window, and the digest matches.
func (v *Verifier) Verify(header string, body []byte) error {
	if header == "" {
		return errors.NewInvalidSignature("missing signature header")
	}

	timestamp, digest, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	signedAt := time.Unix(timestamp, 0)
	if v.now().Sub(signedAt) > v.maxAge {
		return errors.Wrap(errors.ErrStaleSignature, "signature timestamp outside allowed window").
			WithCode("STALE_SIGNATURE")
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.%s", timestamp, body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(digest)) {
		return errors.NewInvalidSignature("signature digest mismatch")
	}
	return nil
}

// parseSignatureHeader splits "t=<unix>,v0=<hex>" into its parts. The
// parts may appear in any order but both must be present.
func parseSignatureHeader(header string) (int64, string, error) {
	var timestampPart, digestPart string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "t="):
			timestampPart = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "v0="):
			digestPart = strings.TrimPrefix(part, "v0=")
		}
	}

	if timestampPart == "" || digestPart == "" {
		return 0, "", errors.NewInvalidSignature("malformed signature header")
	}

	timestamp, err := strconv.ParseInt(timestampPart, 10, 64)
	if err != nil {
		return 0, "", errors.NewInvalidSignature("invalid signature timestamp")
	}
	return timestamp, digestPart, nil
}
