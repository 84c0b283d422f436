package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// PINs are derived, never stored: the same keyed hash runs at issuance and at
// validation, so there is no per-login state anywhere. A PIN is bound to a
// phone number and a time bucket; the validation side accepts the current and
// the immediately previous bucket, bounding a PIN's life to at most twice the
// bucket width.

const (
	// PinLength is the number of digits in a derived PIN.
	PinLength = 4

	// DefaultBucketWidth is the quantization of wall-clock time used for
	// PIN derivation.
	DefaultBucketWidth = 5 * time.Minute
)

// Bucket returns the time bucket that t falls into.
func Bucket(t time.Time, width time.Duration) int64 {
	return t.UnixMilli() / width.Milliseconds()
}

// DerivePIN computes the deterministic PIN for (phone, bucket). It is an
// HMAC-SHA256 over "phone-bucket" keyed by secret; the hex digest's letters
// are folded to digits (byte value mod 10) and the first PinLength characters
// form the PIN. Without the secret, knowing one PIN reveals nothing about
// adjacent buckets.
func DerivePIN(phone string, bucket int64, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s-%d", phone, bucket)
	digest := hex.EncodeToString(mac.Sum(nil))

	pin := make([]byte, PinLength)
	for i := 0; i < PinLength; i++ {
		c := digest[i]
		if c >= 'a' && c <= 'f' {
			c = '0' + c%10
		}
		pin[i] = c
	}
	return string(pin)
}

// CurrentPIN derives the PIN for the bucket containing now.
func CurrentPIN(phone string, now time.Time, width time.Duration, secret []byte) string {
	return DerivePIN(phone, Bucket(now, width), secret)
}

// ValidatePIN checks submitted against the PINs of the current and previous
// buckets. The one-bucket grace window keeps a PIN issued near a bucket edge
// usable.
func ValidatePIN(phone, submitted string, now time.Time, width time.Duration, secret []byte) bool {
	current := Bucket(now, width)
	for _, bucket := range []int64{current, current - 1} {
		if hmac.Equal([]byte(DerivePIN(phone, bucket, secret)), []byte(submitted)) {
			return true
		}
	}
	return false
}
