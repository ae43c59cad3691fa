// Package checkout turns a cart into a persisted order and a WhatsApp
// handoff: a deterministic order message and a wa.me deep link the
// customer sends to the store.
package checkout

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateReference produces an order reference of the form
// PREFIX-<timestamp>-<salt>: the current Unix milliseconds in
// uppercase base36 plus four random base36 characters. References are
// human-readable over the phone and unique enough for a single store's
// order volume.
func GenerateReference(prefix string, now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	salt := make([]byte, 4)
	for i := range salt {
		salt[i] = referenceAlphabet[rand.IntN(len(referenceAlphabet))]
	}
	return prefix + "-" + ts + "-" + string(salt)
}
