package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Resolve derives a stable pseudo-MAC for a device from its client IP and
// user-agent string. Captive portals running purely over HTTP cannot see the
// real hardware address, but the downstream RADIUS and router tooling expects
// MAC-shaped identifiers, so the digest is formatted as six colon-separated
// upper-case hex octets.
//
// This is a best-effort heuristic, not device attestation: clients behind a
// shared NAT with identical browsers collide, and a browser update changes
// the identifier.
func Resolve(clientIP, userAgent string) string {
	sum := sha256.Sum256([]byte(clientIP + "|" + userAgent))

	octets := make([]byte, 6)
	copy(octets, sum[:6])

	// Force the locally-administered unicast bits so a derived identifier can
	// never collide with a real vendor-assigned MAC.
	octets[0] = (octets[0] | 0x02) &^ 0x01

	parts := make([]string, len(octets))
	for i, b := range octets {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

// IsDerived reports whether a MAC-shaped identifier could have been produced
// by Resolve, based on the locally-administered and unicast bits.
func IsDerived(mac string) bool {
	if len(mac) < 2 {
		return false
	}
	var first byte
	if _, err := fmt.Sscanf(mac[:2], "%02X", &first); err != nil {
		return false
	}
	return first&0x02 != 0 && first&0x01 == 0
}
