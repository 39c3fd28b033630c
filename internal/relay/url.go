package relay

import (
	"net"
	"net/url"
	"strings"
)

// IsRelayURLSafe validates that a relay URL is safe to connect to (SSRF protection)
// Allows localhost for development but blocks private networks
func IsRelayURLSafe(relayURL string) bool {
	parsed, err := url.Parse(relayURL)
	if err != nil {
		return false
	}

	// Only allow ws:// and wss:// schemes
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return false
	}

	host := parsed.Hostname()
	if host == "" {
		return false
	}

	// Allow localhost for development
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}

	if ip := net.ParseIP(host); ip != nil {
		return isRelayIPSafe(ip)
	}

	// Resolve hostname and check IPs
	ips, err := net.LookupIP(host)
	if err != nil {
		// If we can't resolve, allow it (might be valid external host)
		// but block obvious internal names
		return !strings.HasSuffix(host, ".") &&
			!strings.Contains(host, ".local") &&
			!strings.Contains(host, ".internal")
	}

	for _, ip := range ips {
		if !isRelayIPSafe(ip) {
			return false
		}
	}
	return true
}

// isRelayIPSafe checks if an IP is safe for relay connections
// Allows loopback (localhost) but blocks other private ranges
func isRelayIPSafe(ip net.IP) bool {
	if ip == nil {
		return false
	}

	// Allow loopback (localhost)
	if ip.IsLoopback() {
		return true
	}

	// Block private networks, link-local (incl. the 169.254.169.254 metadata
	// address), unspecified and multicast
	return !ip.IsPrivate() &&
		!ip.IsLinkLocalUnicast() &&
		!ip.IsLinkLocalMulticast() &&
		!ip.IsUnspecified() &&
		!ip.IsMulticast()
}
