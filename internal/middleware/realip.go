package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RealIPMiddleware honours X-Forwarded-For, X-Real-IP and True-Client-IP only
// when the connecting peer is a trusted proxy. Requests from anyone else keep
// their socket address.
type RealIPMiddleware struct {
	trusted []netip.Prefix
}

// NewRealIPMiddleware parses trusted proxies given as addresses or CIDR
// prefixes. An empty list trusts nobody.
func NewRealIPMiddleware(trustedProxies []string) (*RealIPMiddleware, error) {
	prefixes, err := ParseTrustedProxies(trustedProxies)
	if err != nil {
		return nil, err
	}
	return &RealIPMiddleware{trusted: prefixes}, nil
}

// ParseTrustedProxies converts addresses and CIDR prefixes into prefixes.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Handler returns the middleware handler.
func (m *RealIPMiddleware) Handler(next http.Handler) http.Handler {
	forwarded := chimiddleware.RealIP(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.trustedPeer(r.RemoteAddr) {
			forwarded.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *RealIPMiddleware) trustedPeer(remoteAddr string) bool {
	if len(m.trusted) == 0 {
		return false
	}
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range m.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
