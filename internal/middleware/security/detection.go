package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

// The API serves JSON under /api and nothing else, so anything probing
// for application files or carrying injection fragments in the path or
// query is noise worth counting. Legitimate automation (curl, scripts
// polling /api/reports) is not flagged; only known scanner signatures
// are.
var (
	probePatterns = []string{
		"../", "..\\", "%2e%2e",
		".env", ".git", ".ssh", "id_rsa",
		"wp-admin", "phpmyadmin", "config.php", "admin.php",
		"etc/passwd", "cmd.exe",
	}
	injectionPatterns = []string{
		"union select", "or 1=1", "sleep(",
		"<script", "javascript:", "eval(",
	}
	scannerAgents = []string{
		"sqlmap", "nikto", "nmap", "gobuster", "dirb",
		"masscan", "nuclei", "wpscan",
	}
)

// maxURLLength bounds the full request URL; report queries carry two
// dates, a group and two page numbers at most.
const maxURLLength = 1024

// DetectionMetrics is the detector's counter snapshot.
type DetectionMetrics struct {
	SuspiciousRequests int64
	InvalidIPAttempts  int64
}

// Detector screens requests for scanner traffic and resolves the real
// client IP behind trusted proxies.
type Detector struct {
	metrics        DetectionMetrics
	trustedProxies []*net.IPNet
}

// NewDetector trusts loopback and RFC 1918 ranges as proxies; the
// service is deployed behind the municipality's reverse proxy on a
// private network.
func NewDetector() *Detector {
	return &Detector{
		trustedProxies: []*net.IPNet{
			mustCIDR("127.0.0.0/8"),
			mustCIDR("10.0.0.0/8"),
			mustCIDR("172.16.0.0/12"),
			mustCIDR("192.168.0.0/16"),
		},
	}
}

func mustCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("bad trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

// DetectSuspiciousRequest reports whether the request looks like scanner
// or injection traffic. Flagged requests are counted but still served;
// screening informs the logs, it does not gate.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	if d.suspicious(r) {
		atomic.AddInt64(&d.metrics.SuspiciousRequests, 1)
		return true
	}
	return false
}

func (d *Detector) suspicious(r *http.Request) bool {
	path := strings.ToLower(r.URL.Path)
	// Match against the decoded query so "%20" can't hide a fragment.
	query := r.URL.RawQuery
	if unescaped, err := url.QueryUnescape(query); err == nil {
		query = unescaped
	}
	query = strings.ToLower(query)

	for _, p := range probePatterns {
		if strings.Contains(path, p) || strings.Contains(query, p) {
			return true
		}
	}
	for _, p := range injectionPatterns {
		if strings.Contains(path, p) || strings.Contains(query, p) {
			return true
		}
	}

	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, a := range scannerAgents {
		if strings.Contains(agent, a) {
			return true
		}
	}

	switch r.Method {
	case "TRACE", "TRACK", "DEBUG", "CONNECT":
		return true
	}

	if len(r.URL.String()) > maxURLLength {
		return true
	}

	// A forwarded chain longer than the deployment's single proxy hop
	// means someone is stuffing headers.
	if xff := r.Header.Get("X-Forwarded-For"); strings.Count(xff, ",") > 3 {
		return true
	}

	return false
}

// ExtractClientIP resolves the client address, honoring forwarding
// headers only when the direct peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	peer := net.ParseIP(directIP)
	if peer == nil {
		atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
		return directIP
	}

	if !d.isTrustedProxy(peer) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
		atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
		atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
	}

	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// GetMetrics returns current detection counters.
func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: atomic.LoadInt64(&d.metrics.SuspiciousRequests),
		InvalidIPAttempts:  atomic.LoadInt64(&d.metrics.InvalidIPAttempts),
	}
}

// AddTrustedProxy extends the trusted proxy set, e.g. when the reverse
// proxy moves to a dedicated subnet.
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}
