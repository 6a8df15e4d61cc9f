package security

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	cases := []struct {
		name       string
		target     string
		agent      string
		suspicious bool
	}{
		{"report read", "/api/reports/market?start_date=2026-08-01&end_date=2026-08-31", "Mozilla/5.0", false},
		{"curl polling", "/api/dashboard/stats", "curl/8.5.0", false},
		{"path traversal", "/api/export/../../etc/passwd", "Mozilla/5.0", true},
		{"env probe", "/.env", "Mozilla/5.0", true},
		{"wordpress probe", "/wp-admin/setup.php", "Mozilla/5.0", true},
		{"sql injection in query", "/api/reports/market?group=union%20select", "Mozilla/5.0", true},
		{"scanner agent", "/api/reports/market", "sqlmap/1.7", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDetector()
			r := httptest.NewRequest("GET", tc.target, nil)
			r.Header.Set("User-Agent", tc.agent)
			if got := d.DetectSuspiciousRequest(r); got != tc.suspicious {
				t.Errorf("DetectSuspiciousRequest = %v, want %v", got, tc.suspicious)
			}
			want := int64(0)
			if tc.suspicious {
				want = 1
			}
			if m := d.GetMetrics(); m.SuspiciousRequests != want {
				t.Errorf("SuspiciousRequests = %d, want %d", m.SuspiciousRequests, want)
			}
		})
	}
}

func TestDetectOverlongURL(t *testing.T) {
	d := NewDetector()
	r := httptest.NewRequest("GET", "/api/reports/market?pad="+strings.Repeat("a", maxURLLength), nil)
	if !d.DetectSuspiciousRequest(r) {
		t.Error("overlong URL not flagged")
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	// Forwarding honored only when the peer is a trusted proxy.
	r := httptest.NewRequest("GET", "/api/reports/market", nil)
	r.RemoteAddr = "10.0.0.2:4431"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	if ip := d.ExtractClientIP(r); ip != "203.0.113.9" {
		t.Errorf("forwarded IP = %q, want 203.0.113.9", ip)
	}

	// A public peer cannot spoof via headers.
	r = httptest.NewRequest("GET", "/api/reports/market", nil)
	r.RemoteAddr = "198.51.100.7:9000"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	if ip := d.ExtractClientIP(r); ip != "198.51.100.7" {
		t.Errorf("public peer IP = %q, want 198.51.100.7", ip)
	}

	// Garbage in the forwarded header falls back and is counted.
	r = httptest.NewRequest("GET", "/api/reports/market", nil)
	r.RemoteAddr = "127.0.0.1:5000"
	r.Header.Set("X-Forwarded-For", "not-an-ip")
	if ip := d.ExtractClientIP(r); ip != "127.0.0.1" {
		t.Errorf("fallback IP = %q, want 127.0.0.1", ip)
	}
	if m := d.GetMetrics(); m.InvalidIPAttempts != 1 {
		t.Errorf("InvalidIPAttempts = %d, want 1", m.InvalidIPAttempts)
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()
	if err := d.AddTrustedProxy("100.64.0.0/10"); err != nil {
		t.Fatal(err)
	}
	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Error("bad CIDR accepted")
	}

	r := httptest.NewRequest("GET", "/api/reports/market", nil)
	r.RemoteAddr = "100.64.1.1:8080"
	r.Header.Set("X-Forwarded-For", "203.0.113.4")
	if ip := d.ExtractClientIP(r); ip != "203.0.113.4" {
		t.Errorf("IP via added proxy = %q, want 203.0.113.4", ip)
	}
}
