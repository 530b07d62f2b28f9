package fingerprint

import (
	"regexp"
	"testing"
)

var macFormat = regexp.MustCompile(`^([0-9A-F]{2}:){5}[0-9A-F]{2}$`)

func TestResolve_Format(t *testing.T) {
	mac := Resolve("10.0.0.5", "Mozilla/5.0 (Linux; Android 14)")
	if !macFormat.MatchString(mac) {
		t.Errorf("Expected MAC-shaped identifier, got %q", mac)
	}
}

func TestResolve_Stable(t *testing.T) {
	a := Resolve("10.0.0.5", "Mozilla/5.0")
	b := Resolve("10.0.0.5", "Mozilla/5.0")
	if a != b {
		t.Errorf("Expected identical inputs to resolve identically, got %q and %q", a, b)
	}
}

func TestResolve_DistinctInputs(t *testing.T) {
	base := Resolve("10.0.0.5", "Mozilla/5.0")

	if got := Resolve("10.0.0.6", "Mozilla/5.0"); got == base {
		t.Error("Expected different IPs to resolve differently")
	}
	if got := Resolve("10.0.0.5", "Mozilla/6.0"); got == base {
		t.Error("Expected different user agents to resolve differently")
	}
}

func TestResolve_LocallyAdministered(t *testing.T) {
	inputs := []struct {
		ip string
		ua string
	}{
		{"10.0.0.5", "Mozilla/5.0"},
		{"192.168.1.1", ""},
		{"", ""},
		{"fe80::1", "curl/8.0"},
	}

	for _, in := range inputs {
		mac := Resolve(in.ip, in.ua)
		if !IsDerived(mac) {
			t.Errorf("Resolve(%q, %q) = %q, expected locally-administered unicast", in.ip, in.ua, mac)
		}
	}
}

func TestIsDerived(t *testing.T) {
	tests := []struct {
		mac  string
		want bool
	}{
		{"02:00:00:00:00:01", true},
		{"00:1A:2B:3C:4D:5E", false}, // vendor-assigned
		{"03:00:00:00:00:01", false}, // multicast bit set
		{"", false},
		{"zz:00:00:00:00:00", false},
	}

	for _, tt := range tests {
		if got := IsDerived(tt.mac); got != tt.want {
			t.Errorf("IsDerived(%q) = %v, expected %v", tt.mac, got, tt.want)
		}
	}
}
