package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.7:4242"
	r.Header.Set("X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, "198.51.100.7", RealClientIP(r))

	r.RemoteAddr = "198.51.100.7"
	assert.Equal(t, "198.51.100.7", RealClientIP(r))
}

func TestAnonymized(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"198.51.100.7:4242", "198.51.100.0"},
		{"[2001:db8:abcd:12::1]:443", "2001:db8:abcd::"},
		{"not-an-ip", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = tt.remote
		assert.Equal(t, tt.want, Anonymized(r), tt.remote)
	}
}
