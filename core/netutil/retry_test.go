package netutil

import (
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"timeout", timeoutErr{}, true},
		{"dial failure", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"read failure", &net.OpError{Op: "read", Err: errors.New("connection reset")}, false},
		{"url wrapped timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, true},
		{"url wrapped plain", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("boom")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldRetry(tc.err))
		})
	}
}
