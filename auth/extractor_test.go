package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    http.Header
		wantToken string
		wantOK    bool
	}{
		{
			name:      "valid bearer token",
			header:    http.Header{"Authorization": []string{"Bearer aaa.bbb.ccc"}},
			wantToken: "aaa.bbb.ccc",
			wantOK:    true,
		},
		{name: "nil header", header: nil},
		{name: "header absent", header: http.Header{}},
		{name: "empty value", header: http.Header{"Authorization": []string{""}}},
		{name: "lowercase scheme", header: http.Header{"Authorization": []string{"bearer aaa.bbb.ccc"}}},
		{name: "basic scheme", header: http.Header{"Authorization": []string{"Basic dXNlcjpwYXNz"}}},
		{name: "scheme without token", header: http.Header{"Authorization": []string{"Bearer "}}},
		{name: "scheme without space", header: http.Header{"Authorization": []string{"Beareraaa.bbb.ccc"}}},
		{name: "two segments", header: http.Header{"Authorization": []string{"Bearer aaa.bbb"}}},
		{name: "four segments", header: http.Header{"Authorization": []string{"Bearer aaa.bbb.ccc.ddd"}}},
		{name: "empty signature segment", header: http.Header{"Authorization": []string{"Bearer aaa.bbb."}}},
		{name: "empty payload segment", header: http.Header{"Authorization": []string{"Bearer aaa..ccc"}}},
		{name: "opaque token", header: http.Header{"Authorization": []string{"Bearer opaque-token"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := ExtractBearerToken(tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}
