package middlewares

import (
	"bytes"
	stdgzip "compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func TestGzipMiddleware(t *testing.T) {
	var buf bytes.Buffer
	zw := stdgzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"method":"online_score"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req := httptest.NewRequest(http.MethodPost, "/method", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	GzipMiddleware(echo)(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, "gzip", res.Header.Get("Content-Encoding"))

	zr, err := stdgzip.NewReader(res.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, `{"method":"online_score"}`, string(body))
}

func TestGzipMiddlewarePlain(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/method", bytes.NewBufferString("plain"))
	w := httptest.NewRecorder()

	GzipMiddleware(echo)(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "plain", w.Body.String())
}

func TestGzipMiddlewareBrokenBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/method", bytes.NewBufferString("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()

	GzipMiddleware(echo)(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	var got string
	h := RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/method", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	h(w, req)
	assert.Equal(t, "abc", got)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/method", nil))
	assert.Regexp(t, `^[0-9a-f]{32}$`, got)
	assert.Equal(t, got, w.Header().Get(RequestIDHeader))
}

func TestTrustedSubnetMiddleware(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	tests := []struct {
		name   string
		subnet string
		ip     string
		want   int
	}{
		{name: "inside", subnet: "10.0.0.0/8", ip: "10.1.2.3", want: http.StatusOK},
		{name: "outside", subnet: "10.0.0.0/8", ip: "192.168.0.1", want: http.StatusForbidden},
		{name: "no header", subnet: "10.0.0.0/8", ip: "", want: http.StatusForbidden},
		{name: "bad subnet", subnet: "nope", ip: "10.1.2.3", want: http.StatusForbidden},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if test.ip != "" {
				req.Header.Set("X-Real-IP", test.ip)
			}
			w := httptest.NewRecorder()
			TrustedSubnetMiddleware(test.subnet, ok)(w, req)
			assert.Equal(t, test.want, w.Code)
		})
	}
}
