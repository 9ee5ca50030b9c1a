// Package middlewares содержит промежуточные обработчики HTTP-запросов:
// сжатие gzip, идентификатор запроса и ограничение доступа по подсети.
package middlewares

import (
	"context"
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sol1corejz/scoring-api/cmd/gzip"
	"github.com/sol1corejz/scoring-api/internal/logger"
	"go.uber.org/zap"
)

// RequestIDHeader - заголовок с идентификатором запроса.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// GzipMiddleware сжимает ответ, если клиент принимает gzip,
// и распаковывает тело запроса, если оно сжато.
func GzipMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ow := w

		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			cw := gzip.NewCompressWriter(w)
			ow = cw
			defer cw.Close()
		}

		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			cr, err := gzip.NewCompressReader(r.Body)
			if err != nil {
				logger.Log.Info("cannot decompress request body", zap.Error(err))
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			r.Body = cr
			defer cr.Close()
		}

		h.ServeHTTP(ow, r)
	}
}

// RequestIDMiddleware берёт идентификатор запроса из заголовка X-Request-ID
// или генерирует новый, кладёт его в контекст и возвращает в ответе.
func RequestIDMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			u := uuid.New()
			id = hex.EncodeToString(u[:])
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		h.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetRequestID возвращает идентификатор запроса из контекста.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// TrustedSubnetMiddleware пропускает только клиентов, чей IP из X-Real-IP
// входит в подсеть subnet.
func TrustedSubnetMiddleware(subnet string, h http.HandlerFunc) http.HandlerFunc {
	_, trustedNet, err := net.ParseCIDR(subnet)
	if err != nil {
		logger.Log.Error("invalid trusted subnet", zap.String("subnet", subnet), zap.Error(err))
		return func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Forbidden", http.StatusForbidden)
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ip := net.ParseIP(r.Header.Get("X-Real-IP"))
		if ip == nil || !trustedNet.Contains(ip) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		h.ServeHTTP(w, r)
	}
}
