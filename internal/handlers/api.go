// Package handlers содержит диспетчер методов скорингового API и HTTP-обработчики.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sol1corejz/scoring-api/internal/logger"
	"github.com/sol1corejz/scoring-api/internal/metrics"
	"github.com/sol1corejz/scoring-api/internal/middlewares"
	"github.com/sol1corejz/scoring-api/internal/models"
	"github.com/sol1corejz/scoring-api/internal/scoring"
	"go.uber.org/zap"
)

// errorMessages - тексты ошибок по умолчанию. Коды вне этой таблицы
// отдаются в поле response.
var errorMessages = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusMethodNotAllowed:    "Method Not Allowed",
	http.StatusUnprocessableEntity: "Invalid Request",
	http.StatusInternalServerError: "Internal Server Error",
}

// MaxBodySize - предельный размер тела запроса.
const MaxBodySize = 1 << 20

// ErrNotObject - тело запроса не является JSON-объектом.
var ErrNotObject = errors.New("request body is not a JSON object")

// Store - хранилище, нужное HTTP-слою.
type Store interface {
	scoring.Store
	Ping(ctx context.Context) error
}

// API - HTTP-обработчики скорингового сервиса.
type API struct {
	store   Store
	methods *MethodHandler
}

func NewAPI(store Store) *API {
	return &API{store: store, methods: NewMethodHandler(store)}
}

// HandleMethod обрабатывает POST /method.
func (a *API) HandleMethod(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rctx := RequestContext{"request_id": middlewares.GetRequestID(r.Context())}

	var (
		response any
		code     = http.StatusOK
		method   = "unknown"
	)

	body, err := decodeBody(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		logger.Log.Info("cannot decode request body",
			zap.String("request_id", rctx["request_id"].(string)),
			zap.Error(err),
		)
		code = http.StatusBadRequest
	} else {
		method = methodLabel(body)
		logger.Log.Info("request",
			zap.String("path", r.URL.Path),
			zap.String("request_id", rctx["request_id"].(string)),
			zap.Any("body", body),
		)
		response, code, err = a.methods.Handle(r.Context(), body, rctx)
		if err != nil {
			logger.Log.Error("unexpected error", zap.Error(err))
			response, code = nil, http.StatusInternalServerError
		}
	}

	writeResponse(w, response, code, rctx)

	metrics.Requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	metrics.RequestDuration.Observe(time.Since(start).Seconds())
}

// HandlePing проверяет доступность хранилища.
func (a *API) HandlePing(w http.ResponseWriter, r *http.Request) {
	rctx := RequestContext{"request_id": middlewares.GetRequestID(r.Context())}
	if err := a.store.Ping(r.Context()); err != nil {
		logger.Log.Error("store is unavailable", zap.Error(err))
		writeResponse(w, nil, http.StatusInternalServerError, rctx)
		return
	}
	writeResponse(w, "pong", http.StatusOK, rctx)
}

// RecoverMiddleware отвечает 500 в формате API, если обработчик запаниковал.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.Log.Error("handler panic",
				zap.String("path", r.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			rctx := RequestContext{"request_id": middlewares.GetRequestID(r.Context())}
			writeResponse(w, nil, http.StatusInternalServerError, rctx)
		}()
		next.ServeHTTP(w, r)
	})
}

// HandleNotFound отвечает 404 в формате API.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, nil, http.StatusNotFound, RequestContext{"path": r.URL.Path})
}

// HandleMethodNotAllowed отвечает 405 в формате API.
func HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, nil, http.StatusMethodNotAllowed, RequestContext{"path": r.URL.Path, "method": r.Method})
}

func decodeBody(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, ErrNotObject
	}
	// после объекта не должно быть ничего, кроме пробелов
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrNotObject
	}
	return body, nil
}

// methodLabel - значение метки method для метрик. Неизвестные методы
// сводятся к одному значению.
func methodLabel(body map[string]any) string {
	m, _ := body["method"].(string)
	switch m {
	case models.MethodOnlineScore, models.MethodClientsInterests:
		return m
	}
	return "unknown"
}

func writeResponse(w http.ResponseWriter, response any, code int, rctx RequestContext) {
	var payload any
	if text, isError := errorMessages[code]; isError {
		if msg, ok := response.(string); ok && msg != "" {
			text = msg
		}
		payload = models.ErrorResponse{Error: text, Code: code}
		rctx["error"] = text
	} else {
		payload = models.Response{Response: response, Code: code}
		rctx["response"] = response
	}
	rctx["code"] = code
	logger.Log.Info("response", zap.Any("context", map[string]any(rctx)))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Error("cannot encode response", zap.Error(err))
	}
}
