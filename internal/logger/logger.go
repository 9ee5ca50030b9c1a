// Package logger предоставляет глобальный логгер приложения на базе zap
// и middleware для логирования HTTP-запросов.
package logger

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log - глобальный логгер. До вызова Initialize ничего не пишет.
var Log = zap.NewNop()

// Параметры ротации файла логов.
const (
	maxSizeMB  = 100
	maxBackups = 5
	maxAgeDays = 30
)

// Initialize настраивает глобальный логгер.
// level - уровень логирования ("debug", "info", ...).
// file - путь к файлу логов; пустая строка означает stderr.
func Initialize(level string, file string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if file == "" {
		zl, err := cfg.Build()
		if err != nil {
			return err
		}
		Log = zl
		return nil
	}

	// В файл пишем через lumberjack, чтобы логи ротировались.
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), writer, lvl)
	Log = zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	return nil
}

// Sync сбрасывает буферы логгера.
func Sync() {
	_ = Log.Sync()
}

// RequestLogger оборачивает HTTP-обработчик и пишет в лог путь, метод,
// код ответа, размер ответа и длительность обработки запроса.
func RequestLogger(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		h(ww, r)

		Log.Info("got incoming HTTP request",
			zap.String("path", r.RequestURI),
			zap.String("method", r.Method),
			zap.Int("status", ww.Status()),
			zap.Int("size", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
