// Package logger 提供全局 slog 日志，以及从 context 取 request_id / user_id 的辅助函数。
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

var log atomic.Pointer[slog.Logger]

// Init 初始化全局日志，development 用文本格式，其他环境输出 JSON
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

func InitWithWriter(env string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	log.Store(l)
	slog.SetDefault(l)
}

// GetLogger 未初始化时使用 development 配置；并发的首次调用只有一个生效
func GetLogger() *slog.Logger {
	if l := log.Load(); l != nil {
		return l
	}
	l := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if log.CompareAndSwap(nil, l) {
		slog.SetDefault(l)
		return l
	}
	return log.Load()
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// FromContext 返回带上 context 中 request_id / user_id 的日志
func FromContext(ctx context.Context) *slog.Logger {
	l := GetLogger()
	if ctx == nil {
		return l
	}

	var fields []any
	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if userID, ok := ctx.Value(userIDKey).(int64); ok {
		fields = append(fields, "user_id", userID)
	}
	if len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}
