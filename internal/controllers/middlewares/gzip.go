package middlewares

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// compressibleTypes типы ответов, которые имеет смысл сжимать.
var compressibleTypes = []string{"text/plain", "text/html", "application/json"} //nolint:gochecknoglobals

// gzipWriter обертка над gin.ResponseWriter. Решение о сжатии принимается на первой записи тела
// по Content-Type ответа, поэтому пустые и бинарные ответы уходят как есть.
type gzipWriter struct {
	gin.ResponseWriter
	writer  *gzip.Writer
	decided bool
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	if !g.decided {
		g.decide()
	}
	if g.writer == nil {
		return g.ResponseWriter.Write(data) //nolint:wrapcheck
	}
	return g.writer.Write(data) //nolint:wrapcheck
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

func (g *gzipWriter) decide() {
	g.decided = true
	if g.Header().Get("Content-Encoding") != "" {
		return
	}
	ct := g.Header().Get("Content-Type")
	if !slices.ContainsFunc(compressibleTypes, func(t string) bool { return strings.HasPrefix(ct, t) }) {
		return
	}
	g.Header().Set("Content-Encoding", "gzip")
	g.Header().Add("Vary", "Accept-Encoding")
	g.Header().Del("Content-Length")
	g.writer = gzip.NewWriter(g.ResponseWriter)
}

func (g *gzipWriter) close() error {
	if g.writer == nil {
		return nil
	}
	return g.writer.Close() //nolint:wrapcheck
}

// GzipMiddleware создает middleware для сжатия ответов и распаковки запросов в формате gzip.
//
// Для ответов:
//   - Проверяет поддержку gzip в заголовке Accept-Encoding
//   - Сжимает только текстовые и json ответы, устанавливая Content-Encoding: gzip и Vary: Accept-Encoding
//
// Для запросов:
//   - Обрабатывает только POST, PUT, PATCH запросы с заголовком Content-Encoding: gzip
//   - Подменяет тело запроса распакованным, битый gzip дает 400
func GzipMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !readGzip(ctx) {
			return
		}
		writeGzip(ctx)
	}
}

func writeGzip(ctx *gin.Context) {
	if !strings.Contains(ctx.Request.Header.Get("Accept-Encoding"), "gzip") {
		ctx.Next()
		return
	}

	gzWriter := &gzipWriter{ResponseWriter: ctx.Writer}
	ctx.Writer = gzWriter
	defer func() {
		if closeErr := gzWriter.close(); closeErr != nil {
			_ = ctx.Error(fmt.Errorf("close gzip writer: %w", closeErr))
		}
		ctx.Writer = gzWriter.ResponseWriter
	}()

	ctx.Next()
}

// readGzip распаковывает тело запроса, если оно сжато. Возвращает false, если запрос прерван.
func readGzip(ctx *gin.Context) bool {
	if !slices.Contains([]string{http.MethodPost, http.MethodPut, http.MethodPatch}, ctx.Request.Method) {
		return true
	}
	if !strings.Contains(ctx.Request.Header.Get("Content-Encoding"), "gzip") {
		return true
	}

	gzReader, gzErr := gzip.NewReader(ctx.Request.Body)
	if gzErr != nil {
		_ = ctx.Error(fmt.Errorf("read gzip: %w", gzErr))
		ctx.AbortWithStatus(http.StatusBadRequest)
		return false
	}
	defer func() {
		if closeErr := gzReader.Close(); closeErr != nil {
			_ = ctx.Error(fmt.Errorf("close gzip reader: %w", closeErr))
		}
	}()
	bodyBytes, err := io.ReadAll(gzReader)
	if err != nil {
		_ = ctx.Error(fmt.Errorf("read gzip: %w", err))
		ctx.AbortWithStatus(http.StatusBadRequest)
		return false
	}

	ctx.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	ctx.Request.Header.Del("Content-Encoding")
	ctx.Request.ContentLength = int64(len(bodyBytes))
	return true
}
