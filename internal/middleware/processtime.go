package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const HeaderProcessTime = "X-Process-Time"

type processTimeWriter struct {
	gin.ResponseWriter
	start   time.Time
	written bool
}

func (w *processTimeWriter) stamp() {
	if w.written {
		return
	}
	w.written = true
	elapsed := time.Since(w.start).Seconds()
	w.ResponseWriter.Header().Set(HeaderProcessTime, strconv.FormatFloat(elapsed, 'f', 6, 64))
}

func (w *processTimeWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *processTimeWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *processTimeWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *processTimeWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// ProcessTime reports handler time in seconds in X-Process-Time. The header
// is set just before the status line is written.
func ProcessTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &processTimeWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Next()
	}
}
