package server

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGzipRequestDecompress(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GzipRequestDecompress())
	router.POST("/test", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"body": string(body)})
	})

	tests := []struct {
		name            string
		content         string
		contentEncoding string
		want            struct {
			statusCode int
			body       string
		}
	}{
		{
			name:            "uncompressed request",
			content:         "Hello, World!",
			contentEncoding: "",
			want: struct {
				statusCode int
				body       string
			}{
				statusCode: http.StatusOK,
				body:       "Hello, World!",
			},
		},
		{
			name:            "gzip compressed request",
			content:         "Hello, World!",
			contentEncoding: "gzip",
			want: struct {
				statusCode int
				body       string
			}{
				statusCode: http.StatusOK,
				body:       "Hello, World!",
			},
		},
		{
			name:            "gzip request with json payload",
			content:         "{\"name\":\"Ada\"}",
			contentEncoding: "gzip",
			want: struct {
				statusCode int
				body       string
			}{
				statusCode: http.StatusOK,
				body:       "Ada",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.contentEncoding == "gzip" {
				var buf bytes.Buffer
				gz := gzip.NewWriter(&buf)
				_, _ = gz.Write([]byte(tt.content))
				gz.Close()
				body = &buf
			} else {
				body = strings.NewReader(tt.content)
			}

			req, _ := http.NewRequest("POST", "/test", body)
			if tt.contentEncoding != "" {
				req.Header.Set("Content-Encoding", tt.contentEncoding)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want.statusCode, w.Code)
			if tt.want.statusCode == http.StatusOK {
				assert.Contains(t, w.Body.String(), tt.want.body)
			}
		})
	}
}


func TestGzipRequestDecompressRejectsBrokenBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GzipRequestDecompress())
	router.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("POST", "/test", strings.NewReader("not gzip at all"))
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid gzip request body")
}

func TestMaxBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MaxBodySize(16))
	router.POST("/test", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "small body", body: "tiny", want: http.StatusOK},
		{name: "body over the limit", body: strings.Repeat("x", 64), want: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/test", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		rps      float64
		burst    int
		requests int
		want     struct {
			ok      int
			limited int
		}
	}{
		{name: "burst then limited", rps: 0.001, burst: 2, requests: 5, want: struct {
			ok      int
			limited int
		}{ok: 2, limited: 3}},
		{name: "disabled", rps: 0, burst: 1, requests: 5, want: struct {
			ok      int
			limited int
		}{ok: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(NewRateLimiter(tt.rps, tt.burst, nil).Middleware())
			router.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

			var ok, limited int
			for i := 0; i < tt.requests; i++ {
				req, _ := http.NewRequest("POST", "/login", nil)
				req.RemoteAddr = "10.0.0.1:1234"
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)
				switch w.Code {
				case http.StatusOK:
					ok++
				case http.StatusTooManyRequests:
					limited++
				}
			}

			assert.Equal(t, tt.want.ok, ok)
			assert.Equal(t, tt.want.limited, limited)
		})
	}

	t.Run("clients are limited separately", func(t *testing.T) {
		router := gin.New()
		router.Use(NewRateLimiter(0.001, 1, nil).Middleware())
		router.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
			req, _ := http.NewRequest("POST", "/login", nil)
			req.RemoteAddr = addr
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		req, _ := http.NewRequest("GET", path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/boom", entries[2].ContextMap()["path"])
}
