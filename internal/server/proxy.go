package server

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// stripPrefix removes prefix from path. Only whole path segments match, so
// "/api/predict" is stripped but "/apiary" is not.
func stripPrefix(path, prefix string) (string, bool) {
	if path == prefix {
		return "/", true
	}

	if rest, ok := strings.CutPrefix(path, prefix+"/"); ok {
		return "/" + rest, true
	}

	return path, false
}

func (s *Server) newReverseProxy(prefix string, target *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			path, _ := stripPrefix(r.In.URL.Path, prefix)
			r.Out.URL.Path = path
			r.Out.URL.RawPath = ""
			r.SetURL(target)
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.logger.Error("proxy request failed",
				zap.String("path", r.URL.Path),
				zap.String("target", target.String()),
				zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message":"upstream unavailable"}`))
		},
	}
}

func (s *Server) proxyMiddleware(prefix string, target *url.URL) gin.HandlerFunc {
	proxy := s.newReverseProxy(prefix, target)

	return func(c *gin.Context) {
		if _, ok := stripPrefix(c.Request.URL.Path, prefix); !ok {
			c.Next()
			return
		}

		proxy.ServeHTTP(c.Writer, c.Request)
		c.Abort()
	}
}
