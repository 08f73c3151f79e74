package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/viewstore/internal/common"
	"github.com/dmitrijs2005/viewstore/internal/logging"
	"github.com/dmitrijs2005/viewstore/internal/server/auth"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const metaKey ctxKey = "request_meta"

// requestMeta is filled in by inner middleware and read by requestLogger
// once the request completes.
type requestMeta struct {
	subject string
}

// accessToken requires "Authorization: Bearer <jwt>" signed with the server
// secret. The token subject is attached to every record logged downstream.
func (s *HTTPServer) accessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeader)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}

		subject, err := auth.SubjectFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if m, ok := r.Context().Value(metaKey).(*requestMeta); ok {
			m.subject = subject
		}
		next.ServeHTTP(w, r.WithContext(logging.ContextWith(r.Context(), "subject", subject)))
	})
}

// timeout bounds the request context by the configured request timeout.
func (s *HTTPServer) timeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.requestTimeout <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs one line per request after it completes.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		meta := &requestMeta{}
		ctx := logging.ContextWith(r.Context(), "request_id", chimiddleware.GetReqID(r.Context()))

		next.ServeHTTP(ww, r.WithContext(context.WithValue(ctx, metaKey, meta)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info(ctx, "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"bytes", ww.BytesWritten(),
			"subject", meta.subject,
		)
	})
}
