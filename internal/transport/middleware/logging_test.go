package middleware_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal/transport/middleware"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

var _ = Describe("Logging middleware", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		logger.Setup(buf, "json", "debug")
	})

	AfterEach(func() {
		logger.Setup(io.Discard, "text", "error")
	})

	It("filters credentials from bodies and headers", func() {
		var received string
		h := middleware.RequestID(middleware.LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			received = string(body)
			http.SetCookie(w, &http.Cookie{Name: "auth-token", Value: "secret-token-value"})
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"success":true,"message":"Login successful"}`))
		})))

		payload := `{"email":"jane@acme.test","password":"Sup3rSecret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(payload))
		req.Header.Set("Cookie", "auth-token=old-token-value")
		req.Header.Set(middleware.HeaderTraceID, "trace-1")
		h.ServeHTTP(httptest.NewRecorder(), req)

		Expect(received).To(Equal(payload))
		out := buf.String()
		Expect(out).To(ContainSubstring("jane@acme.test"))
		Expect(out).NotTo(ContainSubstring("Sup3rSecret"))
		Expect(out).NotTo(ContainSubstring("old-token-value"))
		Expect(out).To(ContainSubstring(`"traceID":"trace-1"`))
		Expect(out).To(ContainSubstring(`"status_code":200`))
	})

	It("still hands oversized bodies through untouched", func() {
		big := strings.Repeat("a", 10_000)
		var received int
		h := middleware.LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			received = len(body)
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(big)))
		Expect(received).To(Equal(len(big)))
	})
})

var _ = Describe("RequestID middleware", func() {
	It("echoes an inbound trace id", func() {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(middleware.HeaderTraceID, "abc")
		middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rr, req)
		Expect(rr.Header().Get(middleware.HeaderTraceID)).To(Equal("abc"))
	})

	It("mints one when absent", func() {
		rr := httptest.NewRecorder()
		middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
		Expect(rr.Header().Get(middleware.HeaderTraceID)).To(HaveLen(36))
	})
})
