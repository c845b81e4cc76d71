package trust_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campushq/internship-portal/internal"
	"github.com/campushq/internship-portal/internal/trust"
)

func TestTrustEvaluator(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Trust Evaluator Suite")
}

var _ = Describe("NormalizeDomain", func() {
	It("should strip scheme, www, path and port", func() {
		Expect(trust.NormalizeDomain("https://www.techcorp.example/careers?x=1")).To(Equal("techcorp.example"))
		Expect(trust.NormalizeDomain("http://techcorp.example:8443")).To(Equal("techcorp.example"))
		Expect(trust.NormalizeDomain("  TechCorp.Example  ")).To(Equal("techcorp.example"))
	})

	It("should reject values without a dot", func() {
		Expect(trust.NormalizeDomain("localhost")).To(Equal(""))
		Expect(trust.NormalizeDomain("")).To(Equal(""))
	})
})

var _ = Describe("HTTPEvaluator", func() {
	var (
		logger *slog.Logger
		ctx    context.Context
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx = context.Background()
	})

	newEvaluator := func(whoisURL, searchURL string) *trust.HTTPEvaluator {
		return trust.NewHTTPEvaluator(internal.TrustConfig{
			WhoisAPIURL:  whoisURL,
			SearchURL:    searchURL,
			CheckTimeout: time.Second,
		}, logger)
	}

	whoisServer := func(createdDate string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"success": true, "created_date": %q}`, createdDate)
		}))
	}

	It("should score an empty website as zero without any lookups", func() {
		evaluator := newEvaluator("http://127.0.0.1:1", "http://127.0.0.1:1")

		Expect(evaluator.Score(ctx, "TechCorp", "")).To(Equal(0))
	})

	It("should award full age points for a mature domain", func() {
		whois := whoisServer("2015-06-01")
		defer whois.Close()
		search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer search.Close()
		evaluator := newEvaluator(whois.URL, search.URL)

		// TLS against the unreachable test domain contributes nothing.
		Expect(evaluator.Score(ctx, "TechCorp", "https://techcorp.invalid")).To(Equal(20))
	})

	It("should award half age points for a six-month-old domain", func() {
		created := time.Now().AddDate(0, -8, 0).Format("2006-01-02")
		whois := whoisServer(created)
		defer whois.Close()
		search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer search.Close()
		evaluator := newEvaluator(whois.URL, search.URL)

		Expect(evaluator.Score(ctx, "TechCorp", "https://techcorp.invalid")).To(Equal(10))
	})

	It("should add directory points when the company page is found", func() {
		whois := whoisServer("2015-06-01")
		defer whois.Close()
		search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html>results: https://linkedin.com/company/techcorp</html>`)
		}))
		defer search.Close()
		evaluator := newEvaluator(whois.URL, search.URL)

		Expect(evaluator.Score(ctx, "TechCorp", "https://techcorp.invalid")).To(Equal(30))
	})

	It("should degrade to zero when every upstream fails", func() {
		evaluator := newEvaluator("http://127.0.0.1:1", "http://127.0.0.1:1")

		score := evaluator.Score(ctx, "TechCorp", "https://techcorp.invalid")

		Expect(score).To(Equal(0))
	})

	It("should never exceed the maximum", func() {
		whois := whoisServer("2015-06-01")
		defer whois.Close()
		search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "linkedin.com/company/techcorp")
		}))
		defer search.Close()
		evaluator := newEvaluator(whois.URL, search.URL)

		score := evaluator.Score(ctx, "TechCorp", "https://techcorp.invalid")

		Expect(score).To(BeNumerically("<=", 100))
		Expect(score).To(BeNumerically(">=", 0))
	})
})
