package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	router := gin.New()
	router.Use(Middleware())
	router.GET("/books/details/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/books/details/:id", "200"))

	for _, path := range []string{"/books/details/1", "/books/details/2"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/books/details/:id", "200"))
	assert.Equal(t, 2.0, after-before)
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))
}

func TestMiddleware_UnmatchedRoutes(t *testing.T) {
	router := gin.New()
	router.Use(Middleware())

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))
	assert.Equal(t, 1.0, after-before)
}

func TestCounters(t *testing.T) {
	created := testutil.ToFloat64(loansCreated)
	returned := testutil.ToFloat64(booksReturned)

	var c Counters
	c.LoanCreated()
	c.BookReturned()
	c.BookReturned()

	assert.Equal(t, 1.0, testutil.ToFloat64(loansCreated)-created)
	assert.Equal(t, 2.0, testutil.ToFloat64(booksReturned)-returned)
}

func TestRecordOverdueScan(t *testing.T) {
	found := testutil.ToFloat64(overdueFound)
	ok := testutil.ToFloat64(overdueScans.WithLabelValues("true"))

	RecordOverdueScan(3, 20*time.Millisecond, true)
	RecordOverdueScan(0, 0, true)

	assert.Equal(t, 3.0, testutil.ToFloat64(overdueFound)-found)
	assert.Equal(t, 2.0, testutil.ToFloat64(overdueScans.WithLabelValues("true"))-ok)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	Counters{}.LoanCreated()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "librarian_loans_created_total")
}
