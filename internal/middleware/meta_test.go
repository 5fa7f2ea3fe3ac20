package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method, path string
	status       int
}

type observerStub struct {
	requests []recordedRequest
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	o.requests = append(o.requests, recordedRequest{method, path, status})
}

func TestResponseMetaCarriesSnapshotSeq(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/", func(c *gin.Context) {
		SetSnapshotSeq(c, 7)
		meta = ResponseMeta(c)
		c.Status(http.StatusNoContent)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, meta)
	assert.Equal(t, uint64(7), meta["snapshot_seq"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestMetricsMiddlewareLabelsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &observerStub{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/teachers/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teachers/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Len(t, obs.requests, 2)
	assert.Equal(t, recordedRequest{http.MethodGet, "/teachers/:id", http.StatusOK}, obs.requests[0])
	assert.Equal(t, "unmatched", obs.requests[1].path)
	assert.Equal(t, http.StatusNotFound, obs.requests[1].status)
}
