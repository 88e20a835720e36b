package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HealthCheckTestSuite struct {
	suite.Suite
	checker *Checker
	router  *gin.Engine
}

func TestHealthCheckTestSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckTestSuite))
}

func (suite *HealthCheckTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.checker = NewChecker(log.NewNopLogger(), Config{MaxResponseTime: time.Second}, "test")
	suite.router = gin.New()
	suite.checker.RegisterRoutes(suite.router)
}

func component(name string, status Status) Component {
	return Component{Name: name, Fn: func(context.Context) ComponentHealth {
		return ComponentHealth{Status: status}
	}}
}

func (suite *HealthCheckTestSuite) get(path string) (*httptest.ResponseRecorder, HealthCheck) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	suite.router.ServeHTTP(w, req)

	var body HealthCheck
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func (suite *HealthCheckTestSuite) TestLiveness() {
	suite.checker.Register(component("audit", StatusUnhealthy))
	w, _ := suite.get("/health")
	suite.Require().Equal(http.StatusOK, w.Code)
}

func (suite *HealthCheckTestSuite) TestReady() {
	suite.checker.Register(component("audit", StatusHealthy), component("cache", StatusDegraded))

	w, body := suite.get("/health/ready")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().Equal(StatusDegraded, body.Status)
	suite.Require().Len(body.Components, 2)
	suite.Require().Equal("test", body.Version)
}

func (suite *HealthCheckTestSuite) TestReady_Unhealthy() {
	suite.checker.Register(component("audit", StatusUnhealthy))

	w, body := suite.get("/health/ready")
	suite.Require().Equal(http.StatusServiceUnavailable, w.Code)
	suite.Require().Equal(StatusUnhealthy, body.Status)
}

func (suite *HealthCheckTestSuite) TestDetailedRunsExpensiveChecks() {
	expensive := component("invariants", StatusHealthy)
	expensive.Detailed = true
	suite.checker.Register(component("audit", StatusHealthy), expensive)

	_, body := suite.get("/health/ready")
	suite.Require().NotContains(body.Components, "invariants")

	_, body = suite.get("/health/detailed")
	suite.Require().Contains(body.Components, "invariants")
	suite.Require().Contains(body.Components["invariants"].Metrics, "responseTimeMs")
}

func TestCheck_Cached(t *testing.T) {
	var calls atomic.Int32
	c := NewChecker(log.NewNopLogger(), Config{CacheDuration: time.Minute}, "")
	c.Register(Component{Name: "counter", Fn: func(context.Context) ComponentHealth {
		calls.Add(1)
		return ComponentHealth{Status: StatusHealthy}
	}})

	c.Check(context.Background(), false)
	c.Check(context.Background(), false)
	require.Equal(t, int32(1), calls.Load())

	c.Check(context.Background(), true)
	require.Equal(t, int32(2), calls.Load())
}

func TestCheck_ComponentPanics(t *testing.T) {
	c := NewChecker(log.NewNopLogger(), DefaultConfig(), "")
	c.Register(Component{Name: "broken", Fn: func(context.Context) ComponentHealth { panic("boom") }})

	h := c.Check(context.Background(), true)
	require.Equal(t, StatusUnhealthy, h.Status)
	require.Equal(t, "check panicked", h.Components["broken"].Message)
}

func TestCalculateOverallStatus(t *testing.T) {
	require.Equal(t, StatusHealthy, calculateOverallStatus(nil))
	require.Equal(t, StatusDegraded, calculateOverallStatus(map[string]ComponentHealth{
		"a": {Status: StatusHealthy}, "b": {Status: StatusUnknown},
	}))
	require.Equal(t, StatusUnhealthy, calculateOverallStatus(map[string]ComponentHealth{
		"a": {Status: StatusDegraded}, "b": {Status: StatusUnhealthy},
	}))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 2*time.Second, cfg.MaxResponseTime)
	require.Equal(t, 5*time.Second, cfg.CacheDuration)
}
