package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/dinecommand/config"
	"github.com/yeremiapane/dinecommand/kds"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/router"
	"github.com/yeremiapane/dinecommand/services"
	"github.com/yeremiapane/dinecommand/store"
	"github.com/yeremiapane/dinecommand/utils"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// stubAdvisor returns a fixed result, or err when set.
type stubAdvisor struct {
	mu     sync.Mutex
	result models.AdvisoryResult
	err    error
	calls  int
}

func (s *stubAdvisor) Analyze(ctx context.Context, prompt string) (models.AdvisoryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result, s.err
}

type floorEnv struct {
	store   *store.TableStore
	advisor *stubAdvisor
	router  *gin.Engine
}

func setupFloor(t *testing.T, ratePerMinute int) *floorEnv {
	t.Helper()
	utils.SilenceLoggers()
	gin.SetMode(gin.TestMode)

	s := store.NewTableStore()
	s.Upsert(models.Table{ID: "t1", Label: "101", Status: models.TableFree, Alerts: []models.Alert{}})
	dur := models.Duration(40 * time.Minute)
	s.Upsert(models.Table{
		ID: "t2", Label: "102", Status: models.TableSeated, IsVIP: true, SeatedDuration: &dur,
		Alerts: []models.Alert{
			{Kind: models.AlertVIPSeated, Severity: models.SeverityHigh, Message: "VIP seated", ActionRequired: true, VisibleTo: []models.Role{models.RoleManager, models.RoleHost}},
			{Kind: models.AlertSlowPacing, Severity: models.SeverityMedium, Message: "Mains delayed", ActionRequired: true, VisibleTo: []models.Role{models.RoleServer, models.RoleManager}},
			{Kind: models.AlertHighSpend, Severity: models.SeverityLow, Message: "Big spender", ActionRequired: false, VisibleTo: []models.Role{models.RoleManager}},
		},
	})

	adv := &stubAdvisor{result: models.AdvisoryResult{
		Analysis:         "Mains are late for a VIP table.",
		SuggestedActions: []string{"Chase the kitchen", "Send a manager over"},
		PriorityScore:    8,
	}}
	dispatcher := services.NewAdvisoryDispatcher(s, nil, adv, config.AdvisoryConfig{
		Timeout:       time.Second,
		PendingPolicy: config.PolicyCoalesce,
	})

	r := router.SetupRouter(router.Deps{
		Store:                 s,
		Guard:                 services.NewStatusGuard(s),
		Pipeline:              services.NewAlertPipeline(s),
		Registry:              services.NewConsoleRegistry(dispatcher, time.Hour),
		Hub:                   kds.NewFloorHub(),
		CORSAllowedOrigin:     "*",
		AnalysisRatePerMinute: ratePerMinute,
	})
	return &floorEnv{store: s, advisor: adv, router: r}
}

func (e *floorEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func asRole(role models.Role) map[string]string {
	return map[string]string{"X-Staff-Role": string(role)}
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}
