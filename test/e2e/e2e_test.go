// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loan-approval/internal/artifacts"
	"loan-approval/internal/common/config"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/common/observability"
	"loan-approval/internal/models"
	"loan-approval/internal/prediction"
	"loan-approval/internal/reference"
	"loan-approval/internal/web"
)

const referenceCSV = "../../artifacts/reference.csv"

var (
	zapLog *zap.Logger
	obs    *observability.Observability
)

func TestMain(m *testing.M) {
	var err error

	zapLog = logger.New("debug", "console")

	obs, err = observability.New("loan-approval-e2e")
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to initialise observability: %v", err))
	}

	code := m.Run()

	_ = obs.Shutdown()
	_ = zapLog.Sync()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.LoadFromFile("testdata/config.yaml")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("🚀 Starting FULL E2E Test against the shipped artifacts...")

	ts, a := startServer(ctx, t, *cfg)
	require.True(t, a.Ready(), "artifacts failed to load: %v", a.Err)

	// 1. Liveness and readiness
	assertHealth(t, ts)

	// 2. Landing page and the empty form
	assertPages(t, ts)

	// 3. Form submission end to end
	assertFormPrediction(t, ts)

	// 4. JSON API
	assertAPIPrediction(t, ts)

	// 5. Metrics exposition reflects the traffic above
	assertMetrics(t, ts, cfg.Metrics.Path)

	t.Log("✅ ALL TESTS PASSED: full E2E workflow successful")
}

func TestE2E_SQLiteReferenceWithRedisCache(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	t.Log("🔧 Seeding SQLite reference table from the shipped CSV...")
	dbPath := seedSQLite(t, "loan_applications")
	mr := miniredis.RunT(t)

	cfg, err := config.LoadFromFile("testdata/config.yaml")
	require.NoError(t, err)
	cfg.Artifacts.Reference = config.ReferenceConfig{
		Driver:   "sqlite",
		Table:    "loan_applications",
		Cache:    true,
		CacheTTL: 60000,
	}
	cfg.Database.SQLite.Path = dbPath
	cfg.Database.Redis.Address = mr.Addr()

	ts, a := startServer(ctx, t, *cfg)
	require.True(t, a.Ready(), "artifacts failed to load: %v", a.Err)

	csvTable, err := reference.LoadCSV(referenceCSV)
	require.NoError(t, err)
	fromCSV, err := reference.Snapshot(ctx, csvTable, models.CategoricalColumns)
	require.NoError(t, err)

	t.Log("🔍 Comparing SQLite-backed choices with the CSV snapshot...")
	var body struct {
		Choices map[string][]string `json:"choices"`
		Ready   bool                `json:"ready"`
	}
	getJSON(t, ts.URL+"/api/v1/choices", http.StatusOK, &body)
	assert.True(t, body.Ready)
	assert.Equal(t, fromCSV.All(), body.Choices)

	for _, col := range models.CategoricalColumns {
		assert.True(t, mr.Exists(reference.CacheKey(col)), "column %s not cached", col)
	}
	t.Log("✅ Redis cache populated for every categorical column")

	assertAPIPrediction(t, ts)
}

func TestE2E_MissingArtifacts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.LoadFromFile("testdata/config.yaml")
	require.NoError(t, err)
	cfg.Artifacts.Model.Path = filepath.Join(t.TempDir(), "missing.json")

	ts, a := startServer(ctx, t, *cfg)
	require.False(t, a.Ready())

	t.Log("⚠️ Model missing, checking degraded behaviour...")

	status, page := get(t, ts.URL+"/predict")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, page, "Error loading data or pipeline")

	resp, err := http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var apiErr struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	postJSON(t, ts.URL+"/api/v1/predictions", `{"age":30}`, http.StatusServiceUnavailable, &apiErr)
	assert.Equal(t, "MODEL_UNAVAILABLE", apiErr.Error.Code)

	t.Log("✅ Degraded mode reported correctly")
}

func startServer(ctx context.Context, t *testing.T, cfg config.Config) (*httptest.Server, *artifacts.Artifacts) {
	t.Helper()
	log := logger.NewZapAdapter(zapLog)

	a := artifacts.Load(ctx, cfg, log)
	svc := prediction.NewService(a.Classifier, a.Choices, obs, log)

	srv, err := web.NewServer(cfg, a, svc, log)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, a
}

func assertHealth(t *testing.T, ts *httptest.Server) {
	t.Log("🔍 Checking health and readiness...")

	var health map[string]interface{}
	getJSON(t, ts.URL+"/health", http.StatusOK, &health)
	assert.Equal(t, "healthy", health["status"])

	var ready map[string]interface{}
	getJSON(t, ts.URL+"/ready", http.StatusOK, &ready)
	assert.Equal(t, "ready", ready["status"])

	t.Log("✅ Service healthy and ready")
}

func assertPages(t *testing.T, ts *httptest.Server) {
	t.Log("🏠 Rendering landing and prediction pages...")

	status, home := get(t, ts.URL+"/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, home, `href="/predict"`)

	status, page := get(t, ts.URL+"/predict")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, page, "Loan Approval Prediction")
	assert.Contains(t, page, "Loan amount represents")
	assert.NotContains(t, page, "prediction-result")

	status, _ = get(t, ts.URL+"/does-not-exist")
	assert.Equal(t, http.StatusNotFound, status)

	t.Log("✅ Pages rendered")
}

func assertFormPrediction(t *testing.T, ts *httptest.Server) {
	t.Log("🧪 Submitting the prediction form...")

	tests := []struct {
		name       string
		values     url.Values
		wantStatus int
		want       []string
		notWant    []string
	}{
		{
			name: "complete application",
			values: url.Values{
				"action":             {"predict"},
				"age":                {"35"},
				"yearlyIncome":       {"1200000"},
				"employmentYears":    {"10"},
				"creditHistoryYears": {"8"},
				"loanAmount":         {"300000"},
				"interestRate":       {"9.5"},
				"creditScore":        {"760"},
				"previousDefault":    {"No"},
			},
			wantStatus: http.StatusOK,
			want:       []string{"prediction-result", "Confidence:", "Loan amount represents 25.0% of monthly income"},
		},
		{
			name:       "recalculate does not predict",
			values:     url.Values{"action": {"recalculate"}, "loanAmount": {"50000"}},
			wantStatus: http.StatusOK,
			notWant:    []string{"prediction-result"},
		},
		{
			name:       "zero age halts",
			values:     url.Values{"action": {"predict"}, "age": {"0"}},
			wantStatus: http.StatusOK,
			want:       []string{"Please enter valid positive values for all fields"},
			notWant:    []string{"prediction-result"},
		},
		{
			name:       "unusually high loan warns",
			values:     url.Values{"action": {"predict"}, "yearlyIncome": {"120000"}, "loanAmount": {"7000000"}},
			wantStatus: http.StatusOK,
			want:       []string{"Loan amount seems unusually high compared to income", "prediction-result"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.PostForm(ts.URL+"/predict", tt.values)
			require.NoError(t, err)
			page := readBody(t, resp)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			for _, w := range tt.want {
				assert.Contains(t, page, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, page, w)
			}
		})
	}

	t.Log("✅ Form flow verified")
}

func assertAPIPrediction(t *testing.T, ts *httptest.Server) {
	t.Log("🧪 Calling the prediction API...")

	var result struct {
		ID             string    `json:"id"`
		Label          int       `json:"label"`
		Outcome        string    `json:"outcome"`
		Approved       bool      `json:"approved"`
		Probabilities  []float64 `json:"probabilities"`
		Confidence     float64   `json:"confidence"`
		ConfidenceText string    `json:"confidenceText"`
		Message        string    `json:"message"`
		Caption        string    `json:"caption"`
		Review         []struct {
			Column string `json:"column"`
			Value  string `json:"value"`
		} `json:"review"`
		Record map[string]interface{} `json:"record"`
	}
	postJSON(t, ts.URL+"/api/v1/predictions", `{
		"age": 30,
		"yearlyIncome": 600000,
		"loanAmount": 100000,
		"interestRate": 11.5,
		"creditScore": 700,
		"previousDefault": "No"
	}`, http.StatusOK, &result)

	assert.NotEmpty(t, result.ID)
	assert.Contains(t, []int{0, 1}, result.Label)
	assert.Equal(t, result.Label == 1, result.Approved)
	require.Len(t, result.Probabilities, 2)
	assert.InDelta(t, 1.0, result.Probabilities[0]+result.Probabilities[1], 1e-9)
	assert.InDelta(t, result.Probabilities[result.Label]*100, result.Confidence, 1e-9)
	assert.Contains(t, result.Message, "(Confidence: "+result.ConfidenceText+")")
	assert.Len(t, result.Review, len(models.RecordColumns))
	assert.Equal(t, "Loan amount represents 16.67% of monthly income", result.Caption)
	assert.EqualValues(t, 50000, result.Record[models.ColPersonIncome])
	assert.EqualValues(t, 8333, result.Record[models.ColLoanAmount])

	var apiErr struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	postJSON(t, ts.URL+"/api/v1/predictions", `{"age":0}`, http.StatusUnprocessableEntity, &apiErr)
	assert.Equal(t, "VALIDATION_HALT", apiErr.Error.Code)

	postJSON(t, ts.URL+"/api/v1/predictions", `{"age":"thirty"}`, http.StatusBadRequest, &apiErr)
	assert.Equal(t, "INVALID_INPUT", apiErr.Error.Code)

	t.Log("✅ API flow verified")
}

func assertMetrics(t *testing.T, ts *httptest.Server, path string) {
	t.Log("📈 Scraping metrics...")

	status, body := get(t, ts.URL+path)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "loan_predictions_total")
	assert.Contains(t, body, "http_requests_total")

	t.Log("✅ Metrics exposed")
}

// seedSQLite copies the shipped CSV into a fresh SQLite table, storing blank
// cells as NULL.
func seedSQLite(t *testing.T, table string) string {
	t.Helper()

	f, err := os.Open(referenceCSV)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	header := records[0]

	path := filepath.Join(t.TempDir(), "reference.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	cols := make([]string, len(header))
	marks := make([]string, len(header))
	for i, h := range header {
		cols[i] = h + " TEXT"
		marks[i] = "?"
	}
	_, err = db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", ")))
	require.NoError(t, err)

	tx, err := db.Begin()
	require.NoError(t, err)
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.Join(marks, ", ")))
	require.NoError(t, err)
	for _, rec := range records[1:] {
		args := make([]interface{}, len(rec))
		for i, v := range rec {
			if v = strings.TrimSpace(v); v != "" {
				args[i] = v
			}
		}
		_, err = stmt.Exec(args...)
		require.NoError(t, err)
	}
	require.NoError(t, stmt.Close())
	require.NoError(t, tx.Commit())

	return path
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp.StatusCode, readBody(t, resp)
}

func getJSON(t *testing.T, url string, wantStatus int, out interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	decode(t, resp, wantStatus, out)
}

func postJSON(t *testing.T, url, body string, wantStatus int, out interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	decode(t, resp, wantStatus, out)
}

func decode(t *testing.T, resp *http.Response, wantStatus int, out interface{}) {
	t.Helper()
	body := readBody(t, resp)
	require.Equal(t, wantStatus, resp.StatusCode, body)
	require.NoError(t, json.Unmarshal([]byte(body), out), body)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}
