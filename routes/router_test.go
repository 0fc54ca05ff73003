package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/assessment-hisan/auction-backend/controllers"
	"github.com/assessment-hisan/auction-backend/models"
	"github.com/assessment-hisan/auction-backend/realtime"
	"github.com/assessment-hisan/auction-backend/services"
	"github.com/assessment-hisan/auction-backend/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	rec    *testutil.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := &testutil.Recorder{}
	d := services.Deps{DB: testutil.NewDB(t), Broadcaster: rec, Log: testutil.Logger()}
	h := Handlers{
		Students: controllers.NewStudentController(services.NewStudentService(d)),
		Teams:    controllers.NewTeamController(services.NewTeamService(d)),
		Settings: controllers.NewTvSettingsController(services.NewSettingsService(d)),
		Transfer: controllers.NewTransferController(services.NewTransferService(d)),
	}
	return &testServer{router: SetupRouter(h, "", d.Log), rec: rec}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func student(adm string) map[string]any {
	return map[string]any{"name": "S " + adm, "admissionNumber": adm, "class": "10", "section": "Bidayay", "pool": "Pool 1"}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "running")
}

func TestStudentLifecycle(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/students/single", student("A-1"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Student
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "A-1", created.AdmissionNumber)

	w, env = s.do(t, http.MethodPost, "/api/students/single", student("A-1"))
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, 2001, env.Code)

	w, env = s.do(t, http.MethodPost, "/api/students/single", map[string]any{"name": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 1001, env.Code)

	w, _ = s.do(t, http.MethodPut, "/api/students/"+created.ID, map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodPut, "/api/students/missing", map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, 4004, env.Code)

	w, env = s.do(t, http.MethodPost, "/api/students/assign-to-pool", map[string]any{
		"studentIds": []string{created.ID},
		"poolName":   "Pool 3",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"modifiedCount":1}`, string(env.Data))

	w, _ = s.do(t, http.MethodGet, "/api/students", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Renamed")

	w, _ = s.do(t, http.MethodDelete, "/api/students/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, s.rec.Names(), realtime.EventStudentAssigned)
}

func TestBulkInsertReportsDuplicates(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/students/single", student("A-3"))

	body := []map[string]any{student("A-1"), student("A-2"), student("A-3"), student("A-4"), student("A-5")}
	w, env := s.do(t, http.MethodPost, "/api/students/bulk", body)
	require.Equal(t, http.StatusConflict, w.Code)

	var result services.BulkResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Inserted, 4)
	require.Len(t, result.Duplicates, 1)

	w, _ = s.do(t, http.MethodPost, "/api/students/bulk", map[string]any{"not": "an array"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/students/bulk", []map[string]any{student("B-1")})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestTeamsAndLeadershipConflict(t *testing.T) {
	s := newTestServer(t)
	_, env := s.do(t, http.MethodPost, "/api/students/single", student("L-1"))
	var leader models.Student
	require.NoError(t, json.Unmarshal(env.Data, &leader))

	w, env := s.do(t, http.MethodPost, "/api/teams", map[string]any{"name": "Falcons", "leader": leader.ID, "color": "red"})
	require.Equal(t, http.StatusCreated, w.Code)
	var team models.TeamView
	require.NoError(t, json.Unmarshal(env.Data, &team))
	require.Equal(t, leader.ID, team.Leader.ID)

	w, env = s.do(t, http.MethodPut, "/api/students/unassign/"+leader.ID, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 3006, env.Code)

	w, _ = s.do(t, http.MethodPut, "/api/teams/"+team.ID, map[string]any{"color": "blue"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/teams", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, string(env.Data), "blue")

	w, _ = s.do(t, http.MethodDelete, "/api/teams/"+team.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/api/teams/"+team.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTvSettingsRoutes(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/tv-settings/tv1Display", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tv1 models.TvDisplaySettings
	require.NoError(t, json.Unmarshal(env.Data, &tv1))
	require.Equal(t, "Bidayay", tv1.Section)

	w, _ = s.do(t, http.MethodPut, "/api/tv-settings/tv2Display", map[string]any{"displayMode": "Top Teams", "topTeamsCount": 5})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, s.rec.Count(realtime.EventTV2SettingsUpdated))

	w, _ = s.do(t, http.MethodPut, "/api/tv-settings/tv2Display", map[string]any{"topTeamsCount": 0})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/tv-settings/tv9Display", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/tv-settings/sections-and-pools", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, string(env.Data), "Pool 8")
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/students/single", student("A-1"))
	s.do(t, http.MethodPost, "/api/students/single", student("A-2"))

	w, _ := s.do(t, http.MethodGet, "/api/export-students", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "students.json")
	exported := w.Body.Bytes()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(controllers.ImportFormField, "students.json")
	require.NoError(t, err)
	_, err = part.Write(exported)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import-students", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rw := httptest.NewRecorder()
	s.router.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)
	require.Contains(t, rw.Body.String(), `"count":2`)

	w, _ = s.do(t, http.MethodPost, "/api/import-students", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
