package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossary/api/internal/auth"
	"github.com/glossary/api/internal/csvcodec"
	"github.com/glossary/api/internal/glossary"
	"github.com/glossary/api/internal/model"
	"github.com/glossary/api/internal/store"
)

const testPassword = "correct horse"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	blobs  *store.MemoryBlobs
	token  string
}

func newTestServer(t *testing.T, records []model.Record) *testServer {
	t.Helper()
	var blobs *store.MemoryBlobs
	if records == nil {
		blobs = store.NewMemoryBlobs(nil)
	} else {
		blobs = store.NewMemoryBlobs([]byte(csvcodec.Encode(records)))
	}
	svc := glossary.NewService(store.NewRemoteStore(blobs), glossary.Options{SampleFallback: true})
	authn := auth.NewAuthenticator(testPassword, "test-secret", time.Hour)
	token, _, err := authn.Login(testPassword)
	require.NoError(t, err)

	return &testServer{
		router: NewRouter(RouterConfig{Service: svc, Authn: authn}),
		blobs:  blobs,
		token:  token,
	}
}

func (s *testServer) do(method, path string, body any, admin bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeRecords(t *testing.T, w *httptest.ResponseRecorder) []model.Record {
	t.Helper()
	var records []model.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	return records
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t, glossary.SampleRecords())

	w := s.do(http.MethodGet, "/glossary", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeRecords(t, w), 7)

	w = s.do(http.MethodGet, "/glossary/letter/0-9", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	records := decodeRecords(t, w)
	require.Len(t, records, 1)
	assert.Equal(t, "404 page", records[0].Term)

	w = s.do(http.MethodGet, "/glossary/letter/ab", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/glossary/search?q=ux", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeRecords(t, w), 1)

	w = s.do(http.MethodGet, "/glossary/search?q=u", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = s.do(http.MethodGet, "/glossary/search?q=u&mode=all", nil, false)
	assert.NotEmpty(t, decodeRecords(t, w))

	w = s.do(http.MethodGet, "/glossary/terms/wireframe", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/glossary/terms/nope", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/glossary/groups", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"letters":["0","A","C","U","W"]`)
}

func TestSampleFallbackWhenEmpty(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodGet, "/glossary", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeRecords(t, w), len(glossary.SampleRecords()))
}

func TestLoginAndSession(t *testing.T) {
	s := newTestServer(t, glossary.SampleRecords())

	w := s.do(http.MethodPost, "/admin/login", gin.H{"password": "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/admin/login", gin.H{}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/admin/login", gin.H{"password": testPassword}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "admin_session=")

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Authenticated)
	assert.NotEmpty(t, resp.Token)

	req := httptest.NewRequest(http.MethodGet, "/admin/session", nil)
	req.AddCookie(&http.Cookie{Name: "admin_session", Value: resp.Token})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)

	w = s.do(http.MethodGet, "/admin/session", nil, false)
	assert.Equal(t, `{"authenticated":false}`, w.Body.String())
}

func TestTermMutations(t *testing.T) {
	s := newTestServer(t, []model.Record{{Letter: "A", Term: "API", Definition: "interface"}})

	w := s.do(http.MethodPost, "/admin/terms", gin.H{"term": "CSS", "definition": "styles"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/admin/terms", gin.H{"term": "CSS", "definition": "styles"}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(s.blobs.Content()), `"CSS"`)

	w = s.do(http.MethodPost, "/admin/terms", gin.H{"term": "css", "definition": "again"}, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/admin/terms", gin.H{"term": "Empty"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/admin/terms", gin.H{"originalTerm": "API", "term": "REST API", "definition": "renamed"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"letter":"R"`)

	w = s.do(http.MethodPut, "/admin/terms", gin.H{"originalTerm": "Missing", "term": "X", "definition": "x"}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/admin/terms?term=css", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/admin/terms", gin.H{"term": "CSS"}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/admin/terms", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func uploadRequest(t *testing.T, token, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "glossary.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/upload-csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadCSV(t *testing.T) {
	s := newTestServer(t, []model.Record{{Letter: "A", Term: "API", Definition: "old"}})

	content := strings.Join([]string{
		csvcodec.Header,
		`A,"API","new",`,
		`B,"Beta","second",`,
		`C,"Broken",`,
	}, "\n")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, uploadRequest(t, s.token, content))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res glossary.UploadResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Row 4")

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, uploadRequest(t, s.token, "foo,bar\n1,2\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/upload-csv", nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadGlossary(t *testing.T) {
	s := newTestServer(t, glossary.SampleRecords())

	w := s.do(http.MethodGet, "/download-glossary", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/download-glossary", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), csvcodec.Header))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	w = s.do(http.MethodGet, "/download-glossary?format=md", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "## 0-9")
	assert.Contains(t, w.Body.String(), "### User experience (UX)")
	assert.Contains(t, w.Body.String(), "*See also:* User interface")

	w = s.do(http.MethodGet, "/download-glossary?format=json", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeRecords(t, w), 7)

	w = s.do(http.MethodGet, "/download-glossary?format=xml", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadEmptyStoreSkipsSample(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/glossary", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeRecords(t, w), 7, "browsing still shows the sample")

	w = s.do(http.MethodGet, "/download-glossary", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, csvcodec.Header+"\n", w.Body.String())

	w = s.do(http.MethodGet, "/download-glossary?format=json", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestAdminStatusRoutes(t *testing.T) {
	s := newTestServer(t, glossary.SampleRecords())

	w := s.do(http.MethodGet, "/admin/stats", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":7`)
	assert.Contains(t, w.Body.String(), `"backend":"github"`)

	w = s.do(http.MethodGet, "/admin/audit", nil, true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodGet, "/admin/github/status", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"configured":false`)

	w = s.do(http.MethodGet, "/scheduler/status", nil, false)
	assert.Contains(t, w.Body.String(), `"enabled":false`)

	w = s.do(http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(model.ErrValidation))
	assert.Equal(t, http.StatusUnauthorized, statusFor(model.ErrUnauthorized))
	assert.Equal(t, http.StatusNotFound, statusFor(model.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(model.ErrConflict))
	assert.Equal(t, http.StatusInternalServerError, statusFor(model.ErrUpstream))
}
