package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accessResult struct {
	Access    bool   `json:"access"`
	RequestID string `json:"requestId"`
}

func TestAccess_RequestApproveDownload(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.register(t, "owner")
	_, partnerToken := s.register(t, "partner")
	_, otherToken := s.register(t, "other")

	f := s.upload(t, ownerToken, "report.txt", []byte("quarterly numbers"))
	require.NotEmpty(t, f.HoneytokenID)

	// партнёр видит файл без доступа
	rr := s.do(t, http.MethodGet, "/api/files/partner", partnerToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"has_access":false`)
	assert.NotContains(t, rr.Body.String(), f.HoneytokenID)

	// скачивание без доступа запрещено
	rr = s.do(t, http.MethodGet, "/api/files/"+f.ID+"/download", partnerToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/access/request", partnerToken, map[string]string{"fileId": f.ID, "message": "need it"})
	require.Equal(t, http.StatusOK, rr.Code)
	res := decode[accessResult](t, rr)
	assert.False(t, res.Access)
	require.NotEmpty(t, res.RequestID)

	// повторный запрос, пока первый ожидает решения
	rr = s.do(t, http.MethodPost, "/api/access/request", partnerToken, map[string]string{"fileId": f.ID})
	assert.Equal(t, http.StatusConflict, rr.Code)

	// решать может только владелец или администратор
	rr = s.do(t, http.MethodPost, "/api/access/approve", otherToken, map[string]string{"requestId": res.RequestID, "action": "approve"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/access/approve", ownerToken, map[string]string{"requestId": res.RequestID, "action": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/access/approve", ownerToken, map[string]string{"requestId": res.RequestID, "action": "approve"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "approved", decode[map[string]string](t, rr)["status"])

	rr = s.do(t, http.MethodPost, "/api/access/approve", ownerToken, map[string]string{"requestId": res.RequestID, "action": "deny"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/files/"+f.ID+"/download", partnerToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "quarterly numbers", rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "report.txt")

	rr = s.do(t, http.MethodGet, "/api/access/requests", ownerToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), res.RequestID)

	rr = s.do(t, http.MethodPost, "/api/access/approve", ownerToken, map[string]string{"requestId": "missing", "action": "approve"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAccess_Honeytoken(t *testing.T) {
	s := newTestServer(t)
	ownerID, ownerToken := s.register(t, "owner")
	partnerID, partnerToken := s.register(t, "partner")
	_, thiefToken := s.register(t, "thief")

	f := s.upload(t, ownerToken, "salary.csv", []byte("a,b\n1,2\n"))

	// неверный honeytoken: ответ без ошибки и без запроса, но ловушка записана
	rr := s.do(t, http.MethodPost, "/api/access/request", thiefToken, map[string]string{"fileId": f.ID, "honeytoken": "guess"})
	require.Equal(t, http.StatusOK, rr.Code)
	res := decode[accessResult](t, rr)
	assert.False(t, res.Access)
	assert.Empty(t, res.RequestID)

	rr = s.do(t, http.MethodPost, "/api/access/request", partnerToken, map[string]string{"fileId": f.ID, "honeytoken": f.HoneytokenID})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[accessResult](t, rr).Access)

	// повторное предъявление сработавшего токена
	rr = s.do(t, http.MethodPost, "/api/access/request", thiefToken, map[string]string{"fileId": f.ID, "honeytoken": f.HoneytokenID})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/alerts/files", ownerToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	alerts := decode[[]map[string]any](t, rr)
	assert.Len(t, alerts, 2)
	for _, a := range alerts {
		assert.Equal(t, ownerID, a["user_id"])
	}
	assert.Contains(t, rr.Body.String(), partnerID)
}

func TestAccess_UnknownFileAndAnonymous(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "someone")

	rr := s.do(t, http.MethodPost, "/api/access/request", token, map[string]string{"fileId": "nope"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/access/request", "", map[string]string{"fileId": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestFiles_AccessAndList(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.register(t, "owner")
	_, strangerToken := s.register(t, "stranger")
	f := s.upload(t, ownerToken, "notes.txt", []byte("hello"))

	rr := s.do(t, http.MethodPost, "/api/files/"+f.ID+"/access", ownerToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/files/"+f.ID+"/access", strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/files", ownerToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	files := decode[[]map[string]any](t, rr)
	require.Len(t, files, 1)
	assert.Equal(t, true, files[0]["owned"])
	assert.Equal(t, f.HoneytokenID, files[0]["honeytoken_id"])
}
