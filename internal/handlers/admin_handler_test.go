package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_RequiresAdminRole(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "user")

	rr := s.do(t, http.MethodGet, "/api/admin/partners", token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/admin/partners", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdmin_ManualBlockFlow(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.admin(t)
	_, ownerToken := s.register(t, "owner")
	partnerID, partnerToken := s.register(t, "partner")

	f1 := s.upload(t, ownerToken, "a.txt", []byte("a"))
	f2 := s.upload(t, ownerToken, "b.txt", []byte("b"))

	// первый запрос регистрирует партнёра
	rr := s.do(t, http.MethodPost, "/api/access/request", partnerToken, map[string]string{"fileId": f1.ID})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/admin/partners/"+partnerID+"/block", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	p := decode[map[string]any](t, rr)
	assert.Equal(t, "restricted", p["status"])
	assert.Equal(t, true, p["manual_block"])

	rr = s.do(t, http.MethodPost, "/api/admin/partners/"+partnerID+"/block", adminToken, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// заблокированный партнёр не создаёт запросов
	rr = s.do(t, http.MethodPost, "/api/access/request", partnerToken, map[string]string{"fileId": f2.ID})
	require.Equal(t, http.StatusOK, rr.Code)
	res := decode[accessResult](t, rr)
	assert.False(t, res.Access)
	assert.Empty(t, res.RequestID)

	rr = s.do(t, http.MethodPost, "/api/admin/partners/"+partnerID+"/unblock", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, decode[map[string]any](t, rr)["manual_block"])

	rr = s.do(t, http.MethodGet, "/api/admin/partners/"+partnerID+"/history", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"cause":"manual_block"`)
	assert.Contains(t, rr.Body.String(), `"cause":"manual_unblock"`)

	rr = s.do(t, http.MethodGet, "/api/admin/partners/"+partnerID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/admin/partners/ghost/block", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = s.do(t, http.MethodGet, "/api/admin/partners/ghost", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdmin_TrapLogsAndDashboards(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.admin(t)
	_, ownerToken := s.register(t, "owner")
	partnerID, partnerToken := s.register(t, "partner")
	f := s.upload(t, ownerToken, "c.txt", []byte("c"))

	rr := s.do(t, http.MethodPost, "/api/access/request", partnerToken, map[string]string{"fileId": f.ID, "honeytoken": "wrong"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/admin/trap-logs?partner="+partnerID, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	traps := decode[[]map[string]any](t, rr)
	require.Len(t, traps, 1)
	assert.Equal(t, "high", traps[0]["severity"])
	trapID := traps[0]["id"].(string)

	rr = s.do(t, http.MethodPost, "/api/admin/trap-logs/"+trapID+"/escalate", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode[map[string]any](t, rr)["escalated"])
	rr = s.do(t, http.MethodPost, "/api/admin/trap-logs/"+trapID+"/escalate", adminToken, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/admin/risk-overview", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	overview := decode[map[string]any](t, rr)
	assert.EqualValues(t, 1, overview["trap_hits"])
	assert.EqualValues(t, 1, overview["partners"])

	rr = s.do(t, http.MethodGet, "/api/admin/partner-activity", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), partnerID)

	rr = s.do(t, http.MethodGet, "/api/admin/user-activity", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"login":"owner"`)
}

func TestAdmin_AccessLogs(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.admin(t)
	_, ownerToken := s.register(t, "owner")
	partnerID, partnerToken := s.register(t, "partner")
	f := s.upload(t, ownerToken, "d.txt", []byte("d"))

	rr := s.do(t, http.MethodPost, "/api/access/request", partnerToken, map[string]string{"fileId": f.ID})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/admin/access-logs?partner="+partnerID+"&file="+f.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	logs := decode[[]map[string]any](t, rr)
	require.NotEmpty(t, logs)
	assert.Equal(t, "request_created", logs[0]["action"])

	rr = s.do(t, http.MethodGet, "/api/admin/access-logs?from=yesterday", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/admin/access-logs/verify", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode[map[string]any](t, rr)["ok"])
}

func TestEscalations_Flow(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.admin(t)
	_, ownerToken := s.register(t, "owner")
	partnerID, partnerToken := s.register(t, "partner")
	f := s.upload(t, ownerToken, "e.txt", []byte("e"))
	rr := s.do(t, http.MethodPost, "/api/access/request", partnerToken, map[string]string{"fileId": f.ID})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/escalations", ownerToken, map[string]string{"partnerId": "ghost", "reason": "odd"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/escalations", ownerToken, map[string]string{"partnerId": partnerID, "reason": "suspicious requests"})
	require.Equal(t, http.StatusCreated, rr.Code)
	escID := decode[map[string]any](t, rr)["id"].(string)

	rr = s.do(t, http.MethodGet, "/api/admin/escalations?status=open", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), escID)

	rr = s.do(t, http.MethodPost, "/api/admin/escalations/"+escID+"/resolve", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "resolved", decode[map[string]any](t, rr)["status"])

	rr = s.do(t, http.MethodPost, "/api/admin/escalations/"+escID+"/resolve", adminToken, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}
