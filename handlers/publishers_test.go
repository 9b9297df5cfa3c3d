package handlers

import (
	"net/http"
	"testing"

	"github.com/newsdesk/newsdesk-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishersRoutes(t *testing.T) {
	s := newServer(t)
	body := map[string]string{"name": "Gazette", "email": "desk@gazette.test", "logo": "g.png"}

	w := s.do(http.MethodPost, "/publishers", "desk@gazette.test", body)
	requireStatus(t, w, http.StatusForbidden)

	w = s.do(http.MethodPost, "/publishers", adminEmail, body)
	requireStatus(t, w, http.StatusOK)
	var ins models.InsertResult
	decode(t, w, &ins)

	w = s.do(http.MethodPost, "/publishers", adminEmail, body)
	requireError(t, w, http.StatusConflict, "This person is already a publisher")

	id := postArticle(t, s, "reporter@newsdesk.test", map[string]string{"title": "t", "publisher": "Gazette"})
	requireStatus(t, s.do(http.MethodPatch, "/admin/articles/approve/"+id, adminEmail, nil), http.StatusOK)

	w = s.do(http.MethodGet, "/publishers", "", nil)
	requireStatus(t, w, http.StatusOK)
	var list []map[string]interface{}
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Gazette", list[0]["name"])
	assert.Equal(t, float64(1), list[0]["articleCount"])

	w = s.do(http.MethodDelete, "/admin/publishers/"+ins.InsertedID, adminEmail, nil)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, w.Body.String())
	w = s.do(http.MethodGet, "/publishers/check-email/desk@gazette.test", "", nil)
	assert.JSONEq(t, `{"exists":false}`, w.Body.String())
}
