package workflows_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docflowhq/docflow/modules/workflows"
	"github.com/docflowhq/docflow/pkg/statemachine"
)

func newTestServer(t *testing.T) (*httptest.Server, *workflows.Service) {
	t.Helper()

	svc := workflows.NewService(workflows.Config{BusBuffer: 4}, nil)
	t.Cleanup(func() { _ = svc.Close() })

	r := chi.NewRouter()
	r.Mount("/workflows", workflows.Router(svc))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRouter(t *testing.T) {
	t.Parallel()

	t.Run("opens a record and walks it through its lifecycle", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)

		resp := postJSON(t, srv.URL+"/workflows/quotation", map[string]any{
			workflows.KeyTotalAmount: 100000,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		opened := decode[map[string]any](t, resp)
		recordID, _ := opened["record_id"].(string)
		require.NotEmpty(t, recordID)
		assert.Equal(t, "draft", opened["state"])

		resp = postJSON(t, srv.URL+"/workflows/records/"+recordID+"/events/SUBMIT", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		sent := decode[map[string]any](t, resp)
		assert.Equal(t, true, sent["success"])
		assert.Equal(t, "submitted", sent["state"])
		assert.Equal(t, "Submitted", sent["label"])
	})

	t.Run("guard rejection returns the business message", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)

		resp := postJSON(t, srv.URL+"/workflows/quotation", nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		opened := decode[map[string]any](t, resp)
		recordID, _ := opened["record_id"].(string)

		resp = postJSON(t, srv.URL+"/workflows/records/"+recordID+"/events/SUBMIT", nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		rejected := decode[map[string]any](t, resp)
		assert.Equal(t, false, rejected["success"])
		assert.Equal(t, "Cannot submit quotation with zero amount", rejected["error"])
		assert.Equal(t, "draft", rejected["state"])
	})

	t.Run("payment payload flows through to the machine", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)

		resp := postJSON(t, srv.URL+"/workflows/invoice", map[string]any{
			workflows.KeyTotalAmount: 100000,
		})
		opened := decode[map[string]any](t, resp)
		recordID, _ := opened["record_id"].(string)

		resp = postJSON(t, srv.URL+"/workflows/records/"+recordID+"/events/SEND", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = postJSON(t, srv.URL+"/workflows/records/"+recordID+"/events/RECORD_PAYMENT", map[string]any{
			workflows.PayloadAmount: 100000,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		paid := decode[map[string]any](t, resp)
		assert.Equal(t, "paid", paid["state"])
		assert.Equal(t, true, paid["done"])
	})

	t.Run("unknown document type and record return 404", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)

		resp := postJSON(t, srv.URL+"/workflows/timesheet", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()

		getResp, err := http.Get(srv.URL + "/workflows/records/missing")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
		getResp.Body.Close()
	})

	t.Run("serves definition and record visualizations", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t)

		resp, err := http.Get(srv.URL + "/workflows/definitions/invoice/visualization")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		viz := decode[statemachine.Visualization](t, resp)
		assert.Equal(t, "invoice", viz.ID)
		assert.NotEmpty(t, viz.States)
		assert.NotEmpty(t, viz.Transitions)
		assert.Empty(t, viz.CurrentState)

		open := postJSON(t, srv.URL+"/workflows/quotation", nil)
		opened := decode[map[string]any](t, open)
		recordID, _ := opened["record_id"].(string)

		resp, err = http.Get(srv.URL + "/workflows/records/" + recordID + "/visualization")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		recordViz := decode[statemachine.Visualization](t, resp)
		assert.Equal(t, "quotation", recordViz.ID)
		assert.Equal(t, "draft", recordViz.CurrentState)
	})

	t.Run("delete closes the record", func(t *testing.T) {
		t.Parallel()

		srv, svc := newTestServer(t)

		open := postJSON(t, srv.URL+"/workflows/quotation", nil)
		opened := decode[map[string]any](t, open)
		recordID, _ := opened["record_id"].(string)

		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/workflows/records/"+recordID, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		_, ok := svc.Get(recordID)
		assert.False(t, ok)
	})
}
