package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/agrostats/faostat-api/api/catalog"
	"github.com/agrostats/faostat-api/api/datasets"
	"github.com/agrostats/faostat-api/api/query"
)

// stubStore serves canned responses in order and records every statement.
type stubStore struct {
	queries   []string
	args      [][]any
	responses [][]map[string]any
	err       error
}

func (s *stubStore) Select(_ context.Context, sql string, args ...any) ([]map[string]any, error) {
	s.queries = append(s.queries, sql)
	s.args = append(s.args, args)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return nil, nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func testCodes() *catalog.Codes {
	return catalog.NewCodes(map[string][]string{
		"area":    {"33", "68", "100"},
		"item":    {"236", "15"},
		"element": {datasets.ElementCodeProducerPrice},
		"flag":    {datasets.FlagOfficialFigure},
	})
}

func newTestAPI(t *testing.T, store *stubStore) *API {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	codes := testCodes()
	configs, err := datasets.Build(codes)
	require.NoError(t, err)

	api := New(query.NewEngine(store, log), configs, codes, log)
	api.Clock = clockwork.NewFakeClockAt(
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return api
}

func doRequest(t *testing.T, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func requireErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	require.Equal(t, status, rec.Code)
	var body ErrorResponse
	decodeBody(t, rec, &body)
	require.Equal(t, status, body.Errcode)
	require.Equal(t, message, body.Message)
}
