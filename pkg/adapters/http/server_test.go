package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/domain"
	"github.com/aretw0/cells/pkg/organism"
	"github.com/aretw0/cells/pkg/schema"
)

func newServer(t *testing.T) (*Server, *organism.Organism) {
	t.Helper()
	o, err := organism.New(dna.Genome{Nuclei: dna.Dna{
		"version": dna.Config(schema.String()),
		"count":   dna.State(schema.Int(), 0),
		"bump":    dna.Event(schema.Int()),
		"add":     dna.Query(schema.Tuple(schema.Int(), schema.Int()), schema.Int()),
		"shut":    dna.Query(schema.Any(), schema.Any()),
	}}, organism.Nexus{
		"bump": organism.Sink(func(ctx context.Context, f *organism.Flora, args ...any) error {
			cur, _ := f.Nuclei.Get("count")
			return f.Nuclei.Set(ctx, "count", cur.(int)+args[0].(int))
		}),
		"add": func(_ context.Context, _ *organism.Flora, args ...any) (any, error) {
			return args[0].(int) + args[1].(int), nil
		},
	}, map[string]any{"version": "1.0"}, organism.WithName("cell"))
	require.NoError(t, err)
	_, err = o.Inhibit("shut", func(domain.Signal) (bool, error) { return true, nil })
	require.NoError(t, err)
	api, err := o.Genesis()
	require.NoError(t, err)

	s := NewServer(api)
	t.Cleanup(s.Close)
	return s, o
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestServer_Reads(t *testing.T) {
	s, _ := newServer(t)

	w := do(t, s, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])

	w = do(t, s, "GET", "/info", "")
	assert.Equal(t, "cell", decodeBody(t, w)["organism"])

	w = do(t, s, "GET", "/config", "")
	assert.Equal(t, map[string]any{"version": "1.0"}, decodeBody(t, w))

	w = do(t, s, "GET", "/state/count", "")
	assert.Equal(t, float64(0), decodeBody(t, w)["value"])

	w = do(t, s, "GET", "/attributes", "")
	attrs := decodeBody(t, w)
	assert.Len(t, attrs, 5)
	assert.Equal(t, "query", attrs["add"].(map[string]any)["kind"])
}

func TestServer_Writes(t *testing.T) {
	s, o := newServer(t)

	w := do(t, s, "PUT", "/state/count", `{"value": 4}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decodeBody(t, w)["value"])

	w = do(t, s, "POST", "/events/bump", `{"args": [3]}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 7, o.State()["count"])

	w = do(t, s, "POST", "/queries/add", `{"args": [10, 20]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(30), decodeBody(t, w)["result"])

	w = do(t, s, "GET", "/state", "")
	assert.Equal(t, map[string]any{"count": float64(7)}, decodeBody(t, w))
}

func TestServer_Errors(t *testing.T) {
	s, o := newServer(t)

	t.Run("Validation", func(t *testing.T) {
		w := do(t, s, "PUT", "/state/count", `{"value": "x"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "count", decodeBody(t, w)["key"])
	})

	t.Run("Inhibited", func(t *testing.T) {
		w := do(t, s, "POST", "/queries/shut", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Unknown", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, s, "POST", "/events/nope", "").Code)
		assert.Equal(t, http.StatusNotFound, do(t, s, "PUT", "/state/version", `{"value": "2"}`).Code)
		assert.Equal(t, http.StatusNotFound, do(t, s, "POST", "/queries/bump", "").Code)
	})

	t.Run("BadBody", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(t, s, "POST", "/events/bump", "{").Code)
	})

	t.Run("Inactive", func(t *testing.T) {
		o.Apoptosis()
		w := do(t, s, "GET", "/config", "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "inactive", decodeBody(t, do(t, s, "GET", "/health", ""))["status"])
	})
}

func TestServer_TraceHeader(t *testing.T) {
	s, o := newServer(t)
	var ids []string
	o.Subscribe(func(r domain.Record) { ids = append(ids, r.ActionID) })

	req := httptest.NewRequest("POST", "/events/bump", strings.NewReader(`{"args": [1]}`))
	req.Header.Set(TraceHeader, "req-42")
	s.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{"req-42", "req-42"}, ids)
}

func TestServer_Records(t *testing.T) {
	s, _ := newServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/records?attribute=count", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readData := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}
	assert.Equal(t, "connected", readData())

	w := do(t, s, "POST", "/events/bump", `{"args": [2]}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var rec domain.Record
	require.NoError(t, json.Unmarshal([]byte(readData()), &rec))
	assert.Equal(t, domain.RecordUpdate, rec.Type, "the bump event itself is filtered out")
	assert.Equal(t, "count", rec.Attribute)
	assert.Equal(t, float64(2), rec.Next)
}
