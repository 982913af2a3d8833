package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newRetryClient(doer Doer) *Client {
	return NewClient(Options{
		Doer:          doer,
		RetryInterval: time.Millisecond,
	})
}

func TestDoRetriesServerErrorsUpToBound(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newRetryClient(srv.Client())

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// 1 initial attempt + 3 retries.
	require.EqualValues(t, 4, atomic.LoadInt32(&attempts))
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := newRetryClient(srv.Client())

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.EqualValues(t, 1, atomic.LoadInt32(&attempts))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDoRecoversAfterTransientFailures(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n <= 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := newRetryClient(srv.Client())

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 4, atomic.LoadInt32(&attempts))
}

func TestDoReplaysBodyAcrossRetries(t *testing.T) {
	var attempts int32
	var lastBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastBody.Store(string(body))
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newRetryClient(srv.Client())

	req, err := NewJSONRequest(context.Background(), http.MethodPost, srv.URL, map[string]string{"key": "value"})
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.EqualValues(t, 2, atomic.LoadInt32(&attempts))
	require.JSONEq(t, `{"key":"value"}`, lastBody.Load().(string))
}

func TestDoRetriesConnectionErrors(t *testing.T) {
	var attempts int32
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("connection refused")
	})

	client := newRetryClient(doer)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://unreachable.invalid", nil)
	require.NoError(t, err)

	_, err = client.Do(req) //nolint:bodyclose // no response on failure
	require.Error(t, err)
	require.EqualValues(t, 4, atomic.LoadInt32(&attempts))
}

func TestDoStopsRetryingWhenContextCanceled(t *testing.T) {
	var attempts int32
	ctx, cancel := context.WithCancel(context.Background())
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&attempts, 1)
		cancel()
		return nil, errors.New("connection reset")
	})

	client := newRetryClient(doer)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://unreachable.invalid", nil)
	require.NoError(t, err)

	_, err = client.Do(req) //nolint:bodyclose // no response on failure
	require.Error(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&attempts))
}

func TestDoSetsRequestIDAndUserAgent(t *testing.T) {
	var gotRequestID, gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(HeaderRequestID)
		gotUserAgent = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := NewClient(Options{Doer: srv.Client(), UserAgent: "carebridge-sdk-go/test"})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NotEmpty(t, gotRequestID)
	require.Equal(t, "carebridge-sdk-go/test", gotUserAgent)
}

func TestDoHonorsRateLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	// 1 request burst at 50 rps: the second call must wait ~20ms.
	client := NewClient(Options{
		Doer:    srv.Client(),
		Limiter: rate.NewLimiter(50, 1),
	})

	start := time.Now()
	for i := 0; i < 2; i++ {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestNewJSONRequest(t *testing.T) {
	req, err := NewJSONRequest(context.Background(), http.MethodPost, "http://example.com/v1/x", map[string]string{"a": "b"})
	require.NoError(t, err)
	require.Equal(t, "application/json", req.Header.Get("Content-Type"))
	require.NotNil(t, req.GetBody)

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":"b"}`, string(body))
}

func TestNewJSONRequestNilPayload(t *testing.T) {
	req, err := NewJSONRequest(context.Background(), http.MethodPost, "http://example.com/v1/x", nil)
	require.NoError(t, err)
	require.Empty(t, req.Header.Get("Content-Type"))
	require.Nil(t, req.Body)
}

func TestNewFormRequestDemotesTextOnlyForms(t *testing.T) {
	form := &Form{}
	form.Set("title", "Blood work")
	form.Set("notes", "fasting")
	form.Set("tags", "lab")
	form.Set("tags", "quarterly")

	req, err := NewFormRequest(context.Background(), http.MethodPost, "http://example.com/v1/reports", form)
	require.NoError(t, err)
	require.Equal(t, "application/json", req.Header.Get("Content-Type"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"title":"Blood work","notes":"fasting","tags":["lab","quarterly"]}`, string(body))
}

func TestNewFormRequestKeepsMultipartWithFiles(t *testing.T) {
	form := &Form{}
	form.Set("title", "X-ray")
	form.AddFile("file", "xray.png", "image/png", []byte{0x89, 0x50, 0x4e, 0x47})

	req, err := NewFormRequest(context.Background(), http.MethodPost, "http://example.com/v1/reports", form)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data"))

	require.NoError(t, req.ParseMultipartForm(1<<20))
	require.Equal(t, "X-ray", req.FormValue("title"))

	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	defer file.Close()
	require.Equal(t, "xray.png", header.Filename)

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, content)
}

func TestDecodeJSON(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"total":5}`)),
	}

	var target struct {
		Total int `json:"total"`
	}
	require.NoError(t, DecodeJSON(resp, &target))
	require.Equal(t, 5, target.Total)
}

func TestDecodeJSONRejectsNilTarget(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{}`)),
	}
	require.Error(t, DecodeJSON(resp, nil))
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestDemoteFormEmpty(t *testing.T) {
	raw, err := json.Marshal(demoteForm(nil))
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(raw))
}
