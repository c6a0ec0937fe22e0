package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: url, Timeout: timeout})
	require.NoError(t, err)
	return c
}

func stubServer(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	var be *Error
	require.True(t, errors.As(err, &be), "expected *Error, got %T: %v", err, err)
	assert.Equal(t, kind, be.Kind, "message: %s", be.Message)
	return be
}

func TestGenerateVideo_SendsPayload(t *testing.T) {
	var got payload
	var gotPath, gotID, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotID = r.Header.Get("X-Request-ID")
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"video_url":"http://x/y.mp4"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, time.Second)
	url, err := c.GenerateVideo(context.Background(), Request{ID: "req-1", Topics: []string{"AI"}, SourceType: "reddit"})
	require.NoError(t, err)

	assert.Equal(t, "http://x/y.mp4", url)
	assert.Equal(t, "/generate-news-video", gotPath)
	assert.Equal(t, "req-1", gotID)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, payload{Topics: []string{"AI"}, SourceType: "reddit"}, got)
}

func TestGenerateVideo_MissingURL(t *testing.T) {
	srv := stubServer(t, http.StatusOK, "application/json", `{"status":"ok"}`)
	c := newTestClient(t, srv.URL, time.Second)

	_, err := c.GenerateVideo(context.Background(), Request{Topics: []string{"AI"}, SourceType: "both"})
	be := requireKind(t, err, KindMalformedResponse)
	assert.Equal(t, msgNoVideoURL, be.Message)
}

func TestGenerateVideo_NonJSONSuccess(t *testing.T) {
	srv := stubServer(t, http.StatusOK, "text/html", `<html>ok</html>`)
	c := newTestClient(t, srv.URL, time.Second)

	_, err := c.GenerateVideo(context.Background(), Request{Topics: []string{"AI"}})
	requireKind(t, err, KindMalformedResponse)
}

func TestGenerateVideo_FailureBodies(t *testing.T) {
	long := strings.Repeat("x", 800)
	tests := []struct {
		name    string
		status  int
		body    string
		kind    ErrorKind
		message string
	}{
		{"detail string", 500, `{"detail":"pipeline exploded"}`, KindBackendRejected, "pipeline exploded"},
		{"detail list single", 422, `{"detail":[{"msg":"topic too long"}]}`, KindBackendRejected, "topic too long"},
		{"detail list joined", 422, `{"detail":[{"loc":["body","topics"],"msg":"a"},{"msg":"b","type":"x"}]}`, KindBackendRejected, "a, b"},
		{"no detail", 400, `{"error":"nope"}`, KindBackendRejected, "Unknown error"},
		{"detail number", 400, `{"detail":42}`, KindMalformedResponse, `{"detail":42}`},
		{"detail list without msg", 422, `{"detail":[{"loc":"x"}]}`, KindMalformedResponse, `{"detail":[{"loc":"x"}]}`},
		{"plain text", 502, `Bad Gateway`, KindMalformedResponse, "Bad Gateway"},
		{"json array", 500, `["a"]`, KindMalformedResponse, `["a"]`},
		{"truncated", 500, long, KindMalformedResponse, strings.Repeat("x", 500) + "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := stubServer(t, tt.status, "", tt.body)
			c := newTestClient(t, srv.URL, time.Second)

			_, err := c.GenerateVideo(context.Background(), Request{Topics: []string{"AI"}})
			be := requireKind(t, err, tt.kind)
			assert.Equal(t, tt.message, be.Message)
			assert.Equal(t, tt.status, be.Status)
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := c.GenerateVideo(context.Background(), Request{Topics: []string{"AI"}})
	be := requireKind(t, err, KindTimeout)
	assert.Equal(t, msgTimeout, be.Message)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGenerate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, time.Second)
	_, err := c.GenerateVideo(context.Background(), Request{Topics: []string{"AI"}})
	be := requireKind(t, err, KindUnreachable)
	assert.Equal(t, msgUnreachable, be.Message)
	assert.Zero(t, be.Status)
}

func TestGenerate_CancelledIsUnexpected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	c := newTestClient(t, srv.URL, 5*time.Second)
	_, err := c.GenerateVideo(ctx, Request{Topics: []string{"AI"}})
	requireKind(t, err, KindUnexpected)
}

func TestGenerateAudio(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "audio/mpeg; charset=binary")
		_, _ = w.Write([]byte{0xff, 0xfb, 0x90})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, time.Second)
	audio, err := c.GenerateAudio(context.Background(), Request{Topics: []string{"AI"}})
	require.NoError(t, err)
	assert.Equal(t, "/generate-news-audio", gotPath)
	assert.Equal(t, []byte{0xff, 0xfb, 0x90}, audio.Data)
	assert.Equal(t, "audio/mpeg", audio.ContentType)
}

func TestGenerateAudio_EmptyBody(t *testing.T) {
	srv := stubServer(t, http.StatusOK, "audio/mpeg", "")
	c := newTestClient(t, srv.URL, time.Second)

	_, err := c.GenerateAudio(context.Background(), Request{Topics: []string{"AI"}})
	requireKind(t, err, KindMalformedResponse)
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	c, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestAsError(t *testing.T) {
	assert.Nil(t, AsError(nil))

	be := AsError(errors.New("boom"))
	assert.Equal(t, KindUnexpected, be.Kind)
	assert.Equal(t, "boom", be.Message)

	orig := &Error{Kind: KindTimeout, Message: "slow"}
	assert.Same(t, orig, AsError(orig))
}

func TestError_String(t *testing.T) {
	e := &Error{Kind: KindBackendRejected, Message: "bad topic", Status: 422}
	assert.Equal(t, "API Error (422): bad topic", e.Error())
	e = &Error{Kind: KindUnreachable, Message: msgUnreachable}
	assert.Equal(t, "Connection Error: Backend server is unreachable.", e.Error())
}

func TestClassifyTransport_CancelledDialIsUnexpected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := &url.Error{Op: "Post", URL: "http://backend/generate-news-video", Err: &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: errors.New("operation was canceled"),
	}}

	be := classifyTransport(ctx, err)
	assert.Equal(t, KindUnexpected, be.Kind)
	assert.Contains(t, be.Message, "operation was canceled")

	be = classifyTransport(context.Background(), err)
	assert.Equal(t, KindUnreachable, be.Kind, "dial failures without cancellation stay unreachable")
}

func TestGenerateVideo_OversizedBodyIsMalformed(t *testing.T) {
	body := `{"video_url":"https://cdn.example.com/v.mp4","pad":"` + strings.Repeat("x", maxVideoBody) + `"}`
	srv := stubServer(t, http.StatusOK, "application/json", body)

	c := newTestClient(t, srv.URL, 5*time.Second)
	_, err := c.GenerateVideo(context.Background(), Request{Topics: []string{"AI"}})
	be := requireKind(t, err, KindMalformedResponse)
	assert.Equal(t, msgNoVideoURL, be.Message)
}

func TestExcerpt_MarksTruncation(t *testing.T) {
	short := strings.Repeat("é", maxBodyExcerpt)
	assert.Equal(t, short, excerpt([]byte(short)))

	long := excerpt([]byte(strings.Repeat("é", maxBodyExcerpt+10)))
	assert.Equal(t, maxBodyExcerpt+1, utf8.RuneCountInString(long))
	assert.True(t, strings.HasSuffix(long, "…"))
}
