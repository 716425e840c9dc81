package dbi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const predictionBody = `{"status":200,"timestamp":1718000000.5,"success":true,"response":{"label":"n02123045-tabby_cat","confidence":0.8642}}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	return srv, client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrEmptyBaseURL)

	_, err = NewClient("/api")
	assert.Error(t, err)

	client, err := NewClient("https://example.com/api/")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api", client.BaseURL())
}

func TestCheckHealth(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(requestIDHeader))
		writeJSON(w, http.StatusOK, `{"status":200,"timestamp":1718000000,"success":true,"response":"ok"}`)
	})

	resp, err := client.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &CommonResponse[string]{
		Status:    200,
		Timestamp: 1718000000,
		Success:   true,
		Response:  "ok",
	}, resp)
}

func TestPredictFromURL(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict/url", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"url": "https://example.com/cat.png"}, body)

		writeJSON(w, http.StatusOK, predictionBody)
	})

	resp, err := client.PredictFromURL(context.Background(), "https://example.com/cat.png")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.True(t, resp.Success)
	assert.Equal(t, "n02123045-tabby_cat", resp.Response.Label)
	assert.Equal(t, 0.8642, resp.Response.Confidence)
}

func TestPredictFromURLDoesNotValidate(t *testing.T) {
	var got string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body PredictURLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = body.URL
		writeJSON(w, http.StatusOK, predictionBody)
	})

	_, err := client.PredictFromURL(context.Background(), "not a url")
	require.NoError(t, err)
	assert.Equal(t, "not a url", got)
}

func TestPredictFromFile(t *testing.T) {
	content := pngBytes(t)

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict/upload", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "cat.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		uploaded, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, content, uploaded)

		writeJSON(w, http.StatusOK, predictionBody)
	})

	resp, err := client.PredictFromFile(context.Background(), NewImageFile("cat.png", content))
	require.NoError(t, err)
	assert.Equal(t, "n02123045-tabby_cat", resp.Response.Label)
}

func TestBaseURLPathIsKept(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeJSON(w, http.StatusOK, predictionBody)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL + "/api/")
	require.NoError(t, err)

	_, err = client.PredictFromURL(context.Background(), "https://example.com/cat.png")
	require.NoError(t, err)
	assert.Equal(t, "/api/predict/url", path)
}

func TestEnvelopeIsPassedThrough(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, predictionBody)
	})

	resp, err := client.PredictFromURL(context.Background(), "https://example.com/cat.png")
	require.NoError(t, err)

	encoded, err := json.Marshal(resp)
	require.NoError(t, err)

	var want, got map[string]any
	require.NoError(t, json.Unmarshal([]byte(predictionBody), &want))
	require.NoError(t, json.Unmarshal(encoded, &got))
	assert.Equal(t, want, got)
}

func TestErrorStatusIsReturnedAsData(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"status":422,"timestamp":1718000000,"success":false,"response":{"label":"","confidence":0}}`)
	})

	resp, err := client.PredictFromFile(context.Background(), NewImageFile("x.bin", []byte("nope")))
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, 422, resp.Status)
}

func TestNonJSONBodyFails(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	resp, err := client.CheckHealth(context.Background())
	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	srv.Close()

	ctx := context.Background()

	health, err := client.CheckHealth(ctx)
	assert.Error(t, err)
	assert.Nil(t, health)

	byURL, err := client.PredictFromURL(ctx, "https://example.com/cat.png")
	assert.Error(t, err)
	assert.Nil(t, byURL)

	byFile, err := client.PredictFromFile(ctx, NewImageFile("cat.png", pngBytes(t)))
	assert.Error(t, err)
	assert.Nil(t, byFile)
}

func TestCanceledContext(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, predictionBody)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.PredictFromURL(ctx, "https://example.com/cat.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStrictEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name: "complete envelope",
			body: predictionBody,
		},
		{
			name: "semantic failure is still data",
			body: `{"status":500,"timestamp":1,"success":false,"response":null}`,
		},
		{
			name:    "missing success",
			body:    `{"status":200,"timestamp":1,"response":{"label":"a-b","confidence":0.1}}`,
			wantErr: ErrInvalidEnvelope,
		},
		{
			name:    "missing response",
			body:    `{"status":200,"timestamp":1,"success":true}`,
			wantErr: ErrInvalidEnvelope,
		},
		{
			name:    "not an envelope",
			body:    `{"detail":"Not Found"}`,
			wantErr: ErrInvalidEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			}))
			defer srv.Close()

			client, err := NewClient(srv.URL, WithStrictEnvelope())
			require.NoError(t, err)

			resp, err := client.PredictFromURL(context.Background(), "https://example.com/cat.png")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, resp)
		})
	}
}

func TestLenientEnvelopeAcceptsPartialBody(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Not Found"}`)
	})

	resp, err := client.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &CommonResponse[string]{}, resp)
}

func TestUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		writeJSON(w, http.StatusOK, `{"status":200,"timestamp":1,"success":true,"response":"ok"}`)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithUserAgent("dbi-test"), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = client.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dbi-test", got)
}

func TestReadImageFile(t *testing.T) {
	file, err := ReadImageFile(strings.NewReader("abc"), "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, ImageFile{Name: "a.jpg", Content: []byte("abc")}, file)
}
