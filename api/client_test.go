package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)
	return client, server
}

func TestSendMessageMultipart(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "hello", r.FormValue("message"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "notes.txt", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "file body", string(data))

		json.NewEncoder(w).Encode(map[string]string{"reply": "hi there"})
	}))

	reply, err := client.SendMessage(context.Background(), "hello", &FileUpload{
		Filename: "notes.txt",
		MimeType: "text/plain",
		Data:     []byte("file body"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
}

func TestSendMessageWithoutFile(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "just text", r.FormValue("message"))
		assert.Empty(t, r.MultipartForm.File)

		json.NewEncoder(w).Encode(map[string]string{"reply": "ok"})
	}))

	reply, err := client.SendMessage(context.Background(), "just text", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestListKeyTerms(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/key-terms", r.URL.Path)

		w.Write([]byte(`{"key_terms":{"Foo":{"definition":"defines foo","relevance":"High"}}}`))
	}))

	terms, err := client.ListKeyTerms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]KeyTerm{
		"Foo": {Definition: "defines foo", Relevance: "High"},
	}, terms)
}

func TestListKeyTermsEmpty(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	terms, err := client.ListKeyTerms(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, terms)
	assert.Empty(t, terms)
}

func TestCreateKeyTerm(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/key-terms", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{
			"term":       "Foo",
			"definition": "defines foo",
			"relevance":  "Low",
		}, body)
	}))

	err := client.CreateKeyTerm(context.Background(), "Foo", KeyTerm{
		Definition: "defines foo",
		Relevance:  "Low",
	})
	require.NoError(t, err)
}

func TestUpdateKeyTermEscapesTerm(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/key-terms/foo%20bar%2Fbaz", r.URL.EscapedPath())

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new def", body["definition"])
		assert.Equal(t, "Medium", body["relevance"])
		assert.NotContains(t, body, "term")
	}))

	err := client.UpdateKeyTerm(context.Background(), "foo bar/baz", KeyTerm{
		Definition: "new def",
		Relevance:  "Medium",
	})
	require.NoError(t, err)
}

func TestDeleteKeyTerm(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/key-terms/Foo", r.URL.EscapedPath())
	}))

	require.NoError(t, client.DeleteKeyTerm(context.Background(), "Foo"))
}

func TestServerErrorMapping(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "term already exists", http.StatusConflict)
	}))

	err := client.CreateKeyTerm(context.Background(), "Foo", KeyTerm{})
	require.Error(t, err)
	assert.True(t, IsServerError(err))
	assert.False(t, IsTransportError(err))

	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Contains(t, se.Body, "term already exists")
}

func TestTransportErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)
	server.Close() // connection refused from here on

	_, err = client.SendMessage(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.False(t, IsServerError(err))
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}
