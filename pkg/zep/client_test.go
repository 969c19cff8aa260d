package zep

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		APIKey:            "test-key",
		BaseURL:           srv.URL,
		RequestsPerMinute: 100000,
	})
	require.NoError(t, err)
	return client, srv
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestClient_AuthHeader(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"graphs":[]}`))
	}))

	_, err := client.ListGraphs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Api-Key test-key", gotAuth)
}

func TestClient_ErrorParsing(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"thread not found"}`))
	}))

	_, err := client.GetThread(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "thread not found")
}

func TestEnsureUser_SwallowsAlreadyExists(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusConflict} {
		t.Run(fmt.Sprintf("status_%d", status), func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				w.Write([]byte(`{"message":"user already exists"}`))
			}))

			err := client.EnsureUser(context.Background(), "demo-user")
			assert.NoError(t, err)
		})
	}
}

func TestEnsureThread_PropagatesOtherErrors(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))

	err := client.EnsureThread(context.Background(), "t1", "u1")
	require.Error(t, err)
	assert.False(t, IsAlreadyExists(err))
}

func TestAddData_TargetScoping(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{}`))
	}))

	err := client.AddData(context.Background(), Target{UserID: "u1", GraphID: "g1"}, AddDataRequest{
		Data: `{"k":"v"}`,
	})
	require.NoError(t, err)

	// graph wins when both are set, and type defaults to json
	assert.Equal(t, "g1", got["graph_id"])
	assert.Nil(t, got["user_id"])
	assert.Equal(t, "json", got["type"])
}

func TestAddData_RequiresTarget(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	err := client.AddData(context.Background(), Target{}, AddDataRequest{Data: "x"})
	require.Error(t, err)
}

func TestAddDataBatch_Empty(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty batch")
	}))

	err := client.AddDataBatch(context.Background(), Target{UserID: "u1"}, nil)
	assert.NoError(t, err)
}

func TestAllNodes_Pagination(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Limit      int    `json:"limit"`
			UUIDCursor string `json:"uuid_cursor"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, PageSize, body.Limit)

		n := calls.Add(1)
		if n == 1 {
			require.Empty(t, body.UUIDCursor)
			// full page: the walk must continue from the last uuid
			nodes := make([]EntityNode, PageSize)
			for i := range nodes {
				nodes[i] = EntityNode{UUID: fmt.Sprintf("n%d", i), Name: fmt.Sprintf("node %d", i)}
			}
			json.NewEncoder(w).Encode(nodes)
			return
		}
		require.Equal(t, fmt.Sprintf("n%d", PageSize-1), body.UUIDCursor)
		json.NewEncoder(w).Encode([]EntityNode{{UUID: "last", Name: "tail"}})
	}))

	nodes, err := client.AllNodes(context.Background(), Target{GraphID: "g1"})
	require.NoError(t, err)
	assert.Len(t, nodes, PageSize+1)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "last", nodes[PageSize].UUID)
}

func TestAllEdges_ShortFirstPage(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode([]EntityEdge{{UUID: "e1", Fact: "a knows b"}})
	}))

	edges, err := client.AllEdges(context.Background(), Target{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, edges, 1)
	assert.Equal(t, int32(1), calls.Load(), "a short page must end the walk")
}

func TestAddThreadMessages_ReturnsContext(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages      []Message `json:"messages"`
			ReturnContext bool      `json:"return_context"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 2)
		require.True(t, body.ReturnContext)
		w.Write([]byte(`{"context":"FACTS: a knows b"}`))
	}))

	ctxBlock, err := client.AddThreadMessages(context.Background(), "t1", []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}, &AddMessagesOptions{ReturnContext: true})
	require.NoError(t, err)
	assert.Equal(t, "FACTS: a knows b", ctxBlock)
}

func TestSearch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "who is Aria", body["query"])
		w.Write([]byte(`{"edges":[{"uuid":"e1","fact":"Aria leads the guild"}],"nodes":[{"uuid":"n1","name":"Aria"}]}`))
	}))

	results, err := client.Search(context.Background(), Target{GraphID: "g1"}, "who is Aria", SearchOptions{Limit: 20})
	require.NoError(t, err)
	require.Len(t, results.Edges, 1)
	require.Len(t, results.Nodes, 1)
	assert.Equal(t, "Aria", results.Nodes[0].Name)
}

func TestTarget_CacheKey(t *testing.T) {
	assert.Equal(t, "graph:g1", Target{GraphID: "g1"}.CacheKey())
	assert.Equal(t, "user:u1", Target{UserID: "u1"}.CacheKey())
	assert.Equal(t, "graph:g1", Target{UserID: "u1", GraphID: "g1"}.CacheKey())
}
