package zep

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOntology() Ontology {
	return Ontology{
		EntityTypes: map[string]EntityType{
			"Character": {
				Description: "A person in the world",
				Fields: map[string]Field{
					"role": TextField("What the character does"),
				},
			},
		},
		EdgeTypes: map[string]EdgeType{
			"ALLY_OF": {
				Description:   "Two characters cooperating",
				SourceTargets: []SourceTarget{{Source: "Character", Target: "Character"}},
			},
		},
	}
}

func TestRegistrar_EnsureOncePerTarget(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/graph/set-entity-types", r.URL.Path)

		var body struct {
			GraphIDs    []string                   `json:"graph_ids"`
			EntityTypes map[string]json.RawMessage `json:"entity_types"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []string{"g1"}, body.GraphIDs)
		require.Contains(t, body.EntityTypes, "Character")
		w.Write([]byte(`{}`))
	}))

	reg := NewOntologyRegistrar(client, testOntology(), slog.Default())
	target := Target{GraphID: "g1"}

	require.NoError(t, reg.Ensure(context.Background(), target))
	require.NoError(t, reg.Ensure(context.Background(), target))
	require.NoError(t, reg.Ensure(context.Background(), target))

	assert.Equal(t, int32(1), calls.Load(), "repeat calls for one target must hit the API once")
}

func TestRegistrar_SeparateTargets(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{}`))
	}))

	reg := NewOntologyRegistrar(client, testOntology(), slog.Default())

	require.NoError(t, reg.Ensure(context.Background(), Target{GraphID: "g1"}))
	require.NoError(t, reg.Ensure(context.Background(), Target{UserID: "u1"}))
	// same id in a different scope kind is a different target
	require.NoError(t, reg.Ensure(context.Background(), Target{GraphID: "u1"}))

	assert.Equal(t, int32(3), calls.Load())
}

func TestRegistrar_FailureNotCached(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"transient"}`))
			return
		}
		w.Write([]byte(`{}`))
	}))

	reg := NewOntologyRegistrar(client, testOntology(), slog.Default())
	target := Target{UserID: "u1"}

	require.Error(t, reg.Ensure(context.Background(), target))
	require.NoError(t, reg.Ensure(context.Background(), target))
	assert.Equal(t, int32(2), calls.Load())
}
