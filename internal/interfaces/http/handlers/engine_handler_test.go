package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AcroLex/internal/application/expansion"
	"github.com/turtacn/AcroLex/internal/config"
	"github.com/turtacn/AcroLex/internal/engine/aligner"
	"github.com/turtacn/AcroLex/internal/engine/pipeline"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		Shape: config.ShapeConfig{MinLength: 2, MaxLength: 8},
		Aligner: config.AlignerConfig{
			SkipPenalty:     0.25,
			AcceptThreshold: 0.6,
			FreeSkipWords:   append([]string(nil), config.DefaultFreeSkipWords...),
		},
		WindowSentences: 1,
		RankingPolicy:   config.RankingConfidence,
		MergePolicy:     config.MergeLoose,
		Workers:         1,
	}
}

func testRouter() *gin.Engine {
	cfg := testEngineConfig()
	svc := expansion.NewService(pipeline.New(cfg, nil, nil), nil, nil, nil)
	h := NewEngineHandler(svc, aligner.New(cfg.Aligner), nil, nil)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.POST("/expand", h.Expand)
	v1.POST("/score", h.Score)
	v1.GET("/acronyms", h.Acronyms)
	v1.GET("/acronyms/:surface", h.Lookup)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExpandEndpoint(t *testing.T) {
	r := testRouter()

	w := postJSON(t, r, "/api/v1/expand", gin.H{
		"documents": []gin.H{
			{"id": "doc-1", "sentences": [][]string{
				{"World", "Health", "Organization", "(", "WHO", ")", "met", "."},
				{"The", "WHO", "responded", "."},
			}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RunID     string `json:"run_id"`
		Documents []struct {
			ID        string     `json:"id"`
			Sentences [][]string `json:"sentences"`
		} `json:"documents"`
		Stats pipeline.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t,
		[]string{"The", "world", "health", "organization", "responded", "."},
		resp.Documents[0].Sentences[1])
	assert.Equal(t, 1, resp.Stats.Defined)
	assert.Equal(t, 1, resp.Stats.Resolved)
}

func TestExpandRejectsInvalidBody(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expand", bytes.NewReader([]byte("{broken")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookupAfterExpand(t *testing.T) {
	r := testRouter()
	postJSON(t, r, "/api/v1/expand", gin.H{
		"documents": []gin.H{
			{"id": "doc-1", "sentences": [][]string{
				{"World", "Health", "Organization", "(", "WHO", ")", "."},
			}},
		},
	})

	w := get(r, "/api/v1/acronyms/WHO")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Acronym    string `json:"acronym"`
		Prototypes []struct {
			ID        string `json:"id"`
			Expansion string `json:"expansion"`
		} `json:"prototypes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Prototypes, 1)
	assert.Equal(t, "WHO#1", resp.Prototypes[0].ID)
	assert.Equal(t, "world health organization", resp.Prototypes[0].Expansion)

	// Case-sensitive keys: the lowercase surface is a different acronym.
	w = get(r, "/api/v1/acronyms/who")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLookupBeforeAnyRun(t *testing.T) {
	r := testRouter()
	w := get(r, "/api/v1/acronyms/WHO")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAcronymsListing(t *testing.T) {
	r := testRouter()

	w := get(r, "/api/v1/acronyms")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acronyms":[]}`, w.Body.String())

	postJSON(t, r, "/api/v1/expand", gin.H{
		"documents": []gin.H{
			{"id": "doc-1", "sentences": [][]string{
				{"Central", "Processing", "Unit", "(", "CPU", ")", "."},
				{"World", "Health", "Organization", "(", "WHO", ")", "."},
			}},
		},
	})

	w = get(r, "/api/v1/acronyms")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Acronyms []string `json:"acronyms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"CPU", "WHO"}, resp.Acronyms)
}

func TestScoreEndpoint(t *testing.T) {
	r := testRouter()

	w := postJSON(t, r, "/api/v1/score", gin.H{
		"acronym": "WHO",
		"phrase":  []string{"World", "Health", "Organization"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Confidence float64 `json:"confidence"`
		Accepted   bool    `json:"accepted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Accepted)
	assert.Equal(t, 1.0, resp.Confidence)

	w = postJSON(t, r, "/api/v1/score", gin.H{
		"acronym": "XYZ",
		"phrase":  []string{"totally", "unrelated"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Accepted)
}
