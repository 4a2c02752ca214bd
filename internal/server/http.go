package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/karupanerura/exprcalc/internal/expression"
	"github.com/karupanerura/exprcalc/internal/types"
)

const basePath = "/v1/evaluations"

type evaluation struct {
	Name       string    `json:"name"`
	CreateTime time.Time `json:"createTime"`
	State      string    `json:"state"`
	Expression string    `json:"expression"`
	Result     *float64  `json:"result,omitempty"`
	Error      any       `json:"error,omitempty"`
}

type httpHandler struct {
	idBase      uint64
	evaluations sync.Map
}

// NewHTTPHandler returns the evaluations API handler:
//
//	POST /v1/evaluations      evaluate {"expression": "..."} and record it
//	GET  /v1/evaluations      list records ordered by creation time
//	GET  /v1/evaluations/{id} fetch a single record
func NewHTTPHandler() http.Handler {
	return &httpHandler{}
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, basePath) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if r.URL.Path == basePath {
		switch r.Method {
		case http.MethodGet:
			h.listEvaluations(w, r)
			return

		case http.MethodPost:
			h.createEvaluation(w, r)
			return

		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
	}

	id := r.URL.Path[strings.LastIndexByte(r.URL.Path, '/')+1:]
	switch r.Method {
	case http.MethodGet:
		h.getEvaluation(w, r, id)
		return

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
}

func (h *httpHandler) createEvaluation(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var ev *evaluation
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		log.Printf("failed to decode request body: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if ev.Expression == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id := fmt.Sprintf("00000000-0000-0000-0000-%012x", atomic.AddUint64(&h.idBase, 1))
	ev.Name = basePath + "/" + id
	ev.CreateTime = time.Now().UTC()

	ret, err := expression.EvaluateString(ev.Expression)
	if err == nil {
		ev.State = "SUCCEEDED"
		ev.Result = &ret
	} else {
		ev.State = "FAILED"
		var exception types.Exception
		if errors.As(err, &exception) {
			ev.Error = exception.Exception()
		} else {
			ev.Error = err.Error()
		}
	}

	h.evaluations.Store(id, ev)
	resJSON(w, http.StatusOK, ev)
}

func (h *httpHandler) listEvaluations(w http.ResponseWriter, r *http.Request) {
	results := []*evaluation{}
	h.evaluations.Range(func(key, value any) bool {
		results = append(results, value.(*evaluation))
		return true
	})
	sort.Slice(results, func(i, j int) bool {
		if results[i].CreateTime.Equal(results[j].CreateTime) {
			return results[i].Name < results[j].Name
		}
		return results[i].CreateTime.Before(results[j].CreateTime)
	})

	resJSON(w, http.StatusOK, map[string][]*evaluation{"evaluations": results})
}

func (h *httpHandler) getEvaluation(w http.ResponseWriter, r *http.Request, id string) {
	ret, ok := h.evaluations.Load(id)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	resJSON(w, http.StatusOK, ret.(*evaluation))
}

func resJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)+1))
	w.WriteHeader(status)

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
