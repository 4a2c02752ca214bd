package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/karupanerura/exprcalc/internal/server"
)

type evaluationRes struct {
	Name       string         `json:"name"`
	State      string         `json:"state"`
	Expression string         `json:"expression"`
	Result     *float64       `json:"result"`
	Error      map[string]any `json:"error"`
}

func postEvaluation(t *testing.T, h http.Handler, body string) (int, *evaluationRes) {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/v1/evaluations", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		return w.Code, nil
	}

	var res evaluationRes
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	return w.Code, &res
}

func TestCreateEvaluation(t *testing.T) {
	t.Parallel()

	h := server.NewHTTPHandler()

	code, res := postEvaluation(t, h, `{"expression": "2 + 3 * 4"}`)
	if code != http.StatusOK {
		t.Fatalf("expect to 200 but got %d", code)
	}
	if res.State != "SUCCEEDED" {
		t.Errorf("expect to SUCCEEDED but got %s", res.State)
	}
	if res.Result == nil || *res.Result != 14.0 {
		t.Errorf("expect to 14 but got %v", res.Result)
	}
	if !strings.HasPrefix(res.Name, "/v1/evaluations/") {
		t.Errorf("unexpected name: %s", res.Name)
	}
}

func TestCreateEvaluationFailure(t *testing.T) {
	t.Parallel()

	h := server.NewHTTPHandler()

	code, res := postEvaluation(t, h, `{"expression": "10 / 0"}`)
	if code != http.StatusOK {
		t.Fatalf("expect to 200 but got %d", code)
	}
	if res.State != "FAILED" {
		t.Errorf("expect to FAILED but got %s", res.State)
	}
	if res.Result != nil {
		t.Errorf("expect to nil but got %v", *res.Result)
	}
	tags, ok := res.Error["tags"].([]any)
	if !ok || len(tags) == 0 || tags[0] != "ZeroDivisionError" {
		t.Errorf("unexpected error payload: %+v", res.Error)
	}
}

func TestCreateEvaluationBadRequest(t *testing.T) {
	t.Parallel()

	h := server.NewHTTPHandler()

	for name, body := range map[string]string{
		"broken JSON":      `{`,
		"empty expression": `{"expression": ""}`,
	} {
		body := body
		t.Run(name, func(t *testing.T) {
			if code, _ := postEvaluation(t, h, body); code != http.StatusBadRequest {
				t.Errorf("expect to 400 but got %d", code)
			}
		})
	}
}

func TestListAndGetEvaluations(t *testing.T) {
	t.Parallel()

	h := server.NewHTTPHandler()
	_, first := postEvaluation(t, h, `{"expression": "1 + 1"}`)
	_, second := postEvaluation(t, h, `{"expression": "2 * 3"}`)

	r := httptest.NewRequest(http.MethodGet, "/v1/evaluations", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expect to 200 but got %d", w.Code)
	}

	var listRes struct {
		Evaluations []evaluationRes `json:"evaluations"`
	}
	if err := json.NewDecoder(w.Body).Decode(&listRes); err != nil {
		t.Fatal(err)
	}
	if len(listRes.Evaluations) != 2 {
		t.Fatalf("expect to 2 evaluations but got %d", len(listRes.Evaluations))
	}
	if listRes.Evaluations[0].Name != first.Name || listRes.Evaluations[1].Name != second.Name {
		t.Errorf("unexpected order: %+v", listRes.Evaluations)
	}

	r = httptest.NewRequest(http.MethodGet, second.Name, nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expect to 200 but got %d", w.Code)
	}
	var got evaluationRes
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Expression != "2 * 3" || got.Result == nil || *got.Result != 6.0 {
		t.Errorf("unexpected evaluation: %+v", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/v1/evaluations/unknown", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("expect to 404 but got %d", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	h := server.NewHTTPHandler()

	r := httptest.NewRequest(http.MethodDelete, "/v1/evaluations", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expect to 405 but got %d", w.Code)
	}
}
