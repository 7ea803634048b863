//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8000")

type product struct {
	ID          int64   `json:"id"`
	Nombre      string  `json:"nombre"`
	Precio      float64 `json:"precio"`
	CategoriaID any     `json:"categoriaID"`
	Descripcion string  `json:"descripcion"`
}

type envelope[T any] struct {
	Datos T      `json:"datos"`
	Error string `json:"error"`
}

func TestSystem_E2E_CRUD(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var list envelope[[]product]
	doJSON(t, http.MethodGet, baseURL+"/product", nil, &list, http.StatusOK)
	if len(list.Datos) == 0 {
		t.Fatalf("expected seeded products")
	}

	var created envelope[product]
	doJSON(t, http.MethodPost, baseURL+"/product", map[string]any{
		"nombre":      fmt.Sprintf("Teclado %d", time.Now().UnixNano()),
		"precio":      45,
		"categoriaID": 20,
		"descripcion": "Teclado mecánico",
	}, &created, http.StatusCreated)
	if created.Datos.ID == 0 {
		t.Fatalf("product id missing: %#v", created)
	}

	url := fmt.Sprintf("%s/product/%d", baseURL, created.Datos.ID)

	var replaced envelope[product]
	doJSON(t, http.MethodPut, url, map[string]any{
		"nombre":      "Teclado Pro",
		"precio":      0,
		"categoriaID": 20,
		"descripcion": "Teclado mecánico pro",
	}, &replaced, http.StatusOK)
	if replaced.Datos.ID != created.Datos.ID || replaced.Datos.Nombre != "Teclado Pro" {
		t.Fatalf("unexpected replace result: %#v", replaced)
	}

	doJSON(t, http.MethodDelete, url, nil, nil, http.StatusOK)
	doJSON(t, http.MethodGet, url, nil, nil, http.StatusNotFound)
	doJSON(t, http.MethodGet, baseURL+"/product?fail=true", nil, nil, http.StatusInternalServerError)

	if os.Getenv("E2E_RESTART_PRODUCT") == "1" {
		out, err := exec.CommandContext(ctx, "docker", "compose", "restart", "product").CombinedOutput()
		if err != nil {
			t.Fatalf("restart product container: %v\n%s", err, out)
		}
		waitReady(t, ctx, baseURL+"/readyz")

		var after envelope[[]product]
		doJSON(t, http.MethodGet, baseURL+"/product", nil, &after, http.StatusOK)
		if len(after.Datos) != 2 {
			t.Fatalf("expected the store to be back to its 2 seed products, got %d", len(after.Datos))
		}
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == http.StatusOK {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
