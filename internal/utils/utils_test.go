package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Run("sets content-type and status", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, map[string]float64{"max_n1": 98.2})

		if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q; want application/json; charset=utf-8", got)
		}
		if w.Code != http.StatusOK {
			t.Errorf("Code = %d; want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("encodes body as JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusCreated, map[string]string{"derate": "TO-1"})

		var got map[string]string
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("body is not valid JSON: %v", err)
		}
		if got["derate"] != "TO-1" {
			t.Errorf("body[derate] = %q; want TO-1", got["derate"])
		}
	})
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusBadGateway, "performance service unavailable")

	if w.Code != http.StatusBadGateway {
		t.Errorf("Code = %d; want %d", w.Code, http.StatusBadGateway)
	}
	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if got["error"] != http.StatusText(http.StatusBadGateway) {
		t.Errorf("error = %q; want %q", got["error"], http.StatusText(http.StatusBadGateway))
	}
	if got["message"] != "performance service unavailable" {
		t.Errorf("message = %q; want performance service unavailable", got["message"])
	}
}

func TestWriteHTML(t *testing.T) {
	t.Run("writes rendered body", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := WriteHTML(w, http.StatusOK, func(out io.Writer) error {
			_, err := io.WriteString(out, "<p>N1: 95.1%</p>")
			return err
		})
		if err != nil {
			t.Fatalf("WriteHTML() = %v; want nil", err)
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("Content-Type = %q", ct)
		}
		if w.Body.String() != "<p>N1: 95.1%</p>" {
			t.Errorf("body = %q", w.Body.String())
		}
	})

	t.Run("render error leaves response untouched", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := WriteHTML(w, http.StatusOK, func(out io.Writer) error {
			_, _ = io.WriteString(out, "<p>partial")
			return errors.New("boom")
		})
		if err == nil {
			t.Fatal("WriteHTML() = nil; want error")
		}
		if w.Body.Len() != 0 {
			t.Errorf("body = %q; want empty", w.Body.String())
		}
		if w.Header().Get("Content-Type") != "" {
			t.Errorf("Content-Type set on failed render")
		}
	})
}
