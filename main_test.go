package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSplitList(t *testing.T) {
	got := splitList(" http://a.test, ,http://b.test ")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected list %v", got)
	}
	if splitList("") != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestStatusWriterFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	var w http.ResponseWriter = &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	flusher, ok := w.(http.Flusher)
	if !ok {
		t.Fatal("statusWriter must implement http.Flusher")
	}
	w.WriteHeader(http.StatusAccepted)
	flusher.Flush()
	if !rec.Flushed || rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected recorder state: flushed=%v code=%d", rec.Flushed, rec.Code)
	}
}
