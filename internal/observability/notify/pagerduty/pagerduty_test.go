package pagerduty

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/target/matrix-leader/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when routing key missing")
	}
}

func TestBuildEventDefaults(t *testing.T) {
	client, err := NewClient(Config{
		RoutingKey: "key",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	event := client.buildEvent(notify.OutcomePayload{
		BuildID:  "555",
		Status:   "unknown",
		Failed:   []string{"555.3"},
		Metadata: map[string]string{"status": "ignored", "polls": "3"},
	})

	payloadSection, ok := event["payload"].(map[string]any)
	if !ok {
		t.Fatalf("expected payload section")
	}
	if payloadSection["severity"] != notify.SeverityCritical {
		t.Fatalf("expected default severity, got %v", payloadSection["severity"])
	}
	if payloadSection["source"] != "matrix-leader" {
		t.Fatalf("expected default source, got %v", payloadSection["source"])
	}
	if !strings.Contains(payloadSection["summary"].(string), "555") {
		t.Fatalf("expected summary to reference build, got %v", payloadSection["summary"])
	}

	custom, ok := payloadSection["custom_details"].(map[string]any)
	if !ok {
		t.Fatalf("expected custom details")
	}
	if custom["status"] != "unknown" {
		t.Fatalf("metadata must not override built-in keys, got %v", custom["status"])
	}
	if custom["polls"] != "3" {
		t.Fatalf("expected metadata to be merged, got %v", custom["polls"])
	}

	if event["dedup_key"] != "matrix:555" {
		t.Fatalf("unexpected dedup key %v", event["dedup_key"])
	}
}

func TestSendOutcomeUsesEndpoint(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(Config{RoutingKey: "rk", Endpoint: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.SendOutcome(context.Background(), notify.OutcomePayload{BuildID: "1", Severity: "WARNING"}); err != nil {
		t.Fatalf("SendOutcome: %v", err)
	}
	if got["routing_key"] != "rk" {
		t.Fatalf("unexpected routing key %v", got["routing_key"])
	}
	if section, _ := got["payload"].(map[string]any); section["severity"] != "warning" {
		t.Fatalf("expected lower-cased severity, got %v", section["severity"])
	}
}
