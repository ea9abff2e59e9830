package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
}

func TestValidatePublisherConfigRejectsMissingHTTP(t *testing.T) {
	err := validatePublisherConfig(PublisherConfig{
		ID:   "h1",
		Type: TypeHTTP,
	})
	if err == nil {
		t.Fatalf("expected validation error for missing http block")
	}
}

func TestLoadRegistryJSONWithQueues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.json")
	raw := `{"publishers":[
  {"id":" topic ","type":"SNS","sns":{"topic_arn":"arn:aws:sns:us-east-1:1:meals","region":"us-east-1"}},
  {"id":"ps","type":"pubsub","pubsub":{"project_id":"p","topic":"meals","emulator_host":"localhost:8085"}}
]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg, ok := reg.ByID("topic")
	if !ok || cfg.Type != TypeSNS {
		t.Fatalf("expected sanitized sns entry, got %#v", cfg)
	}
	if ps, ok := reg.ByID("ps"); !ok || ps.PubSub.EmulatorHost != "localhost:8085" {
		t.Fatalf("pubsub entry = %#v", ps)
	}
}

func TestLoadRegistryRejectsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := `
publishers:
  - id: dup
    type: http
    http: {url: https://example.com}
  - id: dup
    type: http
    http: {url: https://example.com/2}
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidatePublisherConfigQueues(t *testing.T) {
	cases := []struct {
		name string
		cfg  PublisherConfig
		ok   bool
	}{
		{"sqs missing region", PublisherConfig{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "u"}}, false},
		{"sqs half credentials", PublisherConfig{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{
			QueueURL: "u", Region: "r", Credentials: AWSCredentials{AccessKeyID: "AK"},
		}}, false},
		{"sqs static credentials", PublisherConfig{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{
			QueueURL: "u", Region: "r", Credentials: AWSCredentials{AccessKeyID: "AK", SecretAccessKey: "SK"},
		}}, true},
		{"sns missing topic", PublisherConfig{ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "r"}}, false},
		{"pubsub missing block", PublisherConfig{ID: "p", Type: TypePubSub}, false},
		{"pubsub ok", PublisherConfig{ID: "p", Type: TypePubSub, PubSub: &GCPQueueConfig{ProjectID: "p", Topic: "t"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePublisherConfig(sanitizePublisherConfig(tc.cfg))
			if (err == nil) != tc.ok {
				t.Fatalf("validate = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}
