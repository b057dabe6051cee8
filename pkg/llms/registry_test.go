package llms

import (
	"context"
	"testing"

	"github.com/kadirpekel/sitesmith/pkg/config"
)

type mockProvider struct {
	model  string
	closed bool
}

func (m *mockProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	return "ok", nil
}

func (m *mockProvider) ModelName() string { return m.model }

func (m *mockProvider) Close() error {
	m.closed = true
	return nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	provider := &mockProvider{model: "test-model"}

	if err := registry.Register("test", provider); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := registry.Get("test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != provider {
		t.Error("Get() returned a different provider")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	provider := &mockProvider{model: "test-model"}

	if err := registry.Register("test", provider); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register("test", provider); err == nil {
		t.Error("expected error registering duplicate name")
	}
}

func TestRegistryRejectsEmptyNameAndNil(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register("", &mockProvider{}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := registry.Register("x", nil); err == nil {
		t.Error("expected error for nil provider")
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Get("nope"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestRegistryList(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register("b", &mockProvider{})
	_ = registry.Register("a", &mockProvider{})

	names := registry.List()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("List() = %v, want sorted [a b]", names)
	}
}

func TestRegistryCloseClosesAll(t *testing.T) {
	registry := NewRegistry()
	first := &mockProvider{}
	second := &mockProvider{}
	_ = registry.Register("first", first)
	_ = registry.Register("second", second)

	if err := registry.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !first.closed || !second.closed {
		t.Error("Close() should close every provider")
	}
	if len(registry.List()) != 0 {
		t.Error("Close() should empty the registry")
	}
}

func TestNewProviderUnsupportedType(t *testing.T) {
	_, err := NewProvider(&config.LLMConfig{Provider: config.LLMProvider("cohere")})
	if err == nil {
		t.Error("expected error for unsupported provider type")
	}
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	_, err := NewProvider(&config.LLMConfig{Provider: config.LLMProviderAnthropic})
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNewProviderOllamaNeedsNoKey(t *testing.T) {
	provider, err := NewProvider(&config.LLMConfig{Provider: config.LLMProviderOllama, Model: "llama3.2"})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if provider.ModelName() != "llama3.2" {
		t.Errorf("ModelName() = %s", provider.ModelName())
	}
}
