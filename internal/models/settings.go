package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SettingsSchemaVersion is the schema MigrateSettings produces.
const SettingsSchemaVersion = 2

// Sync providers.
const (
	ProviderWebDAV = "webdav"
	ProviderS3     = "s3"
)

// LegacyTemplateID is the id given to a pre-list custom prompt.
const LegacyTemplateID = "legacy_custom"

// PromptTemplate is a named instruction handed to the analyzer.
type PromptTemplate struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// WebDAVSettings are the credentials of a WebDAV remote.
type WebDAVSettings struct {
	URL      string `json:"webdav_url,omitempty"`
	User     string `json:"webdav_user,omitempty"`
	Password string `json:"webdav_password,omitempty"`
}

// S3Settings describe an S3-compatible bucket remote.
type S3Settings struct {
	Endpoint  string `json:"s3_endpoint,omitempty"`
	Region    string `json:"s3_region,omitempty"`
	Bucket    string `json:"s3_bucket,omitempty"`
	AccessKey string `json:"s3_access_key,omitempty"`
	SecretKey string `json:"s3_secret_key,omitempty"`
}

// AISettings configure the external analyzer.
type AISettings struct {
	APIKey  string `json:"openai_api_key,omitempty"`
	BaseURL string `json:"openai_base_url,omitempty"`
	Model   string `json:"openai_model,omitempty"`
}

// Settings are the application settings carried inside every snapshot.
// Sub-structs are embedded so the serialized form stays flat.
type Settings struct {
	SchemaVersion int    `json:"schema_version"`
	SyncProvider  string `json:"sync_provider,omitempty"`

	WebDAVSettings
	S3Settings
	AISettings

	PromptTemplates []PromptTemplate `json:"prompt_templates"`
}

// DefaultTemplates are installed on first run and whenever a stored settings
// blob carries no template list.
func DefaultTemplates() []PromptTemplate {
	return []PromptTemplate{
		{
			ID:      "default_standard",
			Name:    "Standard (Concise)",
			Content: "You are a knowledge assistant. Process the following raw text and user notes. Extract a concise Title, a Summary (max 3 sentences), and up to 5 Tags.",
		},
		{
			ID:      "default_eli5",
			Name:    "Explain Like I'm 5",
			Content: "Explain the content simply as if you are talking to a 5 year old. Use simple language. Extract a fun Title, a very simple Summary, and Tags.",
		},
		{
			ID:      "default_detailed",
			Name:    "Detailed Analysis",
			Content: "Provide a comprehensive summary that captures all key points, arguments, and details. The title should be descriptive. Extract up to 5 specific tags.",
		},
	}
}

// DefaultSettings returns the first-run settings.
func DefaultSettings() Settings {
	return Settings{
		SchemaVersion:   SettingsSchemaVersion,
		PromptTemplates: DefaultTemplates(),
	}
}

// Provider returns the configured sync provider, defaulting to WebDAV.
func (s Settings) Provider() string {
	if s.SyncProvider == "" {
		return ProviderWebDAV
	}
	return s.SyncProvider
}

// Template returns the template with the given id.
func (s Settings) Template(id string) (PromptTemplate, bool) {
	for _, t := range s.PromptTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return PromptTemplate{}, false
}

// Validate checks the invariants SaveSettings relies on.
func (s Settings) Validate() error {
	switch s.SyncProvider {
	case "", ProviderWebDAV, ProviderS3:
	default:
		return fmt.Errorf("unknown sync provider %q", s.SyncProvider)
	}
	seen := make(map[string]struct{}, len(s.PromptTemplates))
	for _, t := range s.PromptTemplates {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("prompt template %q has no id", t.Name)
		}
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("duplicate prompt template id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// legacySettings is every shape a stored settings blob has ever had.
type legacySettings struct {
	Settings
	RawTemplates json.RawMessage `json:"prompt_templates"`
	AIPrompt     any             `json:"ai_prompt_template"`
}

// MigrateSettings decodes a stored settings blob of any schema version into
// the current one. An empty blob yields DefaultSettings. It has no side
// effects; the caller decides whether to persist the result.
func MigrateSettings(raw []byte) (Settings, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return DefaultSettings(), nil
	}

	var ls legacySettings
	if err := json.Unmarshal(raw, &ls); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	s := ls.Settings

	var templates []PromptTemplate
	if len(ls.RawTemplates) == 0 || json.Unmarshal(ls.RawTemplates, &templates) != nil || templates == nil {
		templates = DefaultTemplates()
		if legacy, ok := ls.AIPrompt.(string); ok && strings.TrimSpace(legacy) != "" {
			templates = append(templates, PromptTemplate{
				ID:      LegacyTemplateID,
				Name:    "My Custom Prompt",
				Content: legacy,
			})
		}
	}
	s.PromptTemplates = dedupeTemplates(templates)

	if s.SyncProvider == "" && s.WebDAVSettings.URL != "" {
		s.SyncProvider = ProviderWebDAV
	}
	s.SchemaVersion = SettingsSchemaVersion

	return s, nil
}

func dedupeTemplates(in []PromptTemplate) []PromptTemplate {
	out := make([]PromptTemplate, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		if t.ID == "" {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
