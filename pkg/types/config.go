package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "genui-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ProducerConfig holds settings for the completion producer stage.
type ProducerConfig struct {
	AIConfig `yaml:",inline"`

	// CompletionsDir is the directory where produced completions are written.
	CompletionsDir string `json:"completions_dir" yaml:"completions_dir"`
}

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	// CompletionsDir is the directory holding completion text files.
	CompletionsDir string `json:"completions_dir" yaml:"completions_dir"`

	// FragmentsDir is the base directory for extraction output (contains
	// extracted/ and index/).
	FragmentsDir string `json:"fragments_dir" yaml:"fragments_dir"`

	// Labels are the delimiter labels to extract, in expected source order
	// (e.g. ["js", "css", "html"]). Empty means single-block extraction.
	Labels []string `json:"labels" yaml:"labels"`

	// Decorators controls whether @need annotations are scanned as well.
	Decorators bool `json:"decorators" yaml:"decorators"`
}

// RewriteConfig holds the token and wrapper conventions for the genUi
// reference rewrite. The zero value is usable: empty fields fall back to
// the generator's fixed conventions via WithDefaults.
type RewriteConfig struct {
	// SectionToken marks a line as a section reference (default "/sections/").
	SectionToken string `json:"section_token" yaml:"section_token"`

	// ViewToken marks a line as a view reference (default "/views/").
	ViewToken string `json:"view_token" yaml:"view_token"`

	// SectionWrapper is the wrapper component name for sections (default "UiSection").
	SectionWrapper string `json:"section_wrapper" yaml:"section_wrapper"`

	// ViewWrapper is the wrapper component name for views (default "UiView").
	ViewWrapper string `json:"view_wrapper" yaml:"view_wrapper"`

	// SectionImport is the import line synthesized when sections are used.
	SectionImport string `json:"section_import" yaml:"section_import"`

	// ViewImport is the import line synthesized when views are used.
	ViewImport string `json:"view_import" yaml:"view_import"`
}

// WithDefaults returns a copy of the config with empty fields replaced by
// the generator's fixed conventions.
func (c RewriteConfig) WithDefaults() RewriteConfig {
	if c.SectionToken == "" {
		c.SectionToken = "/sections/"
	}
	if c.ViewToken == "" {
		c.ViewToken = "/views/"
	}
	if c.SectionWrapper == "" {
		c.SectionWrapper = "UiSection"
	}
	if c.ViewWrapper == "" {
		c.ViewWrapper = "UiView"
	}
	if c.SectionImport == "" {
		c.SectionImport = `import ` + c.SectionWrapper + ` from "./components/` + c.SectionWrapper + `";`
	}
	if c.ViewImport == "" {
		c.ViewImport = `import ` + c.ViewWrapper + ` from "./components/` + c.ViewWrapper + `";`
	}
	return c
}

// FragmentStoreConfig holds settings for the fragment store stage.
type FragmentStoreConfig struct {
	// FragmentsDir is the base directory for fragments (contains extracted/, index/).
	FragmentsDir string `json:"fragments_dir" yaml:"fragments_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Producer      ProducerConfig      `json:"producer" yaml:"producer"`
	Extraction    ExtractionConfig    `json:"extraction" yaml:"extraction"`
	Rewrite       RewriteConfig       `json:"rewrite" yaml:"rewrite"`
	FragmentStore FragmentStoreConfig `json:"fragment_store" yaml:"fragment_store"`
}
