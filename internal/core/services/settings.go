package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyBaseURL           = "backend.base_url"
	keyTimeoutSeconds    = "backend.timeout_seconds"
	keyRequestsPerSecond = "backend.requests_per_second"
	keyApproach          = "chat.approach"
	keyRetrievalMode     = "chat.retrieval_mode"
	keySemanticRanker    = "chat.semantic_ranker"
	keySemanticCaptions  = "chat.semantic_captions"
	keyExcludeCategory   = "chat.exclude_category"
	keyTop               = "chat.top"
	keyTemperature       = "chat.temperature"
	keyPromptTemplate    = "chat.prompt_template"
	keyPromptPrefix      = "chat.prompt_template_prefix"
	keyPromptSuffix      = "chat.prompt_template_suffix"
	keySuggestFollowups  = "chat.suggest_followup_questions"
	keyMaxFileSize       = "upload.max_file_size"
	keyUploadPatterns    = "upload.patterns"
	keyLogFile           = "log.file"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	if s.configStore == nil {
		return nil, fmt.Errorf("config store: %w", domain.ErrNotConfigured)
	}
	defaults := domain.DefaultAppSettings()
	o := defaults.Chat.Overrides

	settings := &domain.AppSettings{
		Backend: domain.BackendSettings{
			BaseURL:           s.getString(keyBaseURL, defaults.Backend.BaseURL),
			TimeoutSeconds:    s.getInt(keyTimeoutSeconds, defaults.Backend.TimeoutSeconds),
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, defaults.Backend.RequestsPerSecond),
		},
		Chat: domain.RequestSettings{
			Approach: s.getApproach(defaults.Chat.Approach),
			Overrides: domain.RequestOverrides{
				RetrievalMode:            s.getRetrievalMode(o.RetrievalMode),
				SemanticRanker:           s.getBool(keySemanticRanker, o.SemanticRanker),
				SemanticCaptions:         s.optionalBool(keySemanticCaptions),
				ExcludeCategory:          s.optionalString(keyExcludeCategory),
				Top:                      s.optionalInt(keyTop, o.Top),
				Temperature:              s.optionalInt(keyTemperature, nil),
				PromptTemplate:           s.optionalString(keyPromptTemplate),
				PromptTemplatePrefix:     s.optionalString(keyPromptPrefix),
				PromptTemplateSuffix:     s.optionalString(keyPromptSuffix),
				SuggestFollowupQuestions: s.getBool(keySuggestFollowups, o.SuggestFollowupQuestions),
			},
		},
		Upload: domain.UploadSettings{
			MaxFileSize: int64(s.getInt(keyMaxFileSize, int(defaults.Upload.MaxFileSize))),
			Patterns:    s.getStringSlice(keyUploadPatterns, defaults.Upload.Patterns),
		},
		LogFile: s.configStore.GetString(keyLogFile),
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return fmt.Errorf("config store: %w", domain.ErrNotConfigured)
	}
	if settings == nil {
		return fmt.Errorf("%w: settings are nil", domain.ErrInvalidInput)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	o := settings.Chat.Overrides
	values := []struct {
		key   string
		value any
	}{
		{keyBaseURL, settings.Backend.BaseURL},
		{keyTimeoutSeconds, settings.Backend.TimeoutSeconds},
		{keyRequestsPerSecond, settings.Backend.RequestsPerSecond},
		{keyApproach, settings.Chat.Approach.String()},
		{keyRetrievalMode, o.RetrievalMode.String()},
		{keySemanticRanker, o.SemanticRanker},
		{keySemanticCaptions, derefOrNil(o.SemanticCaptions)},
		{keyExcludeCategory, derefOrNil(o.ExcludeCategory)},
		{keyTop, derefOrNil(o.Top)},
		{keyTemperature, derefOrNil(o.Temperature)},
		{keyPromptTemplate, derefOrNil(o.PromptTemplate)},
		{keyPromptPrefix, derefOrNil(o.PromptTemplatePrefix)},
		{keyPromptSuffix, derefOrNil(o.PromptTemplateSuffix)},
		{keySuggestFollowups, o.SuggestFollowupQuestions},
		{keyMaxFileSize, settings.Upload.MaxFileSize},
		{keyUploadPatterns, settings.Upload.Patterns},
		{keyLogFile, settings.LogFile},
	}

	for _, v := range values {
		if v.value == nil {
			if err := s.configStore.Delete(v.key); err != nil {
				return fmt.Errorf("clear %s: %w", v.key, err)
			}
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set updates a single setting by its configuration key and persists it.
// An empty value clears optional settings.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	o := &settings.Chat.Overrides

	switch key {
	case keyBaseURL:
		settings.Backend.BaseURL = value
	case keyTimeoutSeconds:
		settings.Backend.TimeoutSeconds, err = parseInt(key, value)
	case keyRequestsPerSecond:
		settings.Backend.RequestsPerSecond, err = parseFloat(key, value)
	case keyApproach:
		settings.Chat.Approach = domain.Approach(value)
	case keyRetrievalMode:
		o.RetrievalMode = domain.RetrievalMode(value)
	case keySemanticRanker:
		o.SemanticRanker, err = parseBool(key, value)
	case keySemanticCaptions:
		o.SemanticCaptions, err = parseOptional(key, value, parseBool)
	case keyExcludeCategory:
		o.ExcludeCategory = optionalText(value)
	case keyTop:
		o.Top, err = parseOptional(key, value, parseInt)
	case keyTemperature:
		o.Temperature, err = parseOptional(key, value, parseInt)
	case keyPromptTemplate:
		o.PromptTemplate = optionalText(value)
	case keyPromptPrefix:
		o.PromptTemplatePrefix = optionalText(value)
	case keyPromptSuffix:
		o.PromptTemplateSuffix = optionalText(value)
	case keySuggestFollowups:
		o.SuggestFollowupQuestions, err = parseBool(key, value)
	case keyMaxFileSize:
		var n int
		n, err = parseInt(key, value)
		settings.Upload.MaxFileSize = int64(n)
	case keyUploadPatterns:
		settings.Upload.Patterns = splitList(value)
	case keyLogFile:
		settings.LogFile = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return err
	}

	return s.Save(settings)
}

// Keys lists the configuration keys Set accepts.
func (s *SettingsService) Keys() []string {
	keys := []string{
		keyBaseURL, keyTimeoutSeconds, keyRequestsPerSecond,
		keyApproach, keyRetrievalMode, keySemanticRanker, keySemanticCaptions,
		keyExcludeCategory, keyTop, keyTemperature,
		keyPromptTemplate, keyPromptPrefix, keyPromptSuffix, keySuggestFollowups,
		keyMaxFileSize, keyUploadPatterns, keyLogFile,
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) optionalString(key string) *string {
	val := s.configStore.GetString(key)
	if val == "" {
		return nil
	}
	return &val
}

func (s *SettingsService) optionalBool(key string) *bool {
	if _, exists := s.configStore.Get(key); !exists {
		return nil
	}
	b := s.configStore.GetBool(key)
	return &b
}

func (s *SettingsService) optionalInt(key string, defaultVal *int) *int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	n := s.configStore.GetInt(key)
	return &n
}

func (s *SettingsService) getApproach(defaultVal domain.Approach) domain.Approach {
	approach := domain.Approach(s.configStore.GetString(keyApproach))
	if !approach.IsValid() {
		return defaultVal
	}
	return approach
}

func (s *SettingsService) getRetrievalMode(defaultVal domain.RetrievalMode) domain.RetrievalMode {
	mode := domain.RetrievalMode(s.configStore.GetString(keyRetrievalMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

// Helpers for parsing values given on the command line.

func derefOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, value)
	}
	return n, nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, value)
	}
	return f, nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s expects true or false, got %q", domain.ErrInvalidInput, key, value)
	}
	return b, nil
}

func parseOptional[T any](key, value string, parse func(string, string) (T, error)) (*T, error) {
	if value == "" {
		return nil, nil
	}
	v, err := parse(key, value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
