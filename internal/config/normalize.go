package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeTranslation()
	c.normalizeSynthesis()
	c.normalizeHuggingFace()
	c.normalizeRender()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Backend = strings.ToLower(strings.TrimSpace(c.Transcription.Backend))
	if c.Transcription.Backend == "" {
		c.Transcription.Backend = defaultTranscription
	}
	c.Transcription.WhisperXModel = strings.TrimSpace(c.Transcription.WhisperXModel)
	if c.Transcription.WhisperXModel == "" {
		c.Transcription.WhisperXModel = defaultWhisperXModel
	}
	c.Transcription.WhisperXVADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.WhisperXVADMethod))
	if c.Transcription.WhisperXVADMethod == "" {
		c.Transcription.WhisperXVADMethod = defaultWhisperXVADMethod
	}
	c.Transcription.HFModel = strings.TrimSpace(c.Transcription.HFModel)
	if c.Transcription.HFModel == "" {
		c.Transcription.HFModel = defaultTranscribeModel
	}
}

func (c *Config) normalizeTranslation() {
	c.Translation.BaseURL = strings.TrimSpace(c.Translation.BaseURL)
	if c.Translation.BaseURL == "" {
		c.Translation.BaseURL = defaultLLMBaseURL
	}
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	if c.Translation.Model == "" {
		c.Translation.Model = defaultLLMModel
	}
	c.Translation.Referer = strings.TrimSpace(c.Translation.Referer)
	c.Translation.Title = strings.TrimSpace(c.Translation.Title)
	if c.Translation.Title == "" {
		c.Translation.Title = defaultLLMTitle
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.Translation.DefaultLanguage = strings.TrimSpace(c.Translation.DefaultLanguage)
	if c.Translation.DefaultLanguage == "" {
		c.Translation.DefaultLanguage = defaultTargetLanguage
	}
	c.Translation.APIKey = strings.TrimSpace(c.Translation.APIKey)
	if c.Translation.APIKey == "" {
		c.Translation.APIKey = firstEnv("DUBSTUDIO_LLM_API_KEY", "OPENROUTER_API_KEY")
	}
}

func (c *Config) normalizeSynthesis() {
	c.Synthesis.HFModel = strings.TrimSpace(c.Synthesis.HFModel)
	if c.Synthesis.HFModel == "" {
		c.Synthesis.HFModel = defaultSpeechModel
	}
	if c.Synthesis.PCMSampleRate == 0 {
		c.Synthesis.PCMSampleRate = defaultPCMSampleRate
	}
	if c.Synthesis.PCMChannels == 0 {
		c.Synthesis.PCMChannels = defaultPCMChannels
	}
}

func (c *Config) normalizeHuggingFace() {
	c.HuggingFace.BaseURL = strings.TrimRight(strings.TrimSpace(c.HuggingFace.BaseURL), "/")
	if c.HuggingFace.BaseURL == "" {
		c.HuggingFace.BaseURL = defaultHFBaseURL
	}
	if c.HuggingFace.TimeoutSeconds <= 0 {
		c.HuggingFace.TimeoutSeconds = defaultHFTimeoutSeconds
	}
	c.HuggingFace.APIKey = strings.TrimSpace(c.HuggingFace.APIKey)
	if c.HuggingFace.APIKey == "" {
		c.HuggingFace.APIKey = firstEnv("HF_TOKEN", "HUGGING_FACE_HUB_TOKEN")
	}
}

func (c *Config) normalizeRender() {
	c.Render.Container = strings.ToLower(strings.TrimSpace(c.Render.Container))
	if c.Render.Container == "" {
		c.Render.Container = defaultContainer
	}
	c.Render.VideoCodec = strings.TrimSpace(c.Render.VideoCodec)
	c.Render.AudioCodec = strings.TrimSpace(c.Render.AudioCodec)
	c.Render.ExportPrefix = strings.TrimSpace(c.Render.ExportPrefix)
	if c.Render.ExportPrefix == "" {
		c.Render.ExportPrefix = defaultExportPrefix
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
