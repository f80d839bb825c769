package config

import (
	"errors"
	"fmt"
	"strings"
)

var supportedContainers = map[string]struct{}{
	"webm": {},
	"mp4":  {},
	"mkv":  {},
}

// Validate ensures the configuration is usable.
//
// Credentials are not required here: commands that only read or edit captions
// must work without them. Collaborator adapters check their own keys.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return ensurePositiveMap(map[string]int{
		"translation.timeout_seconds": c.Translation.TimeoutSeconds,
		"huggingface.timeout_seconds": c.HuggingFace.TimeoutSeconds,
	})
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Backend {
	case BackendHuggingFace, BackendWhisperX:
	default:
		return fmt.Errorf("transcription.backend must be %q or %q, got %q", BackendHuggingFace, BackendWhisperX, c.Transcription.Backend)
	}
	switch c.Transcription.WhisperXVADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.whisperx_vad_method must be silero or pyannote, got %q", c.Transcription.WhisperXVADMethod)
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	if c.Synthesis.PCMSampleRate <= 0 {
		return errors.New("synthesis.pcm_sample_rate must be positive")
	}
	if c.Synthesis.PCMChannels <= 0 || c.Synthesis.PCMChannels > 2 {
		return errors.New("synthesis.pcm_channels must be 1 or 2")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.FPS <= 0 || c.Render.FPS > 120 {
		return errors.New("render.fps must be between 1 and 120")
	}
	if c.Render.DefaultWidth <= 0 || c.Render.DefaultHeight <= 0 {
		return errors.New("render.default_width and render.default_height must be positive")
	}
	if _, ok := supportedContainers[c.Render.Container]; !ok {
		return fmt.Errorf("render.container %q is not supported (webm, mp4, mkv)", c.Render.Container)
	}
	if strings.ContainsAny(c.Render.ExportPrefix, `/\`) {
		return errors.New("render.export_prefix must not contain path separators")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
