package config

const (
	defaultConfigPath        = "~/.config/dubstudio/config.toml"
	projectConfigName        = "dubstudio.toml"
	defaultDataDir           = "~/.local/share/dubstudio"
	defaultOutputDir         = "~/Videos/dubstudio"
	defaultLogDir            = "~/.local/share/dubstudio/logs"
	defaultTranscription     = BackendHuggingFace
	defaultWhisperXModel     = "large-v3"
	defaultWhisperXVADMethod = "silero"
	defaultTranscribeModel   = "openai/whisper-large-v3"
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMTitle          = "dubstudio"
	defaultLLMTimeoutSeconds = 120
	defaultTargetLanguage    = "ur-PK"
	defaultSpeechModel       = "facebook/mms-tts-eng"
	defaultPCMSampleRate     = 24000
	defaultPCMChannels       = 1
	defaultHFBaseURL         = "https://api-inference.huggingface.co/models"
	defaultHFTimeoutSeconds  = 300
	defaultRenderFPS         = 30
	defaultRenderWidth       = 1280
	defaultRenderHeight      = 720
	defaultContainer         = "webm"
	defaultExportPrefix      = "dubstudio_export"
	defaultNtfyTimeout       = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Transcription backends.
const (
	BackendHuggingFace = "huggingface"
	BackendWhisperX    = "whisperx"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Transcription: Transcription{
			Backend:           defaultTranscription,
			WhisperXModel:     defaultWhisperXModel,
			WhisperXVADMethod: defaultWhisperXVADMethod,
			HFModel:           defaultTranscribeModel,
		},
		Translation: Translation{
			BaseURL:         defaultLLMBaseURL,
			Model:           defaultLLMModel,
			Title:           defaultLLMTitle,
			TimeoutSeconds:  defaultLLMTimeoutSeconds,
			DefaultLanguage: defaultTargetLanguage,
		},
		Synthesis: Synthesis{
			HFModel:       defaultSpeechModel,
			PCMSampleRate: defaultPCMSampleRate,
			PCMChannels:   defaultPCMChannels,
		},
		HuggingFace: HuggingFace{
			BaseURL:        defaultHFBaseURL,
			TimeoutSeconds: defaultHFTimeoutSeconds,
		},
		Render: Render{
			FPS:           defaultRenderFPS,
			DefaultWidth:  defaultRenderWidth,
			DefaultHeight: defaultRenderHeight,
			Container:     defaultContainer,
			Realtime:      true,
			ExportPrefix:  defaultExportPrefix,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			Renders:        true,
			Steps:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
