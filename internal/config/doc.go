// Package config reads dubstudio.toml.
//
// Load reads an explicit path, or else ~/.config/dubstudio/config.toml with
// ./dubstudio.toml as the fallback. Missing credentials fall back to HF_TOKEN,
// HUGGING_FACE_HUB_TOKEN, DUBSTUDIO_LLM_API_KEY and OPENROUTER_API_KEY (the
// CLI loads ./.env into the environment beforehand). Paths are expanded,
// enums lowercased, and Validate rejects values the render or synthesis
// stages cannot use.
package config
