// Package config loads application settings from environment variables
// (prefix BIONEXUS_) and an optional YAML file, applies defaults and
// validates the result. Loading fails when required values such as the
// language model API key are absent, so a misconfigured process never starts.
package config
