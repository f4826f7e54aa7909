// Package config loads configuration structs from environment variables.
//
// It wraps github.com/caarlos0/env for tag-based parsing and loads a .env
// file via godotenv once per process, which keeps local development and
// production wiring identical. Transport packages (email, push) define their
// own Config structs with env tags and feed them through Load.
package config
