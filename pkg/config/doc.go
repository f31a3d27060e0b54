// Package config loads typed configuration structs from environment
// variables, optionally seeded from dotenv files.
//
// Struct fields are bound with caarlos0/env tags; dotenv files are read
// with joho/godotenv and never override variables that are already set.
package config
