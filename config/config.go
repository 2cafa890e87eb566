/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config loads the server's ServerConfig from defaults, a file and
// environment variables, each layer overriding the one before, the way the rest of
// this stack always has: viper for the layered lookup, go-homedir to expand
// a leading "~" in any path-shaped value, mapstructure to decode into the
// typed struct and validator to enforce its constraints before anything
// else touches it.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// ServerConfig is the full set of knobs the connection engine, router and
// static file server read at startup. Every field binds to a config file
// key, and every field except Name also to an upper-cased SERVER_-prefixed
// env var.
type ServerConfig struct {
	Name              string        `mapstructure:"name" validate:"required"`
	Host              string        `mapstructure:"host" validate:"required"`
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxConnections    int           `mapstructure:"max_connections" validate:"omitempty,min=1"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
	ReadBufferSize    int           `mapstructure:"read_buffer_size" validate:"omitempty,min=512"`
	WriteBufferSize   int           `mapstructure:"write_buffer_size" validate:"omitempty,min=512"`
	MaxBodySize       int64         `mapstructure:"max_body_size" validate:"omitempty,min=1"`
	MaxHeaderSize     int           `mapstructure:"max_header_size" validate:"omitempty,min=1"`
	StaticRoot        string        `mapstructure:"static_root"`
	StaticPrefix      string        `mapstructure:"static_prefix"`
	EnableLogging     bool          `mapstructure:"enable_logging"`
	LogLevel          string        `mapstructure:"log_level"`
	ShutdownGrace     time.Duration `mapstructure:"shutdown_grace"`

	RateLimitMaxRequests     int           `mapstructure:"rate_limit_max_requests" validate:"omitempty,min=1"`
	RateLimitWindow          time.Duration `mapstructure:"rate_limit_window"`
	RateLimitCleanupInterval time.Duration `mapstructure:"rate_limit_cleanup_interval"`

	SessionCookieName      string        `mapstructure:"session_cookie_name"`
	SessionMaxAge          time.Duration `mapstructure:"session_max_age"`
	SessionSecure          bool          `mapstructure:"session_secure"`
	SessionHTTPOnly        bool          `mapstructure:"session_http_only"`
	SessionDir             string        `mapstructure:"session_dir"`
	SessionCleanupInterval time.Duration `mapstructure:"session_cleanup_interval"`

	PoolMaxConnections     int           `mapstructure:"pool_max_connections" validate:"omitempty,min=1"`
	PoolMaxIdleConnections int           `mapstructure:"pool_max_idle_connections" validate:"omitempty,min=1"`
	PoolIdleTimeout        time.Duration `mapstructure:"pool_idle_timeout"`
	PoolMaxLifetime        time.Duration `mapstructure:"pool_max_lifetime"`
	PoolCleanupInterval    time.Duration `mapstructure:"pool_cleanup_interval"`
	PoolConnectTimeout     time.Duration `mapstructure:"pool_connect_timeout"`

	WSMaxPayload int64  `mapstructure:"ws_max_payload"`
	ServerBanner string `mapstructure:"server_banner"`
}

func defaults() ServerConfig {
	return ServerConfig{
		Name:              "webcore",
		Host:              "0.0.0.0",
		Port:              8080,
		MaxConnections:    1024,
		RequestTimeout:    30 * time.Second,
		ConnectionTimeout: 5 * time.Second,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		MaxBodySize:       10 << 20,
		MaxHeaderSize:     1 << 20,
		StaticPrefix:      "/static/",
		EnableLogging:     true,
		LogLevel:          "info",
		ShutdownGrace:     5 * time.Second,

		RateLimitMaxRequests:     100,
		RateLimitWindow:          time.Minute,
		RateLimitCleanupInterval: time.Minute,

		SessionCookieName:      "webcore_sid",
		SessionMaxAge:          30 * time.Minute,
		SessionHTTPOnly:        true,
		SessionCleanupInterval: time.Minute,

		PoolMaxConnections:     100,
		PoolMaxIdleConnections: 16,
		PoolIdleTimeout:        90 * time.Second,
		PoolMaxLifetime:        30 * time.Minute,
		PoolCleanupInterval:    30 * time.Second,
		PoolConnectTimeout:     5 * time.Second,

		WSMaxPayload: 1 << 20,
		ServerBanner: "webcore",
	}
}

// Load reads path (if non-empty) through viper, overlays SERVER_* environment
// variables, decodes the result into a ServerConfig seeded with sane
// defaults, expands a leading "~" in StaticRoot and SessionDir, and validates
// the outcome.
func Load(path string) (*ServerConfig, error) {
	v := viper.New()
	d := defaults()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SERVER")
	v.AutomaticEnv()

	for _, key := range []string{
		"host", "port", "max_connections", "request_timeout", "connection_timeout",
		"read_buffer_size", "write_buffer_size", "max_body_size", "max_header_size",
		"static_root", "static_prefix", "enable_logging", "log_level", "shutdown_grace",
		"rate_limit_max_requests", "rate_limit_window", "rate_limit_cleanup_interval",
		"session_cookie_name", "session_max_age", "session_secure", "session_http_only",
		"session_dir", "session_cleanup_interval",
		"pool_max_connections", "pool_max_idle_connections", "pool_idle_timeout",
		"pool_max_lifetime", "pool_cleanup_interval", "pool_connect_timeout",
		"ws_max_payload", "server_banner",
	} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := d
	decHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	)

	if err := v.Unmarshal(&cfg, viper.DecodeHook(decHook)); err != nil {
		return nil, err
	}

	if cfg.StaticRoot != "" {
		expanded, err := homedir.Expand(cfg.StaticRoot)
		if err != nil {
			return nil, err
		}
		cfg.StaticRoot = expanded
	}

	if cfg.SessionDir != "" {
		expanded, err := homedir.Expand(cfg.SessionDir)
		if err != nil {
			return nil, err
		}
		cfg.SessionDir = expanded
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Clone returns an independent copy of c, so callers can hand out a snapshot
// without letting a later reload mutate configuration already in use.
func (c *ServerConfig) Clone() *ServerConfig {
	n := *c
	return &n
}
