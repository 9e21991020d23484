package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/fitrate/arena/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			// Clear any existing environment variables
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
				convey.So(cfg.QueueTTLSeconds, convey.ShouldEqual, 90)
				convey.So(cfg.GhostWaitSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.GhostPoolSize, convey.ShouldEqual, 200)
				convey.So(cfg.IngestWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			// Set environment variables
			_ = os.Setenv("FITRATE_ADDR", ":8080")
			_ = os.Setenv("FITRATE_REDIS_ADDR", "redis:6390")
			_ = os.Setenv("FITRATE_QUEUE_TTL_SECONDS", "120")
			_ = os.Setenv("FITRATE_GHOST_POOL_SIZE", "50")
			_ = os.Setenv("FITRATE_INGEST_WORKERS", "8")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "redis:6390")
				convey.So(cfg.QueueTTLSeconds, convey.ShouldEqual, 120)
				convey.So(cfg.GhostPoolSize, convey.ShouldEqual, 50)
				convey.So(cfg.IngestWorkers, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			// Create a temporary YAML config file
			yamlContent := `
addr: ":9090"
redis_addr: "redis.internal:6379"
queue_ttl_seconds: 60
ghost_wait_seconds: 45
ghost_pool_size: 100
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			// Set the config file path
			_ = os.Setenv("FITRATE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "redis.internal:6379")
				convey.So(cfg.QueueTTLSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.GhostWaitSeconds, convey.ShouldEqual, 45)
				convey.So(cfg.GhostPoolSize, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			// Create a YAML config file
			yamlContent := `
addr: ":9090"
queue_ttl_seconds: 60
ghost_pool_size: 100
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			// Set both file and environment variables
			_ = os.Setenv("FITRATE_CONFIG", tmpFile)
			_ = os.Setenv("FITRATE_ADDR", ":8080")            // This should override the file
			_ = os.Setenv("FITRATE_QUEUE_TTL_SECONDS", "120") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")            // Overridden by env
				convey.So(cfg.QueueTTLSeconds, convey.ShouldEqual, 120)     // Overridden by env
				convey.So(cfg.GhostPoolSize, convey.ShouldEqual, 100)       // From file
				convey.So(cfg.GhostWaitSeconds, convey.ShouldEqual, 60)     // From defaults
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100) // From defaults
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			// Create an invalid YAML file
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FITRATE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("FITRATE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("FITRATE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive queue TTL", func() {
			_ = os.Setenv("FITRATE_QUEUE_TTL_SECONDS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "queue_ttl_seconds must be positive")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			// Create a YAML file with only some fields
			yamlContent := `
addr: ":9090"
ghost_wait_seconds: 30
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FITRATE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")         // From file
				convey.So(cfg.GhostWaitSeconds, convey.ShouldEqual, 30)  // From file
				convey.So(cfg.QueueTTLSeconds, convey.ShouldEqual, 90)   // From defaults
				convey.So(cfg.GhostPoolSize, convey.ShouldEqual, 200)    // From defaults
				convey.So(cfg.IngestQueueSize, convey.ShouldEqual, 1024) // From defaults
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("FITRATE_QUEUE_TTL_SECONDS", "invalid")
			_ = os.Setenv("FITRATE_GHOST_POOL_SIZE", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoaderEdgeCases(t *testing.T) {
	convey.Convey("Given config loader edge cases", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with very large values", func() {
			_ = os.Setenv("FITRATE_GHOST_POOL_SIZE", "1000000")
			_ = os.Setenv("FITRATE_INGEST_QUEUE_SIZE", "2000000")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should handle large values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.GhostPoolSize, convey.ShouldEqual, 1000000)
				convey.So(cfg.IngestQueueSize, convey.ShouldEqual, 2000000)
			})
		})

		convey.Convey("When loading config with special characters in addr", func() {
			_ = os.Setenv("FITRATE_ADDR", "localhost:8080")
			_ = os.Setenv("FITRATE_ADDR", "0.0.0.0:9090")
			_ = os.Setenv("FITRATE_ADDR", "[::1]:8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should handle various addr formats", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, "[::1]:8080") // Last one wins
			})
		})

		convey.Convey("When loading config with YAML file containing comments", func() {
			yamlContent := `
# This is a comment
addr: ":9090"  # Inline comment
queue_ttl_seconds: 75
# Another comment
ghost_pool_size: 150
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FITRATE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should parse YAML with comments", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueTTLSeconds, convey.ShouldEqual, 75)
				convey.So(cfg.GhostPoolSize, convey.ShouldEqual, 150)
			})
		})

		convey.Convey("When loading config with YAML file containing empty values", func() {
			yamlContent := `
addr: ""
queue_ttl_seconds: 75
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FITRATE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return validation error for empty addr", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"FITRATE_CONFIG",
		"FITRATE_ADDR",
		"FITRATE_REDIS_ADDR",
		"FITRATE_QUEUE_TTL_SECONDS",
		"FITRATE_GHOST_WAIT_SECONDS",
		"FITRATE_GHOST_POOL_SIZE",
		"FITRATE_INGEST_WORKERS",
		"FITRATE_INGEST_QUEUE_SIZE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "fitrate-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
