package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "spy", configBaseName)
	assert.Equal(t, "spy.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "format", formatFlagName)
	assert.Equal(t, "no-color", noColorFlagName)
	assert.Equal(t, "log-file", logFileFlagName)
	assert.Equal(t, "verbose", verboseFlagName)
	assert.Equal(t, "report.format", reportFormatKey)
	assert.Equal(t, "report.color", reportColorKey)
	assert.Equal(t, "yaml", defaultReportFormat)
	assert.Equal(t, true, defaultReportColor)
	assert.Equal(t, ".spy.log", defaultLogFilename)
	assert.Equal(t, "SPY", envPrefix)
	assert.Equal(t, "force", forceFlagName)
	assert.Equal(t, "-", stderrLogPath)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestValidateConfig(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, validateConfig())
	})

	t.Run("unknown report format falls back", func(t *testing.T) {
		t.Cleanup(func() { viper.Set(reportFormatKey, defaultReportFormat) })
		viper.Set(reportFormatKey, "xml")

		err := validateConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "report.format")
		assert.Equal(t, defaultReportFormat, viper.GetString(reportFormatKey))
	})

	t.Run("newer config version", func(t *testing.T) {
		t.Cleanup(func() { viper.Set(configVersionKey, currentConfigVersion) })
		viper.Set(configVersionKey, currentConfigVersion+1)

		err := validateConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "newer")
	})
}

func TestReadConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		chdirTemp(t)
		require.NoError(t, readConfig())
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := chdirTemp(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("report: [\n"), 0o600))

		err := readConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"empty uses default", "", slog.LevelWarn},
		{"debug", "debug", slog.LevelDebug},
		{"info", "INFO", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"warning", "warning", slog.LevelWarn},
		{"error", " error ", slog.LevelError},
		{"numeric", "-4", slog.LevelDebug},
		{"unknown uses default", "loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestLoadLogSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		settings := loadLogSettings("", false)

		assert.Equal(t, defaultLogFilename, settings.path)
		assert.Equal(t, slog.LevelInfo, settings.level)
		assert.Equal(t, defaultLogMaxSize, settings.maxSize)
		assert.Equal(t, defaultLogMaxBackups, settings.maxBackups)
		assert.Equal(t, defaultLogMaxAge, settings.maxAge)
		assert.True(t, settings.compress)
	})

	t.Run("overrides", func(t *testing.T) {
		settings := loadLogSettings(" custom.log ", true)

		assert.Equal(t, "custom.log", settings.path)
		assert.Equal(t, slog.LevelDebug, settings.level)
	})
}

func TestLogSettings_Writer(t *testing.T) {
	assert.Same(t, os.Stderr, logSettings{path: stderrLogPath}.writer())

	w := logSettings{path: "spy.log", maxSize: 5, maxBackups: 2}.writer()
	logger, ok := w.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, "spy.log", logger.Filename)
	assert.Equal(t, 5, logger.MaxSize)
	assert.Equal(t, 2, logger.MaxBackups)
}
