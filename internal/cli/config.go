package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/berkcaputcu/spy/report"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "spy"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	formatFlagName  = "format"
	noColorFlagName = "no-color"
	logFileFlagName = "log-file"
	verboseFlagName = "verbose"
	forceFlagName   = "force"

	reportFormatKey = "report.format"
	reportColorKey  = "report.color"

	defaultReportFormat = "yaml"
	defaultReportColor  = true

	envPrefix = "SPY"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".spy.log"
	stderrLogPath        = "-"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(reportFormatKey, defaultReportFormat)
	viper.SetDefault(reportColorKey, defaultReportColor)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := readConfig(); err != nil {
		slog.Warn("Ignoring config settings", "path", viper.ConfigFileUsed(), "error", err)
	}
}

// readConfig loads spy.yaml when present and checks the settings the
// commands rely on.
func readConfig() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to read config file: %w", err)
	}

	return validateConfig()
}

// validateConfig resets a bad report format to the default and rejects
// config files written by a newer spy.
func validateConfig() error {
	var errs []error

	if v := viper.GetInt(configVersionKey); v > currentConfigVersion {
		errs = append(errs, fmt.Errorf("config version %d is newer than %d", v, currentConfigVersion))
	}

	if _, err := report.ParseFormat(viper.GetString(reportFormatKey)); err != nil {
		viper.Set(reportFormatKey, defaultReportFormat)
		errs = append(errs, fmt.Errorf("%s: %w", reportFormatKey, err))
	}

	return errors.Join(errs...)
}

var slogLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// parseSlogLevel accepts a level name or a numeric slog level such as -4.
func parseSlogLevel(value string, fallback slog.Level) slog.Level {
	name := strings.ToLower(strings.TrimSpace(value))
	if level, ok := slogLevels[name]; ok {
		return level
	}

	if n, err := strconv.Atoi(name); err == nil {
		return slog.Level(n)
	}

	return fallback
}

// logSettings is the log.* section of spy.yaml with flag overrides applied.
type logSettings struct {
	path       string
	level      slog.Level
	maxSize    int
	maxBackups int
	maxAge     int
	compress   bool
}

func loadLogSettings(pathOverride string, verbose bool) logSettings {
	settings := logSettings{
		path:       strings.TrimSpace(pathOverride),
		level:      parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo),
		maxSize:    viper.GetInt(logMaxSizeKey),
		maxBackups: viper.GetInt(logMaxBackupsKey),
		maxAge:     viper.GetInt(logMaxAgeKey),
		compress:   viper.GetBool(logCompressKey),
	}

	if settings.path == "" {
		settings.path = strings.TrimSpace(viper.GetString(logFilenameKey))
	}

	if settings.path == "" {
		settings.path = defaultLogFilename
	}

	if verbose || viper.GetBool(logVerboseKey) {
		settings.level = slog.LevelDebug
	}

	return settings
}

// writer returns the log destination: stderr for "-", a rotated file
// otherwise.
func (s logSettings) writer() io.Writer {
	if s.path == stderrLogPath {
		return os.Stderr
	}

	return &lumberjack.Logger{
		Filename:   s.path,
		MaxSize:    s.maxSize,
		MaxBackups: s.maxBackups,
		MaxAge:     s.maxAge,
		Compress:   s.compress,
	}
}

// configureLogger installs the global slog logger used by the commands
// and by the report package.
func configureLogger(pathOverride string, verbose bool) {
	settings := loadLogSettings(pathOverride, verbose)

	handler := slog.NewTextHandler(settings.writer(), &slog.HandlerOptions{
		AddSource: settings.level <= slog.LevelDebug,
		Level:     settings.level,
	})

	globalLogger = slog.New(handler).With("cmd", "spy")
	slog.SetDefault(globalLogger)
}
