package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
engine:
  rules: [insert_ch2, remove_ch2]
  max_variants: 50
  atom_typing: ring
  only_process_queries: ["c1ccccc1"]
  remove_isotopes: false
  element_transformations: ["I=Cl"]
libraries:
  fragments: ./fragments.txt
worker:
  concurrency: 2
output:
  format: json
  sinks: [stdout, kafka]
kafka:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
  topic: variants
log:
  level: debug
  format: console
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"insert_ch2", "remove_ch2"}, cfg.Engine.Rules)
	assert.Equal(t, 50, cfg.Engine.MaxVariants)
	assert.Equal(t, "ring", cfg.Engine.AtomTyping)
	assert.Equal(t, []string{"c1ccccc1"}, cfg.Engine.OnlyProcessQueries)
	assert.False(t, cfg.Engine.RemoveIsotopes)
	assert.True(t, cfg.Engine.ReduceToLargestFragment)
	assert.Equal(t, []string{"I=Cl"}, cfg.Engine.ElementTransformations)
	assert.Equal(t, DefaultMaxFragmentAtoms, cfg.Engine.MaxFragmentAtoms)
	assert.Equal(t, "./fragments.txt", cfg.Libraries.Fragments)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.True(t, cfg.Output.HasSink("kafka"))
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "variants", cfg.Kafka.Topic)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("MINORCHANGES_ENGINE_MAX_VARIANTS", "7")
	t.Setenv("MINORCHANGES_WORKER_CONCURRENCY", "8")

	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Engine.MaxVariants)
	assert.Equal(t, 8, cfg.Worker.Concurrency)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "engine:\n  atom_typing: hybrid\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MINORCHANGES_ENGINE_RULES", "insert_ch2,remove_ch2")
	t.Setenv("MINORCHANGES_SERVER_PORT", "9090")
	t.Setenv("MINORCHANGES_ENGINE_NEUTRALISE", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"insert_ch2", "remove_ch2"}, cfg.Engine.Rules)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Engine.Neutralise)
	assert.True(t, cfg.Engine.RemoveIsotopes)
	assert.Equal(t, []string{DefaultOutputSink}, cfg.Output.Sinks)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAtomTyping, cfg.Engine.AtomTyping)

	cfg, err = LoadOptional(writeConfig(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, "ring", cfg.Engine.AtomTyping)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MINORCHANGES_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("MINORCHANGES_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "loaded", os.Getenv("MINORCHANGES_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minorchanges.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  max_molecules: 10\n"), 0o600))

	var mu sync.Mutex
	var got *Config
	var errs []error
	require.NoError(t, Watch(path, func(c *Config) {
		mu.Lock()
		got = c
		mu.Unlock()
	}, func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}))

	require.NoError(t, os.WriteFile(path, []byte("server:\n  max_molecules: 25\nlog:\n  level: debug\n"), 0o600))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil && got.Server.MaxMolecules == 25 && got.Log.Level == "debug"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("engine:\n  atom_typing: sideways\n"), 0o600))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(errs) > 0
	}, 5*time.Second, 20*time.Millisecond)
	mu.Lock()
	assert.Equal(t, 25, got.Server.MaxMolecules, "invalid file keeps the last good config")
	mu.Unlock()
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "absent.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", "", "c"}))
	assert.Nil(t, splitList(nil))
}

//Personal.AI order the ending
