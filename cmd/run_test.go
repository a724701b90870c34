package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gnames/dsrecon/pkg/config"
	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var harvested = strings.Join([]string{
	`{"source":"datacite","ror_id":"024d6js02","doi":"10.5281/zenodo.100","record":{"attributes":{"doi":"10.5281/zenodo.100","clientId":"cern.zenodo","publicationYear":2021,"relatedIdentifiers":[{"relationType":"HasVersion","relatedIdentifierType":"DOI","relatedIdentifier":"10.5281/zenodo.101"}]}}}`,
	`{"source":"datacite","ror_id":"024d6js02","doi":"10.5281/zenodo.101","record":{"attributes":{"doi":"10.5281/zenodo.101","clientId":"cern.zenodo","publicationYear":2021,"relatedIdentifiers":[{"relationType":"IsVersionOf","relatedIdentifierType":"DOI","relatedIdentifier":"10.5281/zenodo.100"}]}}}`,
	`{"source":"crossref","ror_id":"https://ror.org/024d6js02","doi":"10.1/B","record":{"DOI":"10.1/b","issued":{"date-parts":[[2019]]}}}`,
}, "\n") + "\n"

// execute runs the root command with a temporary home directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping command test in short mode")
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DSRECON_LOG_DESTINATION", "file")

	cmd := getRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func harvestFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harvest.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(harvested), 0644))
	return path
}

func TestRunCmd(t *testing.T) {
	in := harvestFile(t)
	out := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "run", "-i", in, "-o", out, "--collapse", "-q", "--metrics")
	require.NoError(t, err)

	assert.Equal(t, out, cfg.Output.Dir)
	assert.True(t, cfg.Collapse.Enabled)
	for _, name := range []string{
		"datasets_dedup.jsonl",
		"datasets_collapsed.jsonl",
		"versions_log.tsv",
		"summary_stats.json",
		"datasets_flat.csv",
		"metrics.prom",
	} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	home := cfg.HomeDir
	assert.FileExists(t, config.ConfigFilePath(home))
	assert.FileExists(t, filepath.Join(config.LogDir(home), "dsrecon.log"))
}

func TestRunCmdNoInput(t *testing.T) {
	_, err := execute(t, "run", "-o", t.TempDir(), "-q")
	require.Error(t, err)
}

func TestRunCmdInvalidConfig(t *testing.T) {
	in := harvestFile(t)
	_, err := execute(t, "run", "-i", in, "-o", t.TempDir(), "-q", "--s3")
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.ConfigInvalidError, gnErr.Code)
}

func TestEnvOverridesConfig(t *testing.T) {
	in := harvestFile(t)
	t.Setenv("DSRECON_COLLAPSE_ENABLED", "true")
	t.Setenv("DSRECON_OUTPUT_PROGRESS_BAR", "false")
	out := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "dedup", "-i", in, "-o", out)
	require.NoError(t, err)
	assert.True(t, cfg.Collapse.Enabled)
	assert.False(t, cfg.Output.ProgressBar)
	assert.True(t, cfg.Output.VersionsLog, "defaults are kept")
	assert.FileExists(t, filepath.Join(out, "datasets_dedup.jsonl"))
	assert.NoFileExists(t, filepath.Join(out, "timeline.tsv"))
}

func TestDedupCollapseAnalyzeCmds(t *testing.T) {
	in := harvestFile(t)
	out := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "dedup", "-i", in, "-o", out, "-q")
	require.NoError(t, err)

	dedup := filepath.Join(out, "datasets_dedup.jsonl")
	collapsed := filepath.Join(out, "collapsed.jsonl")
	logPath := filepath.Join(out, "log.tsv")
	_, err = execute(t, "collapse", "-i", dedup, "-o", collapsed,
		"--log", logPath, "-q")
	require.NoError(t, err)
	assert.FileExists(t, collapsed)
	assert.FileExists(t, logPath)

	_, err = execute(t, "analyze", "-d", collapsed, "-o", out, "-q")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "timeline.tsv"))

	_, err = execute(t, "collapse", "-i", dedup)
	require.Error(t, err)
	_, err = execute(t, "analyze", "-o", out)
	require.Error(t, err)
}

func TestCheckCmd(t *testing.T) {
	in := harvestFile(t)
	out := filepath.Join(t.TempDir(), "out")
	_, err := execute(t, "dedup", "-i", in, "-o", out, "-q")
	require.NoError(t, err)

	dedup := filepath.Join(out, "datasets_dedup.jsonl")
	res, err := execute(t, "check", "--ror", "https://ror.org/024d6js02",
		"-i", dedup, "-e", "1")
	require.NoError(t, err)
	assert.Contains(t, res, "3 of 3 records")

	_, err = execute(t, "check", "--ror", "", "-i", dedup)
	require.Error(t, err)
}

func TestConfigCmd(t *testing.T) {
	t.Setenv("DSRECON_DATABASE_PASSWORD", "topsecret")
	res, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, res, "database:")
	assert.Contains(t, res, masked)
	assert.NotContains(t, res, "topsecret")
}
