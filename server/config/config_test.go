package config

import (
	"os"
	"strconv"
	"testing"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"HANDS", "WORKERS", "DECK_SEED", "PLAYER_A", "PLAYER_B", "TIE_POLICY", "CSV_SAMPLE_RATE", "ELO_K", "ELO_WEIGHT_BY_POT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg := &Config{}
	require.NoError(t, cleanenv.ReadEnv(cfg))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.Hands)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "heuristic", cfg.PlayerA)
	assert.Equal(t, "model", cfg.PlayerB)
	assert.Equal(t, "split", cfg.TiePolicy)
	assert.Equal(t, 1.0, cfg.CSVSampleRate)
	assert.Equal(t, 24.0, cfg.EloK)
	assert.True(t, cfg.EloWeightByPot)
	_, ok, err := cfg.Seed()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOverrides(t *testing.T) {
	t.Setenv("HANDS", "25")
	t.Setenv("WORKERS", "0")
	t.Setenv("DECK_SEED", "-42")
	t.Setenv("TIE_POLICY", "ABORT")
	t.Setenv("CSV_DRAW_SAMPLE_RATE", "0.25")
	cfg := &Config{}
	require.NoError(t, cleanenv.ReadEnv(cfg))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 25, cfg.Hands)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "abort", cfg.TiePolicy)
	assert.Equal(t, 0.25, cfg.CSVDrawSampleRate)
	seed, ok, err := cfg.Seed()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(18446744073709551574), seed)
}

func TestSeedAboveMaxInt64(t *testing.T) {
	for _, want := range []uint64{1 << 63, 9223372036854788153, ^uint64(0)} {
		cfg := &Config{DeckSeed: strconv.FormatUint(want, 10)}
		seed, ok, err := cfg.Seed()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, want, seed)
	}
	_, _, err := (&Config{DeckSeed: "18446744073709551616"}).Seed()
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	assert.Error(t, (&Config{Workers: 1, TiePolicy: "coinflip"}).Validate())
	assert.Error(t, (&Config{Workers: 1, TiePolicy: "split", CSVSampleRate: 1.5}).Validate())
	assert.Error(t, (&Config{Workers: 1, TiePolicy: "split", DeckSeed: "abc"}).Validate())
	assert.Error(t, (&Config{Hands: -1, Workers: 1, TiePolicy: "split"}).Validate())
}
