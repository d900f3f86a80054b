// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
gpio_chip = "/dev/gpiochip4"

[[sensors]]
id = "ambient1"
line = 17

[[vents]]
id = "vent1"
sensors = ["ambient1"]
line = 22
sensors_temp_on = 40
sensors_temp_off = 35
rig_temp_on = 75
rig_temp_off = 65

[[rigs]]
id = "rig1"
uri = "http://10.0.0.2:9100"
led_line = 5
switch_line = 6
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pirig.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSupervisorConfig_DecodesNestedTables(t *testing.T) {
	path := writeConfig(t, sampleTOML)

	cfg, err := LoadSupervisorConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/gpiochip4", cfg.GPIOChip)
	require.Len(t, cfg.Sensors, 1)
	assert.Equal(t, SensorSpec{ID: "ambient1", Line: 17}, cfg.Sensors[0])
	require.Len(t, cfg.Vents, 1)
	assert.Equal(t, []string{"ambient1"}, cfg.Vents[0].Sensors)
	require.Len(t, cfg.Rigs, 1)
	assert.Equal(t, "rig1", cfg.Rigs[0].ID)
	assert.Equal(t, 85, cfg.Rigs[0].CriticalGPUTemp, "default applied when absent from the file")
}

func TestLoadSupervisorConfig_PreservesExplicitCriticalTemp(t *testing.T) {
	path := writeConfig(t, `
[[rigs]]
id = "rig1"
uri = "http://10.0.0.2:9100"
led_line = 5
switch_line = 6
critical_gpu_temp = 90
`)

	cfg, err := LoadSupervisorConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Rigs, 1)
	assert.Equal(t, 90, cfg.Rigs[0].CriticalGPUTemp)
}

func TestLoadSupervisorConfig_DefaultsGPIOChipWhenAbsent(t *testing.T) {
	path := writeConfig(t, `
[[rigs]]
id = "rig1"
uri = "http://10.0.0.2:9100"
led_line = 5
switch_line = 6
`)

	cfg, err := LoadSupervisorConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/gpiochip0", cfg.GPIOChip)
}

func TestLoadSupervisorConfig_MalformedFileIsFatalParseError(t *testing.T) {
	path := writeConfig(t, "this is not valid toml [[[")

	_, err := LoadSupervisorConfig(path)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseAgentFlags_Defaults(t *testing.T) {
	flags, err := ParseAgentFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, AgentFlags{Service: "miner", Port: 0, GPUs: 0, OneShot: false}, flags)
}

func TestParseAgentFlags_AllFlagsSet(t *testing.T) {
	flags, err := ParseAgentFlags([]string{"-s", "custom-miner", "-p", "9100", "-g", "2", "-i"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, AgentFlags{Service: "custom-miner", Port: 9100, GPUs: 2, OneShot: true}, flags)
}

func TestParseAgentFlags_HelpReturnsErrHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := ParseAgentFlags([]string{"-h"}, &out)
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.NotEmpty(t, out.String())
}

func TestParseAgentFlags_UnknownFlagIsParseFailure(t *testing.T) {
	_, err := ParseAgentFlags([]string{"-bogus"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, flag.ErrHelp)
}
