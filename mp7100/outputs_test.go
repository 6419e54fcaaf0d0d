package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/itohio/gomp7100/pkg/config"
	"github.com/itohio/gomp7100/pkg/reading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputs_FileAndImage(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Quiet = true
	cfg.Output.File = filepath.Join(dir, "mp7100.txt")
	cfg.Output.Image = filepath.Join(dir, "mp7100.png")

	out, err := newOutputs(cfg, nil)
	require.NoError(t, err)
	defer out.Close()
	require.NotNil(t, out.overlay)

	out.Update(reading.Reading{Volts: "12.345", Amps: "0.512"})
	out.Update(reading.Reading{Volts: "11.000", Amps: "0.100"})

	data, err := os.ReadFile(cfg.Output.File)
	require.NoError(t, err)
	assert.Equal(t, "12.345V 0.512A\n", string(data), "first write wins by default")

	_, err = os.Stat(cfg.Output.Image)
	assert.NoError(t, err)
}

func TestOutputs_Console(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer

	out, err := newOutputs(cfg, &buf)
	require.NoError(t, err)
	assert.Nil(t, out.overlay)

	out.Update(reading.Reading{Volts: "5.000", Amps: "1.250"})
	out.Update(reading.Reading{Volts: reading.NoData, Amps: reading.NoData, Err: errors.New("timeout")})

	assert.Equal(t, "  5.000V   1.250A\n NODATA  NODATA\n", buf.String())
}

func TestOutputs_FileErrorDoesNotStop(t *testing.T) {
	cfg := config.Default()
	cfg.Quiet = true
	cfg.Output.File = filepath.Join(t.TempDir(), "missing", "mp7100.txt")
	var buf bytes.Buffer

	out, err := newOutputs(cfg, &buf)
	require.NoError(t, err)

	out.Update(reading.Reading{Volts: "5.000", Amps: "1.250"})
	assert.True(t, out.fileFailed)
	assert.NotEmpty(t, buf.String(), "console still receives the reading")
}

func TestOutputs_BadFont(t *testing.T) {
	cfg := config.Default()
	cfg.Display.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
	cfg.Output.Image = filepath.Join(t.TempDir(), "mp7100.png")

	_, err := newOutputs(cfg, nil)
	assert.Error(t, err)
}

func TestOutputs_FailedFirstReadingDoesNotClaimFile(t *testing.T) {
	cfg := config.Default()
	cfg.Quiet = true
	cfg.Output.File = filepath.Join(t.TempDir(), "mp7100.txt")

	out, err := newOutputs(cfg, nil)
	require.NoError(t, err)

	out.Update(reading.Reading{Volts: reading.NoData, Amps: reading.NoData, Err: errors.New("device settling")})
	_, err = os.Stat(cfg.Output.File)
	assert.True(t, os.IsNotExist(err), "failed cycle must not create the file")

	out.Update(reading.Reading{Volts: "12.345", Amps: "0.512"})
	out.Update(reading.Reading{Volts: "11.000", Amps: "0.100"})

	data, err := os.ReadFile(cfg.Output.File)
	require.NoError(t, err)
	assert.Equal(t, "12.345V 0.512A\n", string(data))
}

func TestOutputs_RefreshPublishesFailures(t *testing.T) {
	cfg := config.Default()
	cfg.Quiet = true
	cfg.Output.File = filepath.Join(t.TempDir(), "mp7100.txt")
	cfg.Output.Refresh = true

	out, err := newOutputs(cfg, nil)
	require.NoError(t, err)

	out.Update(reading.Reading{Volts: "12.345", Amps: "0.512"})
	out.Update(reading.Reading{Volts: reading.NoData, Amps: reading.NoData, Err: errors.New("unplugged")})

	data, err := os.ReadFile(cfg.Output.File)
	require.NoError(t, err)
	assert.Equal(t, "NODATA NODATA\n", string(data))
}
