package cmd

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/dctsteg/pkg/api"
	"github.com/ssargent/dctsteg/pkg/config"
	"github.com/ssargent/dctsteg/pkg/di"
)

// run executes the CLI with a config path that does not exist unless the
// caller created it.
func run(t *testing.T, configFile string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", configFile}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeCarrier(t *testing.T, dir string, width, height int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(80 + x), G: uint8(100 + y), B: 128, A: 255})
		}
	}

	path := filepath.Join(dir, "carrier.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestEncodeDecodeCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "missing.yaml")
	carrier := writeCarrier(t, dir, 64, 48)

	tests := []struct {
		name string
		out  string
		args []string
	}{
		{"png", "stego.png", nil},
		{"bmp", "stego.bmp", nil},
		{"tiff by flag", "stego.img", []string{"--format", "tiff"}},
		{"green channel", "green.png", []string{"--channel", "green"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.out)
			args := append([]string{"encode", "--in", carrier, "--out", out, "-m", "from the cli"}, tt.args...)

			output, err := run(t, cfgPath, args...)
			require.NoError(t, err, output)
			assert.Contains(t, output, "Embedded 12 bytes")
			assert.FileExists(t, out)

			var decodeArgs []string
			if tt.name == "green channel" {
				decodeArgs = append(decodeArgs, "--channel", "green")
			}
			output, err = run(t, cfgPath, append(decodeArgs, "decode", out)...)
			require.NoError(t, err, output)
			assert.Equal(t, "from the cli\n", output)
		})
	}
}

func TestEncodeMessageFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "missing.yaml")
	carrier := writeCarrier(t, dir, 64, 64)

	msgPath := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(msgPath, []byte("from a file"), 0600))

	out := filepath.Join(dir, "stego.png")
	_, err := run(t, cfgPath, "encode", "--in", carrier, "--out", out, "--message-file", msgPath)
	require.NoError(t, err)

	output, err := run(t, cfgPath, "decode", out)
	require.NoError(t, err)
	assert.Equal(t, "from a file\n", output)
}

func TestEncodeErrors(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "missing.yaml")
	carrier := writeCarrier(t, dir, 64, 64)
	out := filepath.Join(dir, "out.png")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no message", []string{"encode", "--in", carrier, "--out", out}, "message is required"},
		{"too long", []string{"encode", "--in", carrier, "--out", out, "-m", strings.Repeat("x", 23)}, "maximum"},
		{"lossy output", []string{"encode", "--in", carrier, "--out", filepath.Join(dir, "out.jpg"), "-m", "hi"}, "unsupported output format"},
		{"missing input", []string{"encode", "--in", filepath.Join(dir, "nope.png"), "--out", out, "-m", "hi"}, "failed to open image"},
		{"bad channel", []string{"--channel", "alpha", "encode", "--in", carrier, "--out", out, "-m", "hi"}, "unknown channel"},
		{"bad strength", []string{"--strength", "-1", "encode", "--in", carrier, "--out", out, "-m", "hi"}, "strength"},
		{"both messages", []string{"encode", "--in", carrier, "--out", out, "-m", "hi", "--message-file", "x"}, "none of the others"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, cfgPath, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeCleanImage(t *testing.T) {
	dir := t.TempDir()
	carrier := writeCarrier(t, dir, 64, 64)

	_, err := run(t, filepath.Join(dir, "missing.yaml"), "decode", carrier)
	assert.Error(t, err)
}

func TestCapacityCommand(t *testing.T) {
	dir := t.TempDir()
	carrier := writeCarrier(t, dir, 61, 45)

	output, err := run(t, filepath.Join(dir, "missing.yaml"), "capacity", carrier)
	require.NoError(t, err)
	assert.Contains(t, output, "Image:       61x45")
	assert.Contains(t, output, "Channel:     red")
	assert.Contains(t, output, "Capacity:    192 bits")
	assert.Contains(t, output, "Max message: 14 characters")
}

func TestConfigFileStrength(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	carrier := writeCarrier(t, dir, 64, 64)

	cfg := config.DefaultConfig()
	cfg.Stego.Strength = 40
	require.NoError(t, config.SaveConfig(cfg, cfgPath))

	out := filepath.Join(dir, "stego.png")
	_, err := run(t, cfgPath, "encode", "--in", carrier, "--out", out, "-m", "strong")
	require.NoError(t, err)

	output, err := run(t, cfgPath, "decode", out)
	require.NoError(t, err)
	assert.Equal(t, "strong\n", output)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "conf", "config.yaml")

	output, err := run(t, cfgPath, "init")
	require.NoError(t, err)
	assert.Contains(t, output, "Configuration written")
	assert.True(t, config.ConfigExists(cfgPath))

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.APIKey)

	t.Run("existing config", func(t *testing.T) {
		_, err := run(t, cfgPath, "init")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--force")
	})

	t.Run("force with api key", func(t *testing.T) {
		output, err := run(t, cfgPath, "init", "--force", "--generate-api-key")
		require.NoError(t, err)

		cfg, err := config.LoadConfig(cfgPath)
		require.NoError(t, err)
		assert.Len(t, cfg.Server.APIKey, 64)
		assert.Contains(t, output, cfg.Server.APIKey)
	})

	t.Run("broken config can be replaced", func(t *testing.T) {
		require.NoError(t, os.WriteFile(cfgPath, []byte("server: ["), 0600))
		_, err := run(t, cfgPath, "init", "--force")
		require.NoError(t, err)
	})
}

type recordingStarter struct {
	cfg *config.Config
}

func (s *recordingStarter) StartServer(ctx context.Context, cfg *config.Config) error {
	s.cfg = cfg
	return nil
}

type recordingFactory struct {
	starter *recordingStarter
}

func (f *recordingFactory) CreateServerStarter() api.ServerStarter {
	return f.starter
}

func TestServeCommand(t *testing.T) {
	starter := &recordingStarter{}
	c := di.NewContainer()
	c.SetServerFactory(&recordingFactory{starter: starter})
	SetContainer(c)
	t.Cleanup(func() { SetContainer(nil) })

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	output, err := run(t, cfgPath, "serve", "--port", "9090", "--print-key")
	require.NoError(t, err)
	assert.Contains(t, output, "First run detected")
	assert.True(t, config.ConfigExists(cfgPath))

	require.NotNil(t, starter.cfg)
	assert.Equal(t, 9090, starter.cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", starter.cfg.Server.Bind)
	assert.Len(t, starter.cfg.Server.APIKey, 64)
	assert.Contains(t, output, starter.cfg.Server.APIKey)

	// Second run loads the bootstrapped file.
	saved, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	output, err = run(t, cfgPath, "serve", "--bind", "0.0.0.0")
	require.NoError(t, err)
	assert.NotContains(t, output, "First run detected")
	assert.Equal(t, saved.Server.APIKey, starter.cfg.Server.APIKey)
	assert.Equal(t, 8080, starter.cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", starter.cfg.Server.Bind)
}

func TestServeWithoutContainer(t *testing.T) {
	SetContainer(nil)

	_, err := run(t, filepath.Join(t.TempDir(), "config.yaml"), "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency container not initialized")
}
