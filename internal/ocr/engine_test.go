package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/tesseract-words/internal/config"
)

const sampleHOCR = `<html><body><div class="ocr_page">
<span class="ocr_line">
<span class="ocrx_word" title="bbox 10 10 50 30; x_wconf 95">Hello</span>
<span class="ocrx_word" title="bbox 60 10 110 30; x_wconf 91">World</span>
</span>
</div></body></html>`

// writeFakeTesseract writes a shell script that mimics the tesseract CLI:
// "--version" prints a banner, anything else writes sampleHOCR to <base>.hocr
// and records its arguments in $FAKE_TESSERACT_ARGS when set.
func writeFakeTesseract(t *testing.T, ext string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tesseract script needs a POSIX shell")
	}

	script := `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "tesseract 5.3.0"
  echo " leptonica-1.82.0"
  exit 0
fi
if [ -n "$FAKE_TESSERACT_ARGS" ]; then
  echo "$@" > "$FAKE_TESSERACT_ARGS"
fi
cat > "$2` + ext + `" <<'EOF'
` + sampleHOCR + `
EOF
`
	path := filepath.Join(t.TempDir(), "tesseract")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestParseConfigString(t *testing.T) {
	base := DefaultOptions()

	tests := []struct {
		name    string
		input   string
		want    Options
		wantErr bool
	}{
		{"empty", "", base, false},
		{"psm separate", "--psm 6", Options{Language: "eng", PageSegMode: 6}, false},
		{"psm equals", "--psm=11", Options{Language: "eng", PageSegMode: 11}, false},
		{"language", "-l deu+eng", Options{Language: "deu+eng", PageSegMode: 3}, false},
		{
			"variable",
			"-c preserve_interword_spaces=1",
			Options{Language: "eng", PageSegMode: 3, Variables: map[string]string{"preserve_interword_spaces": "1"}},
			false,
		},
		{
			"combined",
			"--psm 7 -l fra -c a=b -c c=",
			Options{Language: "fra", PageSegMode: 7, Variables: map[string]string{"a": "b", "c": ""}},
			false,
		},
		{"psm out of range", "--psm 14", Options{}, true},
		{"psm not a number", "--psm six", Options{}, true},
		{"psm missing value", "--psm", Options{}, true},
		{"language missing value", "-l", Options{}, true},
		{"variable without equals", "-c foo", Options{}, true},
		{"variable without key", "-c =1", Options{}, true},
		{"unsupported flag", "--oem 1", Options{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfigString(base, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, base, got, "base options are returned on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConfigString_DoesNotMutateBase(t *testing.T) {
	base := Options{Language: "eng", PageSegMode: 3, Variables: map[string]string{"x": "1"}}

	got, err := ParseConfigString(base, "-c x=2 -c y=3")
	require.NoError(t, err)

	assert.Equal(t, "1", base.Variables["x"])
	assert.NotContains(t, base.Variables, "y")
	assert.Equal(t, map[string]string{"x": "2", "y": "3"}, got.Variables)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.OCRConfig{
		Language:    "eng+deu",
		PageSegMode: 6,
		Variables:   map[string]string{"tessedit_char_whitelist": "0123456789"},
	}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "eng+deu", opts.Language)
	assert.Equal(t, 6, opts.PageSegMode)
	assert.Equal(t, cfg.Variables, opts.Variables)

	opts.Variables["extra"] = "1"
	assert.NotContains(t, cfg.Variables, "extra")
}

func TestOptions_Language(t *testing.T) {
	assert.Equal(t, "eng", Options{}.language())
	assert.Equal(t, []string{"eng", "deu"}, Options{Language: "eng+deu"}.languages())
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(config.OCRConfig{Engine: config.EngineGosseract})
	require.NoError(t, err)
	assert.Equal(t, "gosseract", e.Name())

	e, err = NewEngine(config.OCRConfig{})
	require.NoError(t, err)
	assert.Equal(t, "gosseract", e.Name())

	e, err = NewEngine(config.OCRConfig{Engine: config.EngineCLI, TesseractPath: "/opt/tesseract"})
	require.NoError(t, err)
	require.IsType(t, &CLIEngine{}, e)
	assert.Equal(t, "/opt/tesseract", e.(*CLIEngine).Path)

	_, err = NewEngine(config.OCRConfig{Engine: "paddle"})
	assert.Error(t, err)
}

func TestCLIEngine_Args(t *testing.T) {
	e := NewCLIEngine("")
	assert.Equal(t, "tesseract", e.Path)

	opts := Options{
		Language:    "eng+deu",
		PageSegMode: 6,
		Variables:   map[string]string{"b": "2", "a": "1"},
	}
	got := e.args("in.png", "/tmp/out", opts)
	want := []string{
		"in.png", "/tmp/out",
		"-l", "eng+deu",
		"--psm", "6",
		"-c", "a=1",
		"-c", "b=2",
		"hocr",
	}
	assert.Equal(t, want, got)
}

func TestCLIEngine_HOCR(t *testing.T) {
	bin := writeFakeTesseract(t, ".hocr")
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FAKE_TESSERACT_ARGS", argsFile)

	e := NewCLIEngine(bin)
	markup, err := e.HOCR(context.Background(), "page.png", Options{Language: "eng", PageSegMode: 4})
	require.NoError(t, err)
	assert.Contains(t, markup, `class="ocrx_word"`)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	args := strings.Fields(string(data))
	require.Len(t, args, 7)
	assert.Equal(t, "page.png", args[0])
	assert.Equal(t, []string{"-l", "eng", "--psm", "4", "hocr"}, args[2:])
}

func TestCLIEngine_HTMLFallback(t *testing.T) {
	bin := writeFakeTesseract(t, ".html")

	markup, err := NewCLIEngine(bin).HOCR(context.Background(), "page.png", DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, markup, "Hello")
}

func TestCLIEngine_NoOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	bin := filepath.Join(t.TempDir(), "tesseract")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho 'Error, cannot read input file' >&2\nexit 0\n"), 0o755))

	_, err := NewCLIEngine(bin).HOCR(context.Background(), "page.png", DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no hOCR output")
	assert.Contains(t, err.Error(), "cannot read input file")
}

func TestCLIEngine_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	bin := filepath.Join(t.TempDir(), "tesseract")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho 'Failed loading language' >&2\nexit 1\n"), 0o755))

	_, err := NewCLIEngine(bin).HOCR(context.Background(), "page.png", DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed loading language")
}

func TestCLIEngine_Missing(t *testing.T) {
	e := NewCLIEngine(filepath.Join(t.TempDir(), "no-such-tesseract"))

	_, err := e.HOCR(context.Background(), "page.png", DefaultOptions())
	assert.True(t, errors.Is(err, ErrEngineUnavailable))

	info := e.Info()
	assert.False(t, info.Available)
	assert.NotEmpty(t, info.Error)
	assert.Equal(t, "cli", info.Backend)
}

func TestCLIEngine_Info(t *testing.T) {
	bin := writeFakeTesseract(t, ".hocr")

	info := NewCLIEngine(bin).Info()
	assert.True(t, info.Available)
	assert.Equal(t, "5.3.0", info.Version)
	assert.Equal(t, "cli", info.Backend)
	assert.Empty(t, info.Error)
}

func TestWorkspace(t *testing.T) {
	parent := t.TempDir()

	ws, err := NewWorkspace(parent, "test")
	require.NoError(t, err)
	assert.Equal(t, parent, filepath.Dir(ws.Dir()))
	assert.True(t, strings.HasPrefix(filepath.Base(ws.Dir()), "test-"))

	other, err := NewWorkspace(parent, "test")
	require.NoError(t, err)
	assert.NotEqual(t, ws.Dir(), other.Dir())
	require.NoError(t, other.Close())

	path, err := ws.WriteImage("input", createLinesImage([]string{"x"}, 1))
	require.NoError(t, err)
	assert.Equal(t, ws.Path("input.png"), path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, ws.Close())
	_, err = os.Stat(ws.Dir())
	assert.True(t, os.IsNotExist(err))
}
