package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	c := cfg.Converter
	if !c.TrimWhitespace || !c.RemoveInnerWhitespace || !c.NormalizeUnicode {
		t.Errorf("whitespace defaults = %+v, want all enabled", c)
	}
	if c.KeepUnstructuredCitations {
		t.Error("unstructured citations must be opt-in")
	}
	if c.Backend != XMLBackendEtree {
		t.Errorf("Backend = %v, want etree", c.Backend)
	}
	if c.Publisher != "" {
		t.Errorf("Publisher = %q, want empty", c.Publisher)
	}
	if cfg.Output.Format != OutputFmtJson || !cfg.Output.Indent {
		t.Errorf("Output = %+v, want indented json", cfg.Output)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}
	if cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("file level = %q, want none", cfg.Logging.FileLogger.Level)
	}
	if cfg.Logging.Articles.Diagnostics != "summary" {
		t.Errorf("article diagnostics = %q, want summary", cfg.Logging.Articles.Diagnostics)
	}
	if len(cfg.Reporting.Destination) == 0 {
		t.Error("report destination must have default")
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `version: 1
converter:
  remove_inner_whitespace: false
  keep_unstructured_citations: true
  xml_backend: xpath
  publisher: eLife Sciences Publications, Ltd
output:
  format: tree
  indent: false
logging:
  console:
    level: debug
  file:
    level: debug
    destination: `+filepath.Join(dir, "test.log")+`
    mode: append
reporting:
  destination: `+filepath.Join(dir, "test-report.zip")+`
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Converter.RemoveInnerWhitespace {
		t.Error("RemoveInnerWhitespace = true, want false")
	}
	// not mentioned in file, template value survives
	if !cfg.Converter.TrimWhitespace {
		t.Error("TrimWhitespace = false, want template default")
	}
	if !cfg.Converter.KeepUnstructuredCitations {
		t.Error("KeepUnstructuredCitations = false, want true")
	}
	if cfg.Converter.Backend != XMLBackendXpath {
		t.Errorf("Backend = %v, want xpath", cfg.Converter.Backend)
	}
	if cfg.Converter.Publisher != "eLife Sciences Publications, Ltd" {
		t.Errorf("Publisher = %q", cfg.Converter.Publisher)
	}
	if cfg.Output.Format != OutputFmtTree || cfg.Output.Indent {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("file mode = %q, want append", cfg.Logging.FileLogger.Mode)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\nconverter: [oops"},
		{"unknown field", "version: 1\nconverter:\n  fold_everything: true\n"},
		{"bad version", "version: 2\n"},
		{"bad backend", "version: 1\nconverter:\n  xml_backend: sax\n"},
		{"bad format", "version: 1\noutput:\n  format: html\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: chatty\n"},
		{"bad article diagnostics", "version: 1\nlogging:\n  articles:\n    diagnostics: everything\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tc.content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml"))
		if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestUnmarshalConfig_WrapsDecodeError(t *testing.T) {
	_, err := unmarshalConfig([]byte("converter: [x"), &Config{}, false)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "failed to decode configuration data: ") {
		t.Errorf("error not wrapped: %v", err)
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Prepared config is not valid: %v", err)
	}

	cfg.Converter.Backend = XMLBackendXpath
	cfg.Output.Format = OutputFmtTree
	out, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"xml_backend: xpath", "format: tree", "keep_unstructured_citations: false"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("dump misses %q:\n%s", want, out)
		}
	}

	back, err := unmarshalConfig(out, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if back.Converter.Backend != XMLBackendXpath || back.Output.Format != OutputFmtTree {
		t.Errorf("enums lost after dump: %+v %+v", back.Converter, back.Output)
	}
}

func TestConverterOptions(t *testing.T) {
	c := ConverterConfig{
		TrimWhitespace:            true,
		NormalizeUnicode:          true,
		KeepUnstructuredCitations: true,
		Publisher:                 "PeerJ Inc.",
	}
	opts := c.Options()
	if !opts.TrimWhitespace || opts.RemoveInnerWhitespace || !opts.NormalizeUnicode {
		t.Errorf("whitespace options not carried: %+v", opts)
	}
	if !opts.KeepUnstructuredCitations || opts.Publisher != "PeerJ Inc." {
		t.Errorf("options not carried: %+v", opts)
	}
}

func TestEnums(t *testing.T) {
	t.Run("parse is case insensitive", func(t *testing.T) {
		if b, err := ParseXMLBackend("XPath"); err != nil || b != XMLBackendXpath {
			t.Errorf("ParseXMLBackend() = %v, %v", b, err)
		}
		if f, err := ParseOutputFmt("JSON"); err != nil || f != OutputFmtJson {
			t.Errorf("ParseOutputFmt() = %v, %v", f, err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := ParseXMLBackend("dom"); !errors.Is(err, ErrInvalidXMLBackend) {
			t.Errorf("ParseXMLBackend() error = %v", err)
		}
		var f OutputFmt
		if err := f.UnmarshalText([]byte("pdf")); !errors.Is(err, ErrInvalidOutputFmt) {
			t.Errorf("UnmarshalText() error = %v", err)
		}
		if s := OutputFmt(7).String(); s != "OutputFmt(7)" {
			t.Errorf("String() = %q", s)
		}
	})

	t.Run("names", func(t *testing.T) {
		names := OutputFmtNames()
		names[0] = "changed"
		if OutputFmtNames()[0] != "json" {
			t.Error("OutputFmtNames() exposes internal slice")
		}
		if strings.Join(XMLBackendNames(), ",") != "etree,xpath" {
			t.Errorf("XMLBackendNames() = %v", XMLBackendNames())
		}
	})

	t.Run("extensions", func(t *testing.T) {
		if OutputFmtJson.Ext() != ".json" || OutputFmtTree.Ext() != ".txt" {
			t.Error("unexpected extensions")
		}
		defer func() {
			if recover() == nil {
				t.Error("Ext() on invalid format must panic")
			}
		}()
		_ = OutputFmt(-1).Ext()
	})
}
