package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// writeTree creates files under root from a name -> content map.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestDetect(t *testing.T) {
	tarBuf := new(bytes.Buffer)
	tw := tar.NewWriter(tarBuf)
	if err := tw.WriteHeader(&tar.Header{Name: "a.txt", Mode: 0644, Size: 1}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	tw.Write([]byte("a"))
	tw.Close()

	zipBuf := new(bytes.Buffer)
	zw := zip.NewWriter(zipBuf)
	w, _ := zw.Create("a.txt")
	w.Write([]byte("a"))
	zw.Close()

	emptyZip := new(bytes.Buffer)
	zip.NewWriter(emptyZip).Close()

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"zip", zipBuf.Bytes(), FormatZip},
		{"empty zip", emptyZip.Bytes(), FormatZip},
		{"tar", tarBuf.Bytes(), FormatTar},
		{"gzip", []byte{0x1f, 0x8b, 0x08, 0x00}, FormatTarGz},
		{"xz", []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00}, FormatTarXz},
		{"plain text", []byte("module_id: raw\n"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(bytes.NewReader(tt.data), int64(len(tt.data)))
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDetectFileDirectory(t *testing.T) {
	dir := t.TempDir()
	format, err := DetectFile(dir)
	if err != nil {
		t.Fatalf("DetectFile() error = %v", err)
	}
	if format != FormatUnknown {
		t.Errorf("expected directory to be FormatUnknown, got %q", format)
	}

	format, err = DetectFile(filepath.Join(dir, "missing.zip"))
	if err != nil || format != FormatUnknown {
		t.Errorf("expected missing file to be FormatUnknown without error, got %q, %v", format, err)
	}
}

func TestPackAndExtract(t *testing.T) {
	formats := []Format{FormatZip, FormatTar, FormatTarGz, FormatTarXz}

	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			src := t.TempDir()
			writeTree(t, src, map[string]string{
				"config.yml":          "module_id: raw\n",
				"artifacts/model.bin": "weights",
			})

			archivePath := filepath.Join(t.TempDir(), "model."+string(format))
			if err := Pack(src, archivePath, format, ""); err != nil {
				t.Fatalf("Pack() error = %v", err)
			}

			detected, err := DetectFile(archivePath)
			if err != nil {
				t.Fatalf("DetectFile() error = %v", err)
			}
			if detected != format {
				t.Fatalf("expected detected format %q, got %q", format, detected)
			}

			dest := filepath.Join(t.TempDir(), "out")
			gotFormat, n, err := ExtractFile(archivePath, dest)
			if err != nil {
				t.Fatalf("ExtractFile() error = %v", err)
			}
			if gotFormat != format {
				t.Errorf("expected format %q, got %q", format, gotFormat)
			}
			if n != 2 {
				t.Errorf("expected 2 files extracted, got %d", n)
			}

			data, err := os.ReadFile(filepath.Join(dest, "artifacts", "model.bin"))
			if err != nil {
				t.Fatalf("read extracted file: %v", err)
			}
			if string(data) != "weights" {
				t.Errorf("expected %q, got %q", "weights", data)
			}
		})
	}
}

func TestPackWithBaseDir(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"config.yml": "module_id: raw\n"})

	archivePath := filepath.Join(t.TempDir(), "nested.zip")
	if err := Pack(src, archivePath, FormatZip, "my-model"); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	entries, err := List(archivePath)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Name != "my-model/" || !entries[0].IsDir {
		t.Errorf("expected directory entry my-model/, got %+v", entries[0])
	}
	if entries[1].Name != "my-model/config.yml" {
		t.Errorf("expected my-model/config.yml, got %q", entries[1].Name)
	}
}

func TestExtractSkipsEscapingEntries(t *testing.T) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, name := range []string{"../evil.txt", "/abs.txt", "ok/good.txt", "..weights.bin", "ok/../../up.txt"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		w.Write([]byte("x"))
	}
	zw.Close()

	root := t.TempDir()
	dest := filepath.Join(root, "dest")
	_, n, err := Extract(bytes.NewReader(buf.Bytes()), int64(buf.Len()), dest)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 files written, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(dest, "..weights.bin")); err != nil {
		t.Errorf("expected ..weights.bin to be extracted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "up.txt")); !os.IsNotExist(err) {
		t.Error("expected ok/../../up.txt to be skipped")
	}
	if _, err := os.Stat(filepath.Join(root, "evil.txt")); !os.IsNotExist(err) {
		t.Error("expected ../evil.txt to be skipped")
	}
	if _, err := os.Stat(filepath.Join(dest, "ok", "good.txt")); err != nil {
		t.Errorf("expected ok/good.txt to be extracted: %v", err)
	}
}

func TestExtractUnknownFormat(t *testing.T) {
	data := []byte("not an archive")
	_, _, err := Extract(bytes.NewReader(data), int64(len(data)), t.TempDir())
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}
