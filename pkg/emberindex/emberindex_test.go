package emberindex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHTMLRendererListsEntriesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.txt", "alpha.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	out, err := HTMLRenderer{}.Render(dir, "/files/")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	alphaIdx := strings.Index(out, "alpha.txt")
	zetaIdx := strings.Index(out, "zeta.txt")
	if alphaIdx < 0 || zetaIdx < 0 || alphaIdx > zetaIdx {
		t.Fatalf("expected alpha before zeta, got %q", out)
	}
	if !strings.Contains(out, `href="sub/"`) {
		t.Fatalf("expected directory link with trailing slash, got %q", out)
	}
}

func TestHTMLRendererHidesDotfiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := HTMLRenderer{}.Render(dir, "/")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, ".hidden") {
		t.Fatalf("expected hidden file to be excluded, got %q", out)
	}
}
