package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_LoadEmbedded(t *testing.T) {
	for _, name := range []string{HazardStructured, HazardText, Reader} {
		txt, err := Store{}.Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if txt == "" {
			t.Fatalf("Load(%q) returned empty prompt", name)
		}
	}
}

func TestStore_DirOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, HazardText+".txt"), []byte("  custom prompt \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := Store{Dir: dir}

	got, err := s.Load(HazardText)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "custom prompt" {
		t.Fatalf("got %q, want override", got)
	}

	// files missing from Dir fall back to the embedded version
	got, err = s.Load(Reader)
	if err != nil || !strings.Contains(got, "Buddy") {
		t.Fatalf("fallback failed: %q, %v", got, err)
	}
}

func TestStore_Unknown(t *testing.T) {
	if _, err := (Store{}).Load("nope.v9"); err == nil {
		t.Fatal("expected error for unknown prompt")
	}
}

func TestRender(t *testing.T) {
	got := Render(`command: "{{user_text}}"`, map[string]string{"user_text": "read text"})
	if got != `command: "read text"` {
		t.Fatalf("Render = %q", got)
	}
}

func TestHazardTextPromptEndsWithTokenContract(t *testing.T) {
	txt, err := Store{}.Load(HazardText)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(txt, "HIGH, MED or LOW") {
		t.Fatalf("text prompt lost its severity token contract")
	}
}
