package convert

import (
	"context"
	"testing"

	"github.com/Abraxas-365/formscan/pkg/errx"
)

func TestIsPDF(t *testing.T) {
	cases := map[string]bool{
		"form.pdf":  true,
		"FORM.PDF":  true,
		"form.docx": false,
		"form":      false,
		"pdf":       false,
	}
	for name, want := range cases {
		if got := IsPDF(name); got != want {
			t.Fatalf("IsPDF(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	for _, name := range []string{"a.docx", "a.DOC", "a.odt", "a.rtf", "a.txt", "a.xlsx", "a.xls", "a.pptx", "a.ppt"} {
		if !IsSupported(name) {
			t.Fatalf("expected %q to be supported", name)
		}
	}
	for _, name := range []string{"a.pdf", "a.png", "a.zip", "a"} {
		if IsSupported(name) {
			t.Fatalf("expected %q to be unsupported", name)
		}
	}
}

func TestToPDFRejectsUnknownType(t *testing.T) {
	l := &LibreOffice{}
	_, err := l.ToPDF(context.Background(), []byte("x"), "image.png")
	if !errx.IsCode(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}

func TestArgs(t *testing.T) {
	got := args("/tmp", "/tmp/input-1.docx")
	want := []string{"--headless", "--convert-to", "pdf", "--outdir", "/tmp", "/tmp/input-1.docx"}
	if len(got) != len(want) {
		t.Fatalf("args = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
