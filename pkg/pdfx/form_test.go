package pdfx_test

import (
	"math"
	"testing"

	"github.com/Abraxas-365/formscan/pkg/docfield"
	"github.com/Abraxas-365/formscan/pkg/pdfx"
)

func TestFieldName(t *testing.T) {
	cases := []struct {
		label string
		page  int
		index int
		want  string
	}{
		{"Full Name!", 1, 0, "Full_Name__1_0"},
		{"Email", 2, 3, "Email_2_3"},
		{"a  b", 1, 0, "a_b_1_0"},
		{"(Total $)", 1, 1, "_Total____1_1"},
	}

	for _, c := range cases {
		if got := pdfx.FieldName(c.label, c.page, c.index); got != c.want {
			t.Fatalf("FieldName(%q, %d, %d) = %q, want %q", c.label, c.page, c.index, got, c.want)
		}
	}
}

func TestFieldNameTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "ab"
	}
	got := pdfx.FieldName(long, 1, 0)
	if len([]rune(got)) != 50 {
		t.Fatalf("expected 50-rune name, got %d (%q)", len([]rune(got)), got)
	}
}

func TestFontSize(t *testing.T) {
	cases := []struct {
		height float64
		want   int
	}{
		{5, 8},   // floor
		{30, 14}, // ceiling, 18 clamped down
		{16, 10}, // 9.6 rounded
		{20, 12},
	}
	for _, c := range cases {
		if got := pdfx.FontSize(c.height); got != c.want {
			t.Fatalf("FontSize(%v) = %d, want %d", c.height, got, c.want)
		}
	}
}

func TestNativeRectFlipsOrigin(t *testing.T) {
	box := docfield.BoundingBox{X: 10, Y: 10, Width: 30, Height: 5}
	x, y, w, h := pdfx.NativeRect(box, 612, 792)

	if math.Abs(x-61.2) > 1e-9 {
		t.Fatalf("x = %v, want 61.2", x)
	}
	if math.Abs(w-183.6) > 1e-9 {
		t.Fatalf("w = %v, want 183.6", w)
	}
	if math.Abs(h-39.6) > 1e-9 {
		t.Fatalf("h = %v, want 39.6", h)
	}
	// Top-left-origin 10% down a 792pt page: 792 - 79.2 - 39.6.
	if math.Abs(y-673.2) > 1e-9 {
		t.Fatalf("y = %v, want 673.2", y)
	}
}

func TestNativeRectBottomOfPage(t *testing.T) {
	box := docfield.BoundingBox{X: 0, Y: 95, Width: 10, Height: 5}
	_, y, _, _ := pdfx.NativeRect(box, 612, 792)
	if math.Abs(y) > 1e-9 {
		t.Fatalf("field at the page bottom must sit at y=0, got %v", y)
	}
}
