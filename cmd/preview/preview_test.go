package preview

import (
	"os"
	"path/filepath"
	"testing"
)

func TestColumnWidths(t *testing.T) {
	rows := [][]string{
		{"id", "a very long description that goes well past the forty character clamp"},
		{"12345", "x"},
		{"", "", "z"},
	}

	got := columnWidths(rows)
	want := []int{5, 40, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("width[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestReadWorkbookFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := os.WriteFile(path, []byte("data"), 0600); err != nil {
		t.Fatal(err)
	}

	name, data, err := readWorkbook([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if name != path || string(data) != "data" {
		t.Errorf("got %q %q", name, data)
	}
}

func TestReadWorkbookMissing(t *testing.T) {
	if _, _, err := readWorkbook([]string{"/nonexistent/book.xlsx"}); err == nil {
		t.Error("expected error")
	}
}
