package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/klytics/sheetlens/internal/ai"
	"github.com/klytics/sheetlens/internal/formats/xlsx"
	"github.com/klytics/sheetlens/internal/prompt"
)

type fakeProvider struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Infer(ctx context.Context, system string, messages []ai.Message, opts ai.InferOptions) (*ai.InferResult, error) {
	for _, m := range messages {
		f.prompts = append(f.prompts, m.Content)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &ai.InferResult{Content: f.reply, Model: "fake-1"}, nil
}

func workbookBytes(t *testing.T, rows int) []byte {
	t.Helper()
	sheet := xlsx.Sheet{Name: "Data", Rows: [][]string{{"n"}}}
	for i := 0; i < rows; i++ {
		sheet.Rows = append(sheet.Rows, []string{strings.Repeat("x", i+1)})
	}
	data, err := xlsx.WriteBytes(&xlsx.Workbook{Sheets: []xlsx.Sheet{sheet, {Name: "Empty"}}})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestAnalyze(t *testing.T) {
	fp := &fakeProvider{reply: "looks fine"}
	svc := New(Options{Provider: fp, AnalyzeRows: 2, AskRows: 5})

	res, err := svc.Analyze(context.Background(), workbookBytes(t, 4))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Text != "looks fine" || res.Model != "fake-1" {
		t.Errorf("unexpected result %+v", res)
	}

	if len(fp.prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(fp.prompts))
	}
	want := prompt.DefaultAnalyzeInstruction + "\n\n### SHEET: Data\nn\nx\nxx\n\n### SHEET: Empty\n(empty)\n"
	if fp.prompts[0] != want {
		t.Errorf("prompt =\n%q\nwant\n%q", fp.prompts[0], want)
	}
}

func TestAskUsesAskRowCap(t *testing.T) {
	fp := &fakeProvider{reply: "42"}
	svc := New(Options{Provider: fp, AnalyzeRows: 1, AskRows: 3, Prompts: prompt.Templates{Ask: "Answer strictly."}})

	res, err := svc.Ask(context.Background(), workbookBytes(t, 10), "  how many?  ")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if res.Text != "42" {
		t.Errorf("Text = %q", res.Text)
	}

	p := fp.prompts[0]
	if !strings.HasPrefix(p, "Answer strictly.\n\nQuestion: how many?\n\nData:\n") {
		t.Errorf("unexpected prompt start %q", p)
	}
	if !strings.Contains(p, "\nxxx\n") || strings.Contains(p, "\nxxxx\n") {
		t.Errorf("expected exactly 3 data rows in %q", p)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	fp := &fakeProvider{}
	svc := New(Options{Provider: fp})

	_, err := svc.Ask(context.Background(), workbookBytes(t, 1), "   ")
	if !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("expected ErrEmptyQuestion, got %v", err)
	}
	if len(fp.prompts) != 0 {
		t.Error("model must not be called for an empty question")
	}
}

func TestAnalyzeUnreadableWorkbook(t *testing.T) {
	fp := &fakeProvider{}
	svc := New(Options{Provider: fp})

	_, err := svc.Analyze(context.Background(), []byte("nope"))
	if !errors.Is(err, xlsx.ErrUnreadable) {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
	if len(fp.prompts) != 0 {
		t.Error("model must not be called for an unreadable workbook")
	}
}

func TestAnalyzeModelFailure(t *testing.T) {
	fp := &fakeProvider{err: errors.New("connection refused")}
	svc := New(Options{Provider: fp})

	_, err := svc.Analyze(context.Background(), workbookBytes(t, 1))
	if !errors.Is(err, ai.ErrModelCall) {
		t.Errorf("expected ErrModelCall, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("cause missing from %q", err.Error())
	}
}
