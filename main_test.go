package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSummarizeInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      summarizeInput
		wantErr bool
	}{
		{name: "url", in: summarizeInput{url: "https://youtu.be/abc"}},
		{name: "transcript", in: summarizeInput{transcript: "talk.md"}},
		{name: "sample", in: summarizeInput{sample: true}},
		{name: "nothing", in: summarizeInput{}, wantErr: true},
		{name: "url and sample", in: summarizeInput{url: "https://youtu.be/abc", sample: true}, wantErr: true},
		{name: "transcript and url", in: summarizeInput{url: "https://youtu.be/abc", transcript: "-"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadTranscript(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(plain, []byte("just words\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	text, meta, err := readTranscript(plain)
	if err != nil {
		t.Fatalf("readTranscript() error = %v", err)
	}
	if text != "just words\n" || meta != nil {
		t.Errorf("readTranscript() = %q, %+v", text, meta)
	}

	exported := filepath.Join(dir, "exported.md")
	content := "---\ntitle: Review\nauthor: TechFlow\ngenerated: 2026-01-02T03:04:05Z\n---\n\nBody\n"
	if err := os.WriteFile(exported, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	text, meta, err = readTranscript(exported)
	if err != nil {
		t.Fatalf("readTranscript() error = %v", err)
	}
	if text != "Body\n" {
		t.Errorf("text = %q, want %q", text, "Body\n")
	}
	if meta == nil || meta.Title != "Review" || meta.AuthorName != "TechFlow" {
		t.Errorf("meta = %+v", meta)
	}

	if _, _, err := readTranscript(filepath.Join(dir, "missing.md")); err == nil {
		t.Error("readTranscript() of a missing file returned no error")
	}
}

func TestReadPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.b64")
	if err := os.WriteFile(path, []byte("AAABAA==\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := readPayload(path)
	if err != nil {
		t.Fatalf("readPayload() error = %v", err)
	}
	if got != "AAABAA==" {
		t.Errorf("readPayload() = %q, want trimmed payload", got)
	}
}
