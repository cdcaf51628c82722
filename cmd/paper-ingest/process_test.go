// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func newProcessFlags(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().String("pdf", "", "")
	cmd.Flags().String("url", "", "")
	cmd.Flags().String("doi", "", "")
	cmd.Flags().String("source", "", "")
	for k, v := range flags {
		if err := cmd.Flags().Set(k, v); err != nil {
			t.Fatal(err)
		}
	}
	return cmd
}

func TestInputFromFlags(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "paper.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		flags   map[string]string
		args    []string
		wantPDF string
		wantURL string
		wantDOI string
		wantErr bool
	}{
		{
			name:    "explicit pdf flag",
			flags:   map[string]string{"pdf": pdfPath},
			wantPDF: pdfPath,
		},
		{
			name:    "explicit url flag",
			flags:   map[string]string{"url": "https://arxiv.org/pdf/2301.12345.pdf"},
			wantURL: "https://arxiv.org/pdf/2301.12345.pdf",
		},
		{
			name:    "explicit doi flag",
			flags:   map[string]string{"doi": "10.1234/abc"},
			wantDOI: "10.1234/abc",
		},
		{
			name:    "bare url argument",
			args:    []string{"https://example.org/p.pdf"},
			wantURL: "https://example.org/p.pdf",
		},
		{
			name:    "bare path argument",
			args:    []string{pdfPath},
			wantPDF: pdfPath,
		},
		{
			name:    "bare doi argument",
			args:    []string{"10.48550/arXiv.2301.12345"},
			wantDOI: "10.48550/arXiv.2301.12345",
		},
		{
			name:    "no input",
			wantErr: true,
		},
		{
			name:    "two flags",
			flags:   map[string]string{"pdf": pdfPath, "doi": "10.1234/abc"},
			wantErr: true,
		},
		{
			name:    "flag and argument",
			flags:   map[string]string{"doi": "10.1234/abc"},
			args:    []string{pdfPath},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newProcessFlags(t, tt.flags)
			got, err := inputFromFlags(cmd, tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("inputFromFlags() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("inputFromFlags() error = %v", err)
			}
			if got.PDFPath != tt.wantPDF || got.URL != tt.wantURL || got.DOI != tt.wantDOI {
				t.Errorf("inputFromFlags() = %+v", got)
			}
		})
	}
}
