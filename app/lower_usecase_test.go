package app

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/tmpl-lang/tmplc/domain"
)

// Mocks

type mockLowerService struct {
	resp    *domain.LowerResponse
	err     error
	lastReq domain.LowerRequest
}

func (m *mockLowerService) Lower(ctx context.Context, req domain.LowerRequest) (*domain.LowerResponse, error) {
	m.lastReq = req
	return m.resp, m.err
}

type mockFileReader struct {
	files []string
	err   error
}

func (m *mockFileReader) CollectUnitFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	return m.files, m.err
}
func (m *mockFileReader) ReadFile(path string) ([]byte, error)  { return nil, nil }
func (m *mockFileReader) IsValidUnitFile(path string) bool      { return true }
func (m *mockFileReader) FileExists(path string) (bool, error)  { return true, nil }

type mockLowerFormatter struct {
	called     bool
	lastFormat domain.OutputFormat
}

func (m *mockLowerFormatter) Write(resp *domain.LowerResponse, format domain.OutputFormat, w io.Writer) error {
	m.called = true
	m.lastFormat = format
	if w != nil {
		_, _ = w.Write([]byte("ok"))
	}
	return nil
}

type mockReportWriter struct {
	called   bool
	lastPath string
}

func (m *mockReportWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, writeFunc func(io.Writer) error) error {
	m.called = true
	m.lastPath = outputPath
	var buf bytes.Buffer
	return writeFunc(&buf)
}

func validLowerRequest() domain.LowerRequest {
	req := domain.DefaultLowerRequest()
	req.Paths = []string{"units"}
	req.OutputWriter = &bytes.Buffer{}
	return req
}

func TestLowerUseCase_Execute(t *testing.T) {
	service := &mockLowerService{resp: &domain.LowerResponse{}}
	formatter := &mockLowerFormatter{}
	writer := &mockReportWriter{}

	uc, err := NewLowerUseCaseBuilder().
		WithService(service).
		WithFileReader(&mockFileReader{files: []string{"a.tmplu"}}).
		WithFormatter(formatter).
		WithOutputWriter(writer).
		Build()
	if err != nil {
		t.Fatalf("build usecase: %v", err)
	}

	if err := uc.Execute(context.Background(), validLowerRequest()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !formatter.called || !writer.called {
		t.Fatal("expected formatter and report writer to be called")
	}
	if len(service.lastReq.Paths) != 1 || service.lastReq.Paths[0] != "a.tmplu" {
		t.Fatalf("the service must receive the collected files, got %v", service.lastReq.Paths)
	}
}

func TestLowerUseCase_NoUnitFilesFound(t *testing.T) {
	uc, err := NewLowerUseCaseBuilder().
		WithService(&mockLowerService{resp: &domain.LowerResponse{}}).
		WithFileReader(&mockFileReader{}).
		WithFormatter(&mockLowerFormatter{}).
		WithOutputWriter(&mockReportWriter{}).
		Build()
	if err != nil {
		t.Fatalf("build usecase: %v", err)
	}

	if err := uc.Execute(context.Background(), validLowerRequest()); err == nil {
		t.Fatal("expected an error when no unit files are found")
	}
}

func TestLowerUseCase_ValidatesRequest(t *testing.T) {
	uc, err := NewLowerUseCaseBuilder().
		WithService(&mockLowerService{resp: &domain.LowerResponse{}}).
		WithFileReader(&mockFileReader{files: []string{"a.tmplu"}}).
		WithFormatter(&mockLowerFormatter{}).
		WithOutputWriter(&mockReportWriter{}).
		Build()
	if err != nil {
		t.Fatalf("build usecase: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*domain.LowerRequest)
	}{
		{"no paths", func(r *domain.LowerRequest) { r.Paths = nil }},
		{"no output", func(r *domain.LowerRequest) { r.OutputWriter = nil }},
		{"no prefix", func(r *domain.LowerRequest) { r.NamePrefix = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validLowerRequest()
			tt.mutate(&req)
			if err := uc.Execute(context.Background(), req); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestLowerUseCaseBuilder_MissingDependencies(t *testing.T) {
	if _, err := NewLowerUseCaseBuilder().Build(); err == nil {
		t.Fatal("expected an error for missing dependencies")
	}
	if _, err := NewLowerUseCaseBuilder().WithService(&mockLowerService{}).Build(); err == nil {
		t.Fatal("expected an error when only the service is configured")
	}
}
