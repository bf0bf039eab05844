package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/tmpl-lang/tmplc/domain"
)

type mockLinkService struct {
	resp *domain.LinkResponse
	err  error
}

func (m *mockLinkService) Link(ctx context.Context, req domain.LinkRequest) (*domain.LinkResponse, error) {
	return m.resp, m.err
}

type mockLinkFormatter struct{ called bool }

func (m *mockLinkFormatter) Write(resp *domain.LinkResponse, format domain.OutputFormat, w io.Writer) error {
	m.called = true
	return nil
}

func TestLinkUseCase_Execute(t *testing.T) {
	formatter := &mockLinkFormatter{}
	uc, err := NewLinkUseCaseBuilder().
		WithService(&mockLinkService{resp: &domain.LinkResponse{MainUnit: "main"}}).
		WithFileReader(&mockFileReader{files: []string{"main.tmplu", "lib.tmplu"}}).
		WithFormatter(formatter).
		WithOutputWriter(&mockReportWriter{}).
		Build()
	if err != nil {
		t.Fatalf("build usecase: %v", err)
	}

	req := domain.DefaultLinkRequest()
	req.Paths = []string{"units"}
	req.OutputWriter = &bytes.Buffer{}
	if err := uc.Execute(context.Background(), req); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !formatter.called {
		t.Fatal("expected the formatter to be called")
	}
}

func TestLinkUseCase_ServiceErrorPassesThroughUnwrapped(t *testing.T) {
	conflict := domain.NewLinkConflictError("linking failed", nil)
	uc, err := NewLinkUseCaseBuilder().
		WithService(&mockLinkService{err: conflict}).
		WithFileReader(&mockFileReader{files: []string{"a.tmplu", "b.tmplu"}}).
		WithFormatter(&mockLinkFormatter{}).
		WithOutputWriter(&mockReportWriter{}).
		Build()
	if err != nil {
		t.Fatalf("build usecase: %v", err)
	}

	req := domain.DefaultLinkRequest()
	req.Paths = []string{"units"}
	req.OutputWriter = &bytes.Buffer{}

	got := uc.Execute(context.Background(), req)
	var derr domain.DomainError
	if !errors.As(got, &derr) || derr.Code != domain.ErrCodeLinkConflict {
		t.Fatalf("the conflict code must survive to the caller, got %v", got)
	}
}
