package openai

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/askledger/askledger/internal/domain"
)

func TestSystemPrompt_CapsVendorList(t *testing.T) {
	vendors := make([]string, 12)
	for i := range vendors {
		vendors[i] = fmt.Sprintf("Vendor%d", i)
	}

	prompt := systemPrompt(vendors)
	if !strings.Contains(prompt, "Vendor9") {
		t.Error("tenth vendor should be listed")
	}
	if strings.Contains(prompt, "Vendor10") {
		t.Error("eleventh vendor should be cut")
	}
}

func TestSystemPrompt_NoVendors(t *testing.T) {
	prompt := systemPrompt(nil)
	if strings.Contains(prompt, "Known vendors") {
		t.Error("vendor context should be absent without vendors")
	}
	for _, action := range []string{"count_invoices", "sum_total", "list_invoices", "get_summary", "find_overdue"} {
		if !strings.Contains(prompt, action) {
			t.Errorf("prompt missing action %s", action)
		}
	}
}

func TestParseAPIError_WrapsSentinel(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}
	err := parseAPIError(apiErr)

	if !errors.Is(err, domain.ErrClassifierFailure) {
		t.Fatalf("err = %v, want wrapped ErrClassifierFailure", err)
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("error lost detail: %v", err)
	}
}

func TestParseAPIError_RequestErrorDetail(t *testing.T) {
	reqErr := &openai.RequestError{
		HTTPStatusCode: 400,
		Body:           []byte(`{"detail": "bad model"}`),
	}
	err := parseAPIError(reqErr)

	if !errors.Is(err, domain.ErrClassifierFailure) {
		t.Fatalf("err = %v, want wrapped ErrClassifierFailure", err)
	}
	if !strings.Contains(err.Error(), "bad model") {
		t.Errorf("detail not extracted: %v", err)
	}
}

func TestParseAPIError_Unknown(t *testing.T) {
	err := parseAPIError(errors.New("dial tcp: connection refused"))
	if !errors.Is(err, domain.ErrClassifierFailure) {
		t.Fatalf("err = %v, want wrapped ErrClassifierFailure", err)
	}
}
