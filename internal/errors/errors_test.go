package errors

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeBindFailed)
	if err.Code != "E001" {
		t.Errorf("Code = %q, want E001", err.Code)
	}
	if err.Category != CategoryTransport {
		t.Errorf("Category = %q, want transport", err.Category)
	}
	if err.Suggestion == "" {
		t.Error("registered error should carry a suggestion")
	}
}

func TestNew_UnknownCode(t *testing.T) {
	err := New("E999")
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want cli", err.Category)
	}
	if !strings.Contains(err.Message, "E999") {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestCLIError_ErrorAndUnwrap(t *testing.T) {
	err := New(CodeDialFailed).Wrap(io.EOF)

	if got := err.Error(); got != "E003: Could not connect to the receiver: EOF" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, io.EOF) {
		t.Error("errors.Is should see the wrapped error")
	}
	if !Is(err, CodeDialFailed) {
		t.Error("Is() should match the code")
	}
	if Is(io.EOF, CodeDialFailed) {
		t.Error("Is() matched a plain error")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeUnknownCodec).WithDetail("codec \"xml\" is not supported")
	out := err.Format()

	for _, want := range []string{"ERROR E011: Unknown wire codec", "codec \"xml\" is not supported", "Hint: Use \"tagged\" or \"json\""} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() emitted colors while disabled")
	}

	if got := err.FormatCompact(); got != "E011: Unknown wire codec" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, io.ErrUnexpectedEOF)
	if !strings.Contains(buf.String(), "ERROR: unexpected EOF") {
		t.Errorf("PrintError(plain) = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, Newf(CategoryCLI, "bad %s", "input"))
	if !strings.Contains(buf.String(), "ERROR: bad input") {
		t.Errorf("PrintError(CLIError) = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q longer than 20", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestGetAllCodesSorted(t *testing.T) {
	codes := GetAllCodes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	if _, ok := GetTemplate(CodeBadFrame); !ok {
		t.Error("GetTemplate(E020) not found")
	}
}
