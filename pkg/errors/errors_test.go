package errors

import (
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrorTypeDirectory, "cannot create directory")
	if !strings.Contains(err.Error(), "directory error") {
		t.Errorf("Unexpected message: %s", err.Error())
	}
	if strings.Contains(err.Error(), "status") {
		t.Error("Errors without a code should not mention a status")
	}

	coded := NewWithCode(ErrorTypePageFetch, 404, "page not found")
	if !strings.Contains(coded.Error(), "status 404") {
		t.Errorf("Expected status in message, got: %s", coded.Error())
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(ErrorTypeElementFetch) {
		t.Error("Element fetch failures must not abort the run")
	}
	for _, fatal := range []ErrorType{
		ErrorTypePageFetch,
		ErrorTypeDirectory,
		ErrorTypeParsing,
		ErrorTypeInvalidInput,
		ErrorTypeUnknown,
	} {
		if !IsFatal(fatal) {
			t.Errorf("Expected %s to be fatal", fatal)
		}
	}
}
