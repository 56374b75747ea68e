package validator

import "testing"

type callingCodeInput struct {
	Code string `validate:"required,callingcode"`
}

func TestCallingCodeRule(t *testing.T) {
	val := New()

	valid := []string{"+1", "+44", "+998", "+1264"}
	for _, code := range valid {
		if err := val.Struct(callingCodeInput{Code: code}); err != nil {
			t.Fatalf("expected %q to be valid: %v", code, err)
		}
	}

	invalid := []string{"1", "+", "+12345", "+4a", " +44"}
	for _, code := range invalid {
		err := val.Struct(callingCodeInput{Code: code})
		if err == nil {
			t.Fatalf("expected %q to be rejected", code)
		}
		fields := FieldErrors(err)
		if fields["Code"] != CallingCodeTag {
			t.Fatalf("expected callingcode failure for %q, got %v", code, fields)
		}
	}
}

func TestVarUsesCustomRule(t *testing.T) {
	val := New()
	if err := val.Var("+33", CallingCodeTag); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := val.Var("33", CallingCodeTag); err == nil {
		t.Fatalf("expected error")
	}
}
