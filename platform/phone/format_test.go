package phone

import (
	"strings"
	"testing"
)

func TestFormatForDisplay(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"no plus passes through", "5551234567", "5551234567"},
		{"us stored form", "+16365551234", "+1 636-555-1234"},
		{"already formatted", "+1 (636) 555-1234", "+1 636-555-1234"},
		{"partial number drops trailing separators", "+1636", "+1 636"},
		{"partial number inside group", "+163655", "+1 636-55"},
		{"code only keeps trailing space", "+1", "+1 "},
		{"extra digits beyond pattern are dropped", "+16365551234999", "+1 636-555-1234"},
		{"uk", "+447911123456", "+44 7911 123456"},
		{"france", "+33612345678", "+33 6 12 34 56 78"},
		{"brazil leading literal", "+5511987654321", "+55 (11) 98765-4321"},
		{"japan", "+819012345678", "+81 90-1234-5678"},
		{"itu code outside table", "+79161234567", "+7 916-123-4567"},
		{"three digit itu code", "+998901234567", "+998 901234567"},
		{"unassigned code short body", "+9995551234567", "+9995 551234567"},
		{"unassigned code generic grouping", "+99955512345678", "+9995 551-234-5678"},
		{"no digits after plus", "+abc", "+abc"},
		{"bare plus", "+", "+"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatForDisplay(tc.input)
			if got != tc.want {
				t.Fatalf("FormatForDisplay(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFormatNullableForDisplay(t *testing.T) {
	if got := FormatNullableForDisplay(nil); got != "" {
		t.Fatalf("expected empty string for nil, got %q", got)
	}
	empty := ""
	if got := FormatNullableForDisplay(&empty); got != "" {
		t.Fatalf("expected empty string for empty value, got %q", got)
	}
	stored := "+16365551234"
	if got := FormatNullableForDisplay(&stored); got != "+1 636-555-1234" {
		t.Fatalf("unexpected display %q", got)
	}
}

func TestFormatForDisplayRoundTripForEveryDefaultCode(t *testing.T) {
	const source = "98765432109876543"
	for _, cf := range DefaultTable().Formats() {
		digits := source[:cf.MaxDigits]
		got := FormatForDisplay(cf.Code + digits)

		if !strings.HasPrefix(got, cf.Code+" ") {
			t.Fatalf("%s: display %q does not start with calling code", cf.Code, got)
		}
		body := strings.TrimPrefix(got, cf.Code+" ")
		if back := StripToDigits(body); back != digits {
			t.Fatalf("%s: stripped display %q, want %q", cf.Code, back, digits)
		}
		if len(body) != len(cf.Pattern) {
			t.Fatalf("%s: body %q does not fill pattern %q", cf.Code, body, cf.Pattern)
		}
	}
}

func TestDefaultTablePatternsMatchMaxDigits(t *testing.T) {
	table := DefaultTable()
	if table.Len() != 10 {
		t.Fatalf("expected 10 default formats, got %d", table.Len())
	}
	for _, cf := range table.Formats() {
		slots := strings.Count(cf.Pattern, string(DigitPlaceholder))
		if slots != cf.MaxDigits {
			t.Fatalf("%s: pattern has %d slots, maxDigits %d", cf.Code, slots, cf.MaxDigits)
		}
		got, ok := table.Get(cf.Code)
		if !ok || got.Code != cf.Code {
			t.Fatalf("%s: table key does not match entry code", cf.Code)
		}
		if StripToDigits(cf.Placeholder) == "" {
			t.Fatalf("%s: placeholder %q has no digits", cf.Code, cf.Placeholder)
		}
	}
}

func TestUnknownCallingCodesKeepTheirPrefix(t *testing.T) {
	for _, code := range []string{"+7", "+380", "+998", "+9999"} {
		if got := LookupFormat(code); got.Code != code {
			t.Fatalf("LookupFormat(%q).Code = %q", code, got.Code)
		}
		display := FormatForDisplay(code + "5551234567")
		if !strings.HasPrefix(display, code+" ") {
			t.Fatalf("FormatForDisplay(%q) = %q, want prefix %q", code+"5551234567", display, code+" ")
		}
	}
}

func TestLookupFormat(t *testing.T) {
	uk := LookupFormat("+44")
	if uk.Pattern != "#### ######" || uk.MaxDigits != 10 || uk.Placeholder != "7911 123456" {
		t.Fatalf("unexpected +44 format: %+v", uk)
	}

	fallback := LookupFormat("+999")
	want := CountryFormat{Code: "+999", Pattern: "##########", Placeholder: "Phone number", MaxDigits: 15}
	if fallback != want {
		t.Fatalf("fallback = %+v, want %+v", fallback, want)
	}

	if got := LookupFormat(""); got.Code != "" || got.MaxDigits != 15 {
		t.Fatalf("empty code fallback = %+v", got)
	}
}

func TestFormatForInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		code string
		want string
	}{
		{"empty", "", "+1", ""},
		{"single digit", "1", "+1", "1"},
		{"group boundary has no dangling separator", "636", "+1", "636"},
		{"separator after first group", "6365", "+1", "636-5"},
		{"reformats previous output", "636-555-1234", "+1", "636-555-1234"},
		{"caps at max digits", "123456789012345", "+1", "123-456-7890"},
		{"ignores letters", "6a3b6", "+1", "636"},
		{"no leading literal", "11", "+55", "11"},
		{"literal after first digits", "119", "+55", "11) 9"},
		{"france", "612345678", "+33", "6 12 34 56 78"},
		{"unknown code passes through", "12-34 x", "+999", "12-34 x"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatForInput(tc.raw, tc.code)
			if got != tc.want {
				t.Fatalf("FormatForInput(%q, %q) = %q, want %q", tc.raw, tc.code, got, tc.want)
			}
		})
	}
}

func TestFormatForInputNeverExceedsMaxDigits(t *testing.T) {
	got := FormatForInput("987654321098765", "+1")
	if n := len(StripToDigits(got)); n != 10 {
		t.Fatalf("expected 10 digits, got %d in %q", n, got)
	}
}

func TestFormatForInputTypingSequence(t *testing.T) {
	value := ""
	for _, key := range "6365551234" {
		value = FormatForInput(value+string(key), "+1")
		if value != "" && (value[0] < '0' || value[0] > '9') {
			t.Fatalf("value %q starts with a separator", value)
		}
	}
	if value != "636-555-1234" {
		t.Fatalf("final value = %q, want %q", value, "636-555-1234")
	}

	// Deleting the last digit removes the dangling separator too.
	value = FormatForInput(value[:len(value)-4], "+1")
	if value != "636-555" {
		t.Fatalf("after deleting a group got %q", value)
	}
}

func TestStripToDigits(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"+1 (636) 555-1234": "16365551234",
		"abc":               "",
		"٣٤٥":               "",
		"12 34":             "1234",
	}
	for in, want := range cases {
		got := StripToDigits(in)
		if got != want {
			t.Fatalf("StripToDigits(%q) = %q, want %q", in, got, want)
		}
		if again := StripToDigits(got); again != got {
			t.Fatalf("StripToDigits is not idempotent for %q: %q then %q", in, got, again)
		}
	}
}

func TestComposeStored(t *testing.T) {
	if got := ComposeStored("+1", "636-555-1234"); got != "+16365551234" {
		t.Fatalf("unexpected stored form %q", got)
	}
	if got := ComposeStored("+44", " - "); got != "" {
		t.Fatalf("expected empty stored form for digit-free input, got %q", got)
	}
}

func TestCanonicalize(t *testing.T) {
	cases := map[string]string{
		"+1 636-555-1234":     "+16365551234",
		"+55 (11) 98765-4321": "+5511987654321",
		"+16365551234":        "+16365551234",
		"636-555-1234":        "636-555-1234",
	}
	f := Default()
	for in, want := range cases {
		if got := f.Canonicalize(in); got != want {
			t.Fatalf("Canonicalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLongestPrefixWins(t *testing.T) {
	table, err := NewTable(
		CountryFormat{Code: "+1", Pattern: "###-###-####", Placeholder: "123-456-7890", MaxDigits: 10},
		CountryFormat{Code: "+12", Pattern: "## ## ## ##", Placeholder: "12 34 56 78", MaxDigits: 8},
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	f := New(table, WithCallingCodeResolver(nil))

	code, rest, ok := f.SplitCallingCode("+12345678901")
	if !ok || code != "+12" || rest != "345678901" {
		t.Fatalf("SplitCallingCode = (%q, %q, %v)", code, rest, ok)
	}
	if got := f.FormatForDisplay("+12345678901"); got != "+12 34 56 78 90" {
		t.Fatalf("display = %q", got)
	}
	if got := f.FormatForDisplay("+13345678901"); got != "+1 334-567-8901" {
		t.Fatalf("display = %q", got)
	}
}

func TestFormatterWithoutResolverUsesGenericSplit(t *testing.T) {
	f := New(DefaultTable(), WithCallingCodeResolver(nil))
	if got := f.FormatForDisplay("+79161234567"); got != "+7916 1234567" {
		t.Fatalf("display = %q", got)
	}
}

func TestNewTableRejectsInvalidDefinitions(t *testing.T) {
	cases := []struct {
		name string
		cf   []CountryFormat
	}{
		{"missing plus", []CountryFormat{{Code: "44", Pattern: "#", MaxDigits: 1}}},
		{"too many digits", []CountryFormat{{Code: "+1234", Pattern: "#", MaxDigits: 1}}},
		{"empty pattern", []CountryFormat{{Code: "+44", MaxDigits: 1}}},
		{"zero max digits", []CountryFormat{{Code: "+44", Pattern: "#"}}},
		{"duplicate", []CountryFormat{
			{Code: "+44", Pattern: "#", MaxDigits: 1},
			{Code: "+44", Pattern: "##", MaxDigits: 2},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewTable(tc.cf...); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestEmptyTableDegradesGracefully(t *testing.T) {
	f := New(Table{}, WithCallingCodeResolver(nil))
	if got := f.FormatForInput("636", "+1"); got != "636" {
		t.Fatalf("input = %q", got)
	}
	if got := f.FormatForDisplay("+16365551234"); got != "+1636 5551234" {
		t.Fatalf("display = %q", got)
	}
	if got := f.Table().Len(); got != 0 {
		t.Fatalf("expected empty table, got %d", got)
	}
}

func TestFormatsAreSortedNumerically(t *testing.T) {
	formats := DefaultTable().Formats()
	want := []string{"+1", "+33", "+44", "+49", "+52", "+55", "+61", "+81", "+86", "+91"}
	if len(formats) != len(want) {
		t.Fatalf("got %d formats", len(formats))
	}
	for i, cf := range formats {
		if cf.Code != want[i] {
			t.Fatalf("formats[%d] = %s, want %s", i, cf.Code, want[i])
		}
	}
}
