// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
//
// The formatter renders stored international numbers ("+16365551234") for
// display ("+1 636-555-1234") and masks raw keystrokes while a user types.
// None of its operations fail: unknown calling codes and malformed input
// degrade to a generic rendering or are passed through unchanged.
package phone

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DigitPlaceholder marks a digit slot in a CountryFormat pattern.
const DigitPlaceholder = '#'

const (
	fallbackPattern     = "##########"
	fallbackPlaceholder = "Phone number"
	// E.164 allows at most 15 significant digits.
	fallbackMaxDigits = 15

	genericPattern    = "###-###-####"
	genericMinDigits  = 10
	maxCallingCodeLen = 3
)

var (
	tableCodePattern  = regexp.MustCompile(`^\+\d{1,3}$`)
	genericCodeSplit  = regexp.MustCompile(`(?s)^(\+\d{1,4})(.*)$`)
	defaultFormatter  = New(DefaultTable())
	defaultTableItems = []CountryFormat{
		{Code: "+1", Pattern: "###-###-####", Placeholder: "123-456-7890", MaxDigits: 10},
		{Code: "+44", Pattern: "#### ######", Placeholder: "7911 123456", MaxDigits: 10},
		{Code: "+33", Pattern: "# ## ## ## ##", Placeholder: "6 12 34 56 78", MaxDigits: 9},
		{Code: "+49", Pattern: "### ########", Placeholder: "151 23456789", MaxDigits: 11},
		{Code: "+81", Pattern: "##-####-####", Placeholder: "90-1234-5678", MaxDigits: 10},
		{Code: "+86", Pattern: "### #### ####", Placeholder: "138 1234 5678", MaxDigits: 11},
		{Code: "+91", Pattern: "##### #####", Placeholder: "98765 43210", MaxDigits: 10},
		{Code: "+61", Pattern: "### ### ###", Placeholder: "412 345 678", MaxDigits: 9},
		{Code: "+55", Pattern: "(##) #####-####", Placeholder: "(11) 98765-4321", MaxDigits: 11},
		{Code: "+52", Pattern: "## #### ####", Placeholder: "55 1234 5678", MaxDigits: 10},
	}
)

// CountryFormat describes how numbers behind one calling code are grouped.
type CountryFormat struct {
	Code        string `json:"code"`
	Pattern     string `json:"pattern"`
	Placeholder string `json:"placeholder"`
	MaxDigits   int    `json:"maxDigits"`
}

// Table is an immutable set of country formats keyed by calling code.
// The zero value is an empty table.
type Table struct {
	formats map[string]CountryFormat
	// codes sorted longest first so prefix matching picks the most specific code.
	byLength []string
}

// NewTable builds a table from the given formats. Codes must be "+" followed
// by one to three digits and must be unique.
func NewTable(formats ...CountryFormat) (Table, error) {
	t := Table{
		formats:  make(map[string]CountryFormat, len(formats)),
		byLength: make([]string, 0, len(formats)),
	}
	for _, f := range formats {
		if !tableCodePattern.MatchString(f.Code) {
			return Table{}, fmt.Errorf("phone: invalid calling code %q", f.Code)
		}
		if _, dup := t.formats[f.Code]; dup {
			return Table{}, fmt.Errorf("phone: duplicate calling code %q", f.Code)
		}
		if f.Pattern == "" {
			return Table{}, fmt.Errorf("phone: empty pattern for %s", f.Code)
		}
		if f.MaxDigits <= 0 {
			return Table{}, fmt.Errorf("phone: maxDigits must be positive for %s", f.Code)
		}
		t.formats[f.Code] = f
		t.byLength = append(t.byLength, f.Code)
	}
	sort.Slice(t.byLength, func(i, j int) bool {
		if len(t.byLength[i]) != len(t.byLength[j]) {
			return len(t.byLength[i]) > len(t.byLength[j])
		}
		return t.byLength[i] < t.byLength[j]
	})
	return t, nil
}

// MustNewTable is like NewTable but panics on an invalid definition.
// Use it only for compiled-in tables.
func MustNewTable(formats ...CountryFormat) Table {
	t, err := NewTable(formats...)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTable returns the built-in table covering North America, the UK,
// France, Germany, Japan, China, India, Australia, Brazil and Mexico.
func DefaultTable() Table {
	return MustNewTable(defaultTableItems...)
}

// Get returns the format registered for code.
func (t Table) Get(code string) (CountryFormat, bool) {
	f, ok := t.formats[code]
	return f, ok
}

// Len returns the number of registered formats.
func (t Table) Len() int {
	return len(t.formats)
}

// Formats returns a copy of all formats ordered by calling code.
func (t Table) Formats() []CountryFormat {
	out := make([]CountryFormat, 0, len(t.formats))
	for _, f := range t.formats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return callingCodeLess(out[i].Code, out[j].Code)
	})
	return out
}

// longestPrefix returns the longest registered code that prefixes phone.
func (t Table) longestPrefix(phone string) (string, bool) {
	for _, code := range t.byLength {
		if strings.HasPrefix(phone, code) {
			return code, true
		}
	}
	return "", false
}

// CallingCodeResolver reports whether a numeric calling code is assigned.
type CallingCodeResolver func(code int) bool

// Option configures a Formatter.
type Option func(*Formatter)

// WithCallingCodeResolver replaces the registry consulted when no table code
// prefixes a number. Passing nil disables the lookup so splitting falls back
// straight to the generic one-to-four digit rule.
func WithCallingCodeResolver(fn CallingCodeResolver) Option {
	return func(f *Formatter) {
		f.assigned = fn
	}
}

// Formatter formats phone strings against an injected table. It holds no
// mutable state and is safe for concurrent use.
type Formatter struct {
	table    Table
	assigned CallingCodeResolver
}

// New creates a formatter over table. By default calling codes outside the
// table are recognised through the ITU assignments known to libphonenumber,
// so "+79161234567" splits as "+7" rather than the greedy "+7916". Pass
// WithCallingCodeResolver(nil) for the plain greedy split.
func New(table Table, opts ...Option) *Formatter {
	f := &Formatter{table: table, assigned: isAssignedCallingCode}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Default returns the formatter backed by DefaultTable.
func Default() *Formatter {
	return defaultFormatter
}

// Table returns the formatter's table.
func (f *Formatter) Table() Table {
	return f.table
}

// LookupFormat returns the table entry for callingCode, or a generic format
// carrying callingCode when the table has no entry.
func (f *Formatter) LookupFormat(callingCode string) CountryFormat {
	if cf, ok := f.table.Get(callingCode); ok {
		return cf
	}
	return CountryFormat{
		Code:        callingCode,
		Pattern:     fallbackPattern,
		Placeholder: fallbackPlaceholder,
		MaxDigits:   fallbackMaxDigits,
	}
}

// SplitCallingCode separates a "+"-prefixed number into its calling code and
// the remainder. Table codes win by longest prefix, then ITU-assigned codes,
// then a generic "+" plus one to four digits. ok is false when none apply.
func (f *Formatter) SplitCallingCode(phone string) (code, rest string, ok bool) {
	if !strings.HasPrefix(phone, "+") {
		return "", "", false
	}
	if code, found := f.table.longestPrefix(phone); found {
		return code, phone[len(code):], true
	}
	if f.assigned != nil {
		for n := 1; n <= maxCallingCodeLen && n < len(phone); n++ {
			candidate := phone[1 : 1+n]
			if !isDigits(candidate) {
				break
			}
			value, err := strconv.Atoi(candidate)
			if err != nil {
				break
			}
			if f.assigned(value) {
				return phone[:1+n], phone[1+n:], true
			}
		}
	}
	m := genericCodeSplit.FindStringSubmatch(phone)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// FormatForDisplay renders a stored number as "<code> <grouped digits>".
// Empty input yields "", and input without a leading "+" is returned as is.
func (f *Formatter) FormatForDisplay(phone string) string {
	if phone == "" {
		return ""
	}
	if !strings.HasPrefix(phone, "+") {
		return phone
	}

	code, rest, ok := f.SplitCallingCode(phone)
	if !ok {
		return phone
	}
	digits := StripToDigits(rest)

	var body string
	if cf, known := f.table.Get(code); known {
		body = applyPattern(cf.Pattern, digits, false)
	} else if len(digits) >= genericMinDigits {
		body = applyPattern(genericPattern, digits[:genericMinDigits], false)
	} else {
		body = digits
	}

	// An empty body still keeps the separating space.
	return code + " " + body
}

// FormatNullableForDisplay is FormatForDisplay for optional values.
func (f *Formatter) FormatNullableForDisplay(phone *string) string {
	if phone == nil {
		return ""
	}
	return f.FormatForDisplay(*phone)
}

// FormatForInput masks the current contents of an input field for the
// selected calling code. Digits beyond the country's maximum are dropped and
// separators never precede the first digit. The calling code itself is not
// part of the result. Unknown codes leave rawValue untouched.
func (f *Formatter) FormatForInput(rawValue, callingCode string) string {
	cf, ok := f.table.Get(callingCode)
	if !ok {
		return rawValue
	}

	digits := StripToDigits(rawValue)
	if len(digits) > cf.MaxDigits {
		digits = digits[:cf.MaxDigits]
	}
	return applyPattern(cf.Pattern, digits, true)
}

// ComposeStored joins a calling code with the digits of input, producing the
// stored form. It returns "" when input holds no digits.
func (f *Formatter) ComposeStored(callingCode, input string) string {
	digits := StripToDigits(input)
	if digits == "" {
		return ""
	}
	return callingCode + digits
}

// Canonicalize rewrites a "+"-prefixed value that carries separators into
// stored form. Values it cannot split are returned unchanged.
func (f *Formatter) Canonicalize(phone string) string {
	code, rest, ok := f.SplitCallingCode(strings.TrimSpace(phone))
	if !ok {
		return phone
	}
	return code + StripToDigits(rest)
}

// StripToDigits removes every character that is not an ASCII digit.
func StripToDigits(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for i := 0; i < len(phone); i++ {
		if c := phone[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// applyPattern walks pattern, placing digits into placeholder slots. Literals
// are only written while digits remain. With skipLeading set, literals before
// the first placed digit are skipped as well.
func applyPattern(pattern, digits string, skipLeading bool) string {
	var b strings.Builder
	b.Grow(len(pattern))
	next := 0
	for _, r := range pattern {
		if next >= len(digits) {
			break
		}
		if r == DigitPlaceholder {
			b.WriteByte(digits[next])
			next++
			continue
		}
		if skipLeading && next == 0 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isAssignedCallingCode(code int) bool {
	return phonenumbers.GetRegionCodeForCountryCode(code) != phonenumbers.UNKNOWN_REGION
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func callingCodeLess(a, b string) bool {
	ai, aErr := strconv.Atoi(strings.TrimPrefix(a, "+"))
	bi, bErr := strconv.Atoi(strings.TrimPrefix(b, "+"))
	if aErr != nil || bErr != nil || ai == bi {
		return a < b
	}
	return ai < bi
}

// Package-level helpers backed by the default table.

// LookupFormat calls Default().LookupFormat.
func LookupFormat(callingCode string) CountryFormat {
	return defaultFormatter.LookupFormat(callingCode)
}

// FormatForDisplay calls Default().FormatForDisplay.
func FormatForDisplay(phone string) string {
	return defaultFormatter.FormatForDisplay(phone)
}

// FormatNullableForDisplay calls Default().FormatNullableForDisplay.
func FormatNullableForDisplay(phone *string) string {
	return defaultFormatter.FormatNullableForDisplay(phone)
}

// FormatForInput calls Default().FormatForInput.
func FormatForInput(rawValue, callingCode string) string {
	return defaultFormatter.FormatForInput(rawValue, callingCode)
}

// ComposeStored calls Default().ComposeStored.
func ComposeStored(callingCode, input string) string {
	return defaultFormatter.ComposeStored(callingCode, input)
}
