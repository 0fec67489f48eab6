package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ── Rules ────────────────────────────────────────────────────────────────────

// Rules maps a field name to a pipe-separated rule string. A rule takes an
// optional parameter after a colon.
//
//	validation.Rules{
//	    "name":  "required|min:2|max:100",
//	    "email": "required|email",
//	    "age":   "required|integer|gte:18",
//	}
type Rules map[string]string

// input is what a rule sees: the field under test, its raw value, the
// rule parameter, and the full data map for cross-field rules.
type input struct {
	field string
	value string
	param string
	data  map[string]string
}

// ruleFunc checks one rule against one field. An empty return means the
// rule passed; anything else is the failure message.
type ruleFunc func(in input) string

// ── Errors ───────────────────────────────────────────────────────────────────

// Errors collects failure messages per field. It marshals to the envelope
// the response helpers send with a 422:
//
//	{"errors": {"email": ["the email field must be a valid email address"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has reports whether any field failed.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first message recorded for field, or "".
func (e *Errors) First(field string) string {
	if msgs := e.Bag[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// ── Validator ────────────────────────────────────────────────────────────────

// Validator checks a flat map of input values against a rule set. Rules
// for a field stop at its first failure; fields are independent of each
// other. Every rule except required passes on an empty value, so optional
// fields only need their format rules — absence is rejected by required
// alone.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
	ran    bool
}

// Make builds a Validator for data against rules. Validation runs on the
// first call to Fails or Passes.
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{data: data, rules: rules, errors: &Errors{}}
}

// Fails reports whether any rule failed.
func (v *Validator) Fails() bool {
	v.run()
	return v.errors.Has()
}

// Passes reports whether every rule passed.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the error bag. Empty until validation has run.
func (v *Validator) Errors() *Errors { return v.errors }

func (v *Validator) run() {
	if v.ran {
		return
	}
	v.ran = true

	for field, spec := range v.rules {
		value := v.data[field]
		for _, raw := range strings.Split(spec, "|") {
			name, param, _ := strings.Cut(strings.TrimSpace(raw), ":")
			if name == "" {
				continue
			}
			fn, ok := rules[name]
			if !ok {
				v.errors.add(field, fmt.Sprintf("unknown validation rule %q", name))
				break
			}
			if name != "required" && strings.TrimSpace(value) == "" {
				continue
			}
			if msg := fn(input{field: field, value: value, param: param, data: v.data}); msg != "" {
				v.errors.add(field, msg)
				break
			}
		}
	}
}

// ── Rule table ───────────────────────────────────────────────────────────────

var rules = map[string]ruleFunc{
	"required": func(in input) string {
		if strings.TrimSpace(in.value) == "" {
			return fmt.Sprintf("the %s field is required", in.field)
		}
		return ""
	},

	"min": func(in input) string {
		n, _ := strconv.Atoi(in.param)
		if utf8.RuneCountInString(in.value) < n {
			return fmt.Sprintf("the %s field must be at least %d characters", in.field, n)
		}
		return ""
	},

	"max": func(in input) string {
		n, _ := strconv.Atoi(in.param)
		if utf8.RuneCountInString(in.value) > n {
			return fmt.Sprintf("the %s field may not be longer than %d characters", in.field, n)
		}
		return ""
	},

	"between": func(in input) string {
		lo, hi, ok := strings.Cut(in.param, ",")
		if !ok {
			return fmt.Sprintf("the between rule on %s needs a min,max parameter", in.field)
		}
		minLen, _ := strconv.Atoi(strings.TrimSpace(lo))
		maxLen, _ := strconv.Atoi(strings.TrimSpace(hi))
		if l := utf8.RuneCountInString(in.value); l < minLen || l > maxLen {
			return fmt.Sprintf("the %s field must be between %d and %d characters", in.field, minLen, maxLen)
		}
		return ""
	},

	"numeric": func(in input) string {
		if _, err := strconv.ParseFloat(in.value, 64); err != nil {
			return fmt.Sprintf("the %s field must be a number", in.field)
		}
		return ""
	},

	"integer": func(in input) string {
		if _, err := strconv.Atoi(in.value); err != nil {
			return fmt.Sprintf("the %s field must be an integer", in.field)
		}
		return ""
	},

	"boolean": func(in input) string {
		switch strings.ToLower(in.value) {
		case "true", "false", "1", "0", "yes", "no":
			return ""
		}
		return fmt.Sprintf("the %s field must be true or false", in.field)
	},

	"email": func(in input) string {
		if _, err := mail.ParseAddress(in.value); err != nil {
			return fmt.Sprintf("the %s field must be a valid email address", in.field)
		}
		return ""
	},

	"url": func(in input) string {
		if !strings.HasPrefix(in.value, "http://") && !strings.HasPrefix(in.value, "https://") {
			return fmt.Sprintf("the %s field must be a valid URL", in.field)
		}
		return ""
	},

	"in": func(in input) string {
		for _, allowed := range strings.Split(in.param, ",") {
			if strings.TrimSpace(allowed) == in.value {
				return ""
			}
		}
		return fmt.Sprintf("the selected %s is invalid", in.field)
	},

	"alpha_num": func(in input) string {
		if !alphaNum.MatchString(in.value) {
			return fmt.Sprintf("the %s field may only contain letters and numbers", in.field)
		}
		return ""
	},

	"regex": func(in input) string {
		re, err := regexp.Compile(in.param)
		if err != nil || !re.MatchString(in.value) {
			return fmt.Sprintf("the %s field format is invalid", in.field)
		}
		return ""
	},

	"same": func(in input) string {
		if in.data[in.param] != in.value {
			return fmt.Sprintf("the %s field must match %s", in.field, in.param)
		}
		return ""
	},

	"different": func(in input) string {
		if in.data[in.param] == in.value {
			return fmt.Sprintf("the %s field must differ from %s", in.field, in.param)
		}
		return ""
	},

	"gt":  compare("gt", "must be greater than", func(v, p float64) bool { return v > p }),
	"gte": compare("gte", "must be at least", func(v, p float64) bool { return v >= p }),
	"lt":  compare("lt", "must be less than", func(v, p float64) bool { return v < p }),
	"lte": compare("lte", "must be at most", func(v, p float64) bool { return v <= p }),
}

var alphaNum = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// compare builds the numeric comparison rules. A non-numeric value fails
// the comparison rather than the numeric rule, so callers get a message
// naming the bound they asked for.
func compare(name, phrase string, ok func(value, param float64) bool) ruleFunc {
	return func(in input) string {
		value, err := strconv.ParseFloat(in.value, 64)
		param, perr := strconv.ParseFloat(in.param, 64)
		if err != nil || perr != nil || !ok(value, param) {
			return fmt.Sprintf("the %s field %s %s", in.field, phrase, in.param)
		}
		return ""
	}
}
