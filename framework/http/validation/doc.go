// Package validation checks request input against pipe-separated rule
// strings and collects per-field failure messages.
//
//	v := validation.Make(map[string]string{
//	    "name":  body.Name,
//	    "email": body.Email,
//	}, validation.Rules{
//	    "name":  "required|min:2|max:100",
//	    "email": "required|email",
//	})
//
//	if v.Fails() {
//	    res.ValidationError(v.Errors()) // 422 {"errors": {"field": ["msg"]}}
//	    return
//	}
//
// Rules for a field run left to right and stop at the first failure.
// Every rule except required treats an empty value as a pass, so a rule
// string like "email" validates the format of an optional field while
// "required|email" also rejects absence.
//
// Available rules:
//
//	required            non-empty after trimming
//	min:n / max:n       length bounds in runes
//	between:lo,hi       length range in runes
//	numeric / integer   parseable as float64 / int
//	boolean             true/false/1/0/yes/no, case-insensitive
//	email               RFC 5322 address
//	url                 http:// or https:// prefix
//	in:a,b,c            member of the list
//	alpha_num           letters and digits only
//	regex:pattern       matches the pattern
//	same:other          equals the other field
//	different:other     differs from the other field
//	gt/gte/lt/lte:n     numeric comparison against n
//
// An unknown rule name records a failure for its field, so typos surface
// during development instead of silently passing.
package validation
