package navkit

import (
	"bytes"
	"errors"
	"net/url"
	"path"
	"strings"
)

// parsePattern splits a path template into its parts.  After parsing,
// each element of the returned pattern is either a static string or a
// placeholder starting with ":".
func parsePattern(p string) (pattern, error) {
	ret := make(pattern, 0, 2)
	p = path.Clean("/" + p)

	lastWasSlash := false
	inParam := false
	startIdx := 0

	for i := range p {

		c := p[i]

		if c == '/' {
			if inParam {
				ret = append(ret, p[startIdx:i])
				inParam = false
				startIdx = i
				continue
			}
			lastWasSlash = true
			continue
		}

		if lastWasSlash && c == ':' {
			ret = append(ret, p[startIdx:i])
			inParam = true
			startIdx = i
			continue
		}

	}

	if startIdx < len(p) {
		ret = append(ret, p[startIdx:])
	}

	return ret, nil
}

// pattern is a parsed path template, split at placeholder boundaries.
type pattern []string

// placeholderNames returns the placeholder names without the preceding
// colon, i.e. the template "/somewhere/:p1/:p2" returns ["p1","p2"].
func (pt pattern) placeholderNames() []string {
	var ret []string
	for _, p := range pt {
		if strings.HasPrefix(p, ":") {
			ret = append(ret, p[1:])
		}
	}
	return ret
}

// String returns the re-assembled path template.
func (pt pattern) String() string {
	return strings.Join(pt, "")
}

var errMissingParam = errors.New("missing param")

// build interpolates the given values into the placeholders and returns
// the constructed path.  A missing value causes errMissingParam to be
// returned, with the placeholder(s) replaced by "_" in the output.
// The leftover values are those not consumed by a placeholder.
func (pt pattern) build(v url.Values) (outPath string, leftover url.Values, reterr error) {

	if len(v) > 0 {
		leftover = make(url.Values, len(v))
		for k, val := range v {
			leftover[k] = val
		}
	}

	var buf bytes.Buffer
	buf.Grow(64)

	for _, p := range pt {
		if strings.HasPrefix(p, ":") {
			pname := p[1:]
			vlist := v[pname]
			if len(vlist) == 0 { // empty value is fine, absent value is not
				reterr = errMissingParam
				buf.WriteString("_")
				continue
			}
			buf.WriteString(vlist[0])
			leftover.Del(pname)
			continue
		}
		buf.WriteString(p)
	}

	if len(leftover) == 0 {
		leftover = nil
	}

	return buf.String(), leftover, reterr
}

// match compares the pattern to the path provided and returns the
// placeholder values plus ok true if it matched.  If !exact the path
// matched but has additional segments after the pattern.
func (pt pattern) match(p string) (paramValues url.Values, exact, ok bool) {

	prest := path.Clean("/" + p)

	readParam := func(pin string) (pr, pv string) {
		for i := range pin {
			if pin[i] == '/' {
				return pin[i:], pin[:i]
			}
		}
		// no slash means the entire input is the value
		return "", pin
	}

	for _, part := range pt {

		if strings.HasPrefix(part, ":") {
			pname := part[1:]
			var pval string
			prest, pval = readParam(prest)
			if paramValues == nil {
				paramValues = make(url.Values, 2)
			}
			paramValues.Set(pname, pval)
			continue
		}

		if !strings.HasPrefix(prest, part) {
			return nil, false, false
		}
		prest = prest[len(part):]
	}

	exact = prest == ""

	ok = true
	return
}
