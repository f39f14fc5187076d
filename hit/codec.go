package hit

import (
	"strconv"
	"strings"
)

// Format renders h as its verbose textual form, or its compact form
// (same payload, no field names, no parenthesised keys) when compact is
// true. The Readout section is omitted entirely when h has no readout
// entries yet, since Parse treats a missing trailing section and an
// empty one identically.
func (h Hit) Format(compact bool) string {
	var b strings.Builder

	if compact {
		b.WriteString(strconv.Itoa(h.EventIndex))
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(h.Timestamp))
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(h.DeadTimeEnd))
		b.WriteByte(' ')
		b.WriteString(formatFloat(h.Charge))
	} else {
		b.WriteString("Event ")
		b.WriteString(strconv.Itoa(h.EventIndex))
		b.WriteString(" Timestamp ")
		b.WriteString(strconv.Itoa(h.Timestamp))
		b.WriteString(" DeadTimeEnd ")
		b.WriteString(strconv.Itoa(h.DeadTimeEnd))
		b.WriteString(" Charge ")
		b.WriteString(formatFloat(h.Charge))
	}

	b.WriteString(" ; ")
	if !compact {
		b.WriteString("Address: ")
	}
	writeFields(&b, h.Address, compact)

	if h.Readout.Len() > 0 {
		b.WriteString(" ; ")
		if !compact {
			b.WriteString("Readout: ")
		}
		writeFields(&b, h.Readout, compact)
	}

	return b.String()
}

func writeFields(b *strings.Builder, f Fields, compact bool) {
	first := true
	f.Range(func(name string, value int) bool {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		if compact {
			b.WriteString(name)
		} else {
			b.WriteByte('(')
			b.WriteString(name)
			b.WriteByte(')')
		}
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(value))
		return true
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Parse parses the verbose textual form produced by Format(false). A
// malformed line yields Invalid(): parse∘format is the identity only on
// valid, well-formed input.
func Parse(line string) Hit {
	return parse(line, false)
}

// ParseCompact parses the compact textual form produced by Format(true).
func ParseCompact(line string) Hit {
	return parse(line, true)
}

func parse(line string, compact bool) Hit {
	fail := Invalid()

	toks := strings.Fields(strings.TrimSpace(line))
	i := 0
	next := func() (string, bool) {
		if i >= len(toks) {
			return "", false
		}
		t := toks[i]
		i++
		return t, true
	}

	h := Invalid()

	if !compact {
		if t, ok := next(); !ok || t != "Event" {
			return fail
		}
	}
	ev, ok := nextInt(next)
	if !ok {
		return fail
	}
	h.EventIndex = ev

	if !compact {
		if t, ok := next(); !ok || t != "Timestamp" {
			return fail
		}
	}
	ts, ok := nextInt(next)
	if !ok {
		return fail
	}
	h.Timestamp = ts

	if !compact {
		if t, ok := next(); !ok || t != "DeadTimeEnd" {
			return fail
		}
	}
	dte, ok := nextInt(next)
	if !ok {
		return fail
	}
	h.DeadTimeEnd = dte

	if !compact {
		if t, ok := next(); !ok || t != "Charge" {
			return fail
		}
	}
	charge, ok := nextFloat(next)
	if !ok {
		return fail
	}
	h.Charge = charge
	h.AvailableFrom = h.Timestamp

	if t, ok := next(); !ok || t != ";" {
		return fail
	}

	if !compact {
		if t, ok := next(); !ok || t != "Address:" {
			return fail
		}
	}

	sawTrailingSemicolon := false
	for {
		t, ok := next()
		if !ok {
			break // end of input: no readout section follows.
		}
		if t == ";" {
			sawTrailingSemicolon = true
			break
		}

		var name string
		if compact {
			name = t
		} else {
			if len(t) < 2 || t[0] != '(' || t[len(t)-1] != ')' {
				return fail
			}
			name = t[1 : len(t)-1]
		}
		v, ok := nextInt(next)
		if !ok {
			return fail
		}
		h.AddAddress(name, v)
	}

	if h.Address.Len() == 0 {
		return fail
	}

	if !sawTrailingSemicolon {
		return h
	}

	if !compact {
		if t, ok := next(); !ok || t != "Readout:" {
			return fail
		}
	}

	for {
		t, ok := next()
		if !ok {
			break
		}

		var name string
		if compact {
			name = t
		} else {
			if len(t) < 2 || t[0] != '(' || t[len(t)-1] != ')' {
				return fail
			}
			name = t[1 : len(t)-1]
		}
		v, ok := nextInt(next)
		if !ok {
			return fail
		}
		h.AddReadout(name, v)
	}

	return h
}

func nextInt(next func() (string, bool)) (int, bool) {
	t, ok := next()
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(t)
	if err != nil {
		return 0, false
	}
	return v, true
}

func nextFloat(next func() (string, bool)) (float64, bool) {
	t, ok := next()
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
