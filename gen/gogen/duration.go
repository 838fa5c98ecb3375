package gogen

// durationHelperSrc is spliced, verbatim, into a target package's
// generated output whenever the graph needs the Duration value type
// (§6.3). It is plain generated-code text, not a shared runtime
// dependency: every target embeds its own copy so the generated package
// has no import on this module.
//
// Ported from mapry/go/generate/fromjsonable.py's _duration_from_string().
const durationHelperSrc = `
var durationRe = regexp.MustCompile(
	` + "`" + `^(-)?P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?` +
	`(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$` + "`" + `)

// durationFromString parses an ISO-8601 duration into a time.Duration
// with nanosecond precision. It rejects fractional-second precision
// finer than a nanosecond and combined intervals that overflow the
// signed 64-bit nanosecond range.
func durationFromString(text string) (time.Duration, error) {
	match := durationRe.FindStringSubmatch(text)
	if match == nil {
		return 0, fmt.Errorf("expected an ISO-8601 duration, but got: %s", text)
	}

	negative := match[1] == "-"

	var total time.Duration

	var err error

	total, err = addDuration(total, match[2], 365*24*time.Hour)
	if err != nil {
		return 0, err
	}

	total, err = addDuration(total, match[3], 30*24*time.Hour)
	if err != nil {
		return 0, err
	}

	total, err = addDuration(total, match[4], 24*time.Hour)
	if err != nil {
		return 0, err
	}

	total, err = addDuration(total, match[5], time.Hour)
	if err != nil {
		return 0, err
	}

	total, err = addDuration(total, match[6], time.Minute)
	if err != nil {
		return 0, err
	}

	if match[7] != "" {
		seconds, err := strconv.ParseFloat(match[7], 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number of seconds, but got: %s", match[7])
		}

		nanos := seconds * float64(time.Second)
		if nanos != float64(int64(nanos)) {
			return 0, fmt.Errorf(
				"expected fractional seconds representable in nanoseconds, but got: %s", match[7])
		}

		total, err = addDurationNanos(total, int64(nanos))
		if err != nil {
			return 0, err
		}
	}

	if negative {
		total = -total
	}

	return total, nil
}

// addDuration parses digits as a count of units and adds it to total,
// reporting an error on arithmetic overflow of the signed 64-bit
// nanosecond range.
func addDuration(total time.Duration, digits string, unit time.Duration) (time.Duration, error) {
	if digits == "" {
		return total, nil
	}

	count, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected an integer, but got: %s", digits)
	}

	return addDurationNanos(total, count*int64(unit))
}

func addDurationNanos(total time.Duration, delta int64) (time.Duration, error) {
	sum := int64(total) + delta
	if (delta > 0 && sum < int64(total)) || (delta < 0 && sum > int64(total)) {
		return 0, fmt.Errorf("duration overflows the 64-bit nanosecond range")
	}

	return time.Duration(sum), nil
}

// durationToString renders d in the compact ISO-8601 form mapry uses on
// the wire: only non-zero components are emitted, fractional seconds are
// trimmed of trailing zeros, and a zero duration renders as "PT0S".
func durationToString(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}

	negative := d < 0
	if negative {
		d = -d
	}

	hours := d / time.Hour
	d -= hours * time.Hour

	minutes := d / time.Minute
	d -= minutes * time.Minute

	seconds := float64(d) / float64(time.Second)

	var b strings.Builder

	if negative {
		b.WriteByte('-')
	}

	b.WriteByte('P')
	b.WriteByte('T')

	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}

	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}

	if seconds > 0 || (hours == 0 && minutes == 0) {
		s := strconv.FormatFloat(seconds, 'f', -1, 64)
		fmt.Fprintf(&b, "%sS", s)
	}

	return b.String()
}
`
