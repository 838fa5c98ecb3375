package cppgen

// durationHelperSrc is spliced, verbatim, into the generated jsoncpp.cpp
// whenever the graph needs the Duration value type (§6.3): an
// overflow-checked ISO-8601 duration codec operating on
// std::chrono::nanoseconds, using the same signed-64-bit accumulation
// strategy as the Go target's durationFromString/durationToString.
//
// Ported from mapry/cpp/generate/jsoncpp_impl.py's
// _duration_from_string()/_duration_to_string(), with the fractional
// year/month handling (365.2425/30.436875-day averages via
// add_rep_double) dropped in favor of the simpler whole-unit regex the
// Go and Python targets already use.
const durationHelperSrc = `
const std::regex kDurationRe(
    R"(^(-)?P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?)"
    R"((?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$)");

// adds delta nanoseconds to total, throwing std::overflow_error on
// arithmetic overflow of the signed 64-bit nanosecond range.
std::chrono::nanoseconds add_duration_nanos(
        std::chrono::nanoseconds total, int64_t delta) {
    const int64_t sum = total.count() + delta;
    if ((delta > 0 && sum < total.count()) ||
            (delta < 0 && sum > total.count())) {
        throw std::overflow_error("duration overflows the 64-bit nanosecond range");
    }

    return std::chrono::nanoseconds(sum);
}

// parses digits as a count of unit-sized nanosecond intervals and adds
// it to total.
std::chrono::nanoseconds add_duration(
        std::chrono::nanoseconds total, const std::string& digits,
        std::chrono::nanoseconds unit) {
    if (digits.empty()) {
        return total;
    }

    const int64_t count = std::stoll(digits);

    return add_duration_nanos(total, count * unit.count());
}

/**
 * parses the duration from an ISO-8601 string with nanosecond precision.
 *
 * @param[in] s string to parse
 * @param[out] error error message, if any
 * @return parsed duration
 */
std::chrono::nanoseconds duration_from_string(
        const std::string& s, std::string* error) {
    std::smatch match;
    if (!std::regex_match(s, match, kDurationRe)) {
        *error = "expected an ISO-8601 duration, but got: " + s;
        return std::chrono::nanoseconds();
    }

    const bool negative = match[1] == "-";

    std::chrono::nanoseconds total(0);

    try {
        total = add_duration(total, match[2], std::chrono::hours(24 * 365));
        total = add_duration(total, match[3], std::chrono::hours(24 * 30));
        total = add_duration(total, match[4], std::chrono::hours(24));
        total = add_duration(total, match[5], std::chrono::hours(1));
        total = add_duration(total, match[6], std::chrono::minutes(1));

        if (match[7].length() > 0) {
            const double seconds = std::stod(match[7]);
            const double nanos = seconds * 1e9;
            if (nanos != static_cast<double>(static_cast<int64_t>(nanos))) {
                *error = "expected fractional seconds representable in "
                    "nanoseconds, but got: " + match[7].str();
                return std::chrono::nanoseconds();
            }

            total = add_duration_nanos(total, static_cast<int64_t>(nanos));
        }
    } catch (const std::overflow_error& e) {
        *error = e.what();
        return std::chrono::nanoseconds();
    }

    if (negative) {
        total = -total;
    }

    return total;
}

/**
 * serializes the duration to an ISO-8601 string, trimmed of trailing
 * zero components; a zero duration renders as "PT0S".
 *
 * @param[in] d duration to be serialized
 * @return duration as string
 */
std::string duration_to_string(const std::chrono::nanoseconds& d) {
    if (d.count() == 0) {
        return "PT0S";
    }

    const bool negative = d.count() < 0;
    const int64_t abscount = negative ? -d.count() : d.count();

    const int64_t ns_per_hour = 3600LL * 1000LL * 1000LL * 1000LL;
    const int64_t ns_per_minute = 60LL * 1000LL * 1000LL * 1000LL;

    const int64_t hours = abscount / ns_per_hour;
    int64_t rest = abscount % ns_per_hour;

    const int64_t minutes = rest / ns_per_minute;
    rest = rest % ns_per_minute;

    const double seconds = static_cast<double>(rest) / 1e9;

    std::stringstream ss;
    if (negative) {
        ss << "-";
    }

    ss << "PT";

    if (hours > 0) {
        ss << hours << "H";
    }

    if (minutes > 0) {
        ss << minutes << "M";
    }

    if (seconds > 0 || (hours == 0 && minutes == 0)) {
        std::ostringstream secstream;
        secstream << std::defaultfloat << seconds;
        ss << secstream.str() << "S";
    }

    return ss.str();
}
`
