package pygen

// durationHelperSrc is spliced into the generated parse module whenever
// the schema uses Duration: a regex-driven ISO-8601 duration parser and
// its serializer, both operating on datetime.timedelta. Ported from
// mapry/py/generate/fromjsonable.py's _duration_from_string and
// mapry/py/generate/tojsonable.py's _duration_to_string.
const durationHelperSrc = `
_DURATION_RE = re.compile(
    r'^(?P<sign>\+|-)?P'
    r'((?P<years>(0|[1-9][0-9]*)(\.[0-9]+)?)Y)?'
    r'((?P<months>(0|[1-9][0-9]*)(\.[0-9]+)?)M)?'
    r'((?P<weeks>(0|[1-9][0-9]*)(\.[0-9]+)?)W)?'
    r'((?P<days>(0|[1-9][0-9]*)(\.[0-9]+)?)D)?'
    r'(T'
    r'((?P<hours>(0|[1-9][0-9]*)(\.[0-9]+)?)H)?'
    r'((?P<minutes>(0|[1-9][0-9]*)(\.[0-9]+)?)M)?'
    r'(((?P<seconds>0|[1-9][0-9]*)(\.(?P<fraction>[0-9]+))?)S)?'
    r')?$')


def _duration_from_string(text):
    # type: (str) -> datetime.timedelta
    """
    parses the duration from the string in ISO 8601 format.

    Years are counted as 365.2425 days, months as 30.436875 days and
    weeks as 7 days, following the C++ chrono convention.
    """
    match = _DURATION_RE.match(text)
    if not match:
        raise ValueError('Failed to match the duration: {!r}'.format(text))

    sign_grp = match.group('sign')
    sign = -1 if sign_grp == '-' else 1

    years = float(match.group('years')) if match.group('years') else 0.0
    months = float(match.group('months')) if match.group('months') else 0.0
    weeks = float(match.group('weeks')) if match.group('weeks') else 0.0
    days = float(match.group('days')) if match.group('days') else 0.0
    hours = float(match.group('hours')) if match.group('hours') else 0.0
    minutes = float(match.group('minutes')) if match.group('minutes') else 0.0
    seconds = int(match.group('seconds')) if match.group('seconds') else 0

    fraction_grp = match.group('fraction')
    if not fraction_grp:
        microseconds = 0
    elif len(fraction_grp) > 6:
        raise ValueError(
            'Precision only up to microseconds supported, but got: {}'.format(
                text))
    else:
        stripped = fraction_grp.lstrip('0')
        if stripped:
            microseconds = int(stripped) * (10 ** (6 - len(fraction_grp)))
        else:
            microseconds = 0

    try:
        return sign * datetime.timedelta(
            days=years * 365.2425 + months * 30.436875 + weeks * 7 + days,
            seconds=seconds,
            minutes=minutes,
            hours=hours,
            microseconds=microseconds)
    except OverflowError as err:
        raise OverflowError(
            'Creating a timedelta overflowed from: {!r}'.format(text)) from err


_ZERO_TIMEDELTA = datetime.timedelta(0)


def _duration_to_string(duration):
    # type: (datetime.timedelta) -> str
    """
    serializes the duration to a string in ISO 8601 format.

    Since datetime.timedelta only stores days, seconds and microseconds,
    the serialized representation never carries years, months or weeks.
    """
    parts = []

    absduration = duration
    if duration < _ZERO_TIMEDELTA:
        parts.append('-')
        absduration = -duration

    parts.append('P')
    if absduration.days > 0:
        parts.append('{}D'.format(absduration.days))

    if absduration.seconds > 0 or absduration.microseconds > 0:
        parts.append('T')

        rest = absduration.seconds
        hours = rest // 3600
        rest = rest % 3600
        minutes = rest // 60
        seconds = rest % 60

        if hours > 0:
            parts.append('{}H'.format(hours))

        if minutes > 0:
            parts.append('{}M'.format(minutes))

        if absduration.microseconds > 0:
            microseconds_str = '{:06}'.format(
                absduration.microseconds).rstrip('0')
            parts.append('{}.{}S'.format(seconds, microseconds_str))
        elif seconds > 0:
            parts.append('{}S'.format(seconds))

    return ''.join(parts)
`
