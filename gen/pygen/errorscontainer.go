package pygen

// errorsContainerSrc is spliced into parse.py: the bounded parse-error
// collector threaded through every generated parse function (§4.6,
// §7). Ported from mapry/py/generate/parse.py's
// _DEFINE_ERROR_AND_ERRORS.
const errorsContainerSrc = `
class Error:
    """represents an error occurred while parsing."""

    def __init__(self, ref: str, message: str) -> None:
        """
        initializes the error with the given values.

        :param ref: references the cause (e.g., a reference path)
        :param message: describes the error
        """
        self.ref = ref
        self.message = message


class Errors:
    """
    collects errors capped at a certain quantity.

    If the capacity is full, the subsequent surplus errors are ignored.
    """

    def __init__(self, cap: int) -> None:
        """
        initializes the error container with the given cap.

        :param cap: maximum number of contained errors
        """
        self.cap = cap
        self._values = []  # type: typing.List[Error]

    def add(self, ref: str, message: str) -> None:
        """adds an error to the container."""
        if len(self._values) < self.cap:
            self._values.append(Error(ref=ref, message=message))

    def full(self) -> bool:
        """gives True when there are exactly cap errors contained."""
        return len(self._values) == self.cap

    def empty(self) -> bool:
        """gives True when there are no errors contained."""
        return len(self._values) == 0

    def values(self) -> typing.Iterable[Error]:
        """gives an iterator over the errors."""
        return iter(self._values)
`
