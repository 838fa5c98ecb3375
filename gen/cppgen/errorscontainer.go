package cppgen

// errorsHeaderSrc declares the bounded parse-error collector threaded
// through every generated parse function (§4.6, §7), inside its own
// "parse" namespace so it never collides with the graph's own types.
//
// Ported from mapry/cpp/generate/parse_header.py's _parse_definitions.
const errorsHeaderSrc = `namespace parse {

// represents an error occurred while parsing.
struct Error {
    // references the cause (e.g., a reference path).
    const std::string ref;

    // describes the error.
    const std::string message;

    Error(const std::string& a_ref, const std::string& a_message) :
        ref(a_ref), message(a_message) {
        // intentionally empty
    }
};

// collects errors capped at a certain quantity.
//
// If the capacity is full, the subsequent surplus errors are ignored.
class Errors {
public:
    explicit Errors(size_t cap) : cap_(cap) {
        errors_.reserve(cap);
    }

    // adds an error with the given ref and message.
    void add(const std::string& ref, const std::string& message);

    // \return true if the capacity of the errors has been reached.
    bool full() const;

    // \return true if there are no errors.
    bool empty() const;

    // \return errors observed so far.
    const std::vector<Error>& get() const;

private:
    const size_t cap_;
    std::vector<Error> errors_;
};

}  // namespace parse`

// errorsImplSrc implements the Errors methods declared in errorsHeaderSrc.
//
// Ported from mapry/cpp/generate/parse_impl.py's _parse_errors.
const errorsImplSrc = `namespace parse {

void Errors::add(const std::string& ref, const std::string& message) {
    if (errors_.size() < cap_) {
        errors_.emplace_back(ref, message);
    }
}

bool Errors::full() const {
    return errors_.size() == cap_;
}

bool Errors::empty() const {
    return errors_.empty();
}

const std::vector<Error>& Errors::get() const {
    return errors_;
}

}  // namespace parse`
