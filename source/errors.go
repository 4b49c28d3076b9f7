package source

import "errors"

// ErrBaseURLRequired indicates a client was configured without an API root.
var ErrBaseURLRequired = errors.New("base URL is required")

// ErrDecodeResponse indicates a response body that is not the expected JSON.
var ErrDecodeResponse = errors.New("failed to decode response")

// ErrUnknownSource indicates a source name with no registered connector.
var ErrUnknownSource = errors.New("unknown source")

// ErrLookupUnsupported indicates an identity kind no connector can serve.
var ErrLookupUnsupported = errors.New("unsupported lookup kind")
