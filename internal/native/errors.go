package native

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrorMessageSize is the size of the inline message buffer in the engine's
// error record.
const ErrorMessageSize = 200

// ErrorInfo is the error record every fallible export fills on failure: a
// NUL-terminated UTF-8 message stored inline.
type ErrorInfo struct {
	Message [ErrorMessageSize]byte
}

// Text returns the message up to the first NUL. A multi-byte sequence cut
// off by the buffer end is dropped and invalid bytes are replaced.
func (i *ErrorInfo) Text() string {
	s := i.Message[:]
	if n := bytes.IndexByte(s, 0); n >= 0 {
		s = s[:n]
	}
	s = trimPartialRune(s)
	return strings.ToValidUTF8(string(s), "�")
}

// Set stores msg, truncated on a rune boundary to leave room for the NUL.
func (i *ErrorInfo) Set(msg string) {
	limit := ErrorMessageSize - 1
	if len(msg) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	n := copy(i.Message[:], msg)
	i.Message[n] = 0
}

func trimPartialRune(s []byte) []byte {
	if len(s) == 0 {
		return s
	}
	start := len(s) - 1
	for start > 0 && len(s)-start < utf8.UTFMax && !utf8.RuneStart(s[start]) {
		start--
	}
	if !utf8.FullRune(s[start:]) {
		return s[:start]
	}
	return s
}

// Code is the status code returned by the engine's exports.
type Code int32

const (
	CodeOK               Code = 0
	CodeInvalidArgument  Code = 1
	CodeInvalidHandle    Code = 2
	CodeInvalidPixelType Code = 3
	CodeIndexOutOfRange  Code = 4
	CodeUnspecified      Code = 50
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeInvalidArgument:
		return "invalid argument"
	case CodeInvalidHandle:
		return "invalid handle"
	case CodeInvalidPixelType:
		return "invalid pixel type"
	case CodeIndexOutOfRange:
		return "index out of range"
	case CodeUnspecified:
		return "unspecified error"
	default:
		return fmt.Sprintf("code %d", int32(c))
	}
}

// Error is a failure reported by the engine.
type Error struct {
	Op      string
	Code    Code
	Message string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.String()
	} else {
		msg = msg + " (" + e.Code.String() + ")"
	}
	if e.Op == "" {
		return "imgdoc2: " + msg
	}
	return "imgdoc2: " + e.Op + ": " + msg
}

// Is matches another *Error with the same code that carries no op or
// message, so the code sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Code == e.Code
}

// Code sentinels for errors.Is.
var (
	ErrInvalidArgument  = &Error{Code: CodeInvalidArgument}
	ErrInvalidHandle    = &Error{Code: CodeInvalidHandle}
	ErrInvalidPixelType = &Error{Code: CodeInvalidPixelType}
	ErrIndexOutOfRange  = &Error{Code: CodeIndexOutOfRange}
	ErrUnspecified      = &Error{Code: CodeUnspecified}
)

// Initialization errors.
var (
	ErrNotOperational  = errors.New("imgdoc2: native library not operational")
	ErrLibraryNotFound = errors.New("imgdoc2: native library not found")
	ErrMissingExport   = errors.New("imgdoc2: native library is missing exports")
)

// Check converts a status code and its error record into an error. The
// record is only read when code is non-zero.
func Check(op string, code int32, info *ErrorInfo) error {
	if code == int32(CodeOK) {
		return nil
	}
	e := &Error{Op: op, Code: Code(code)}
	if info != nil {
		e.Message = info.Text()
	}
	return e
}
