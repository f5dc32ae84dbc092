// Package types defines core data types and enums for lowher.
package types

// SpanCategory classifies a protected span found in the source text.
// The category determines precedence when spans overlap.
type SpanCategory int

const (
	SpanCodeBlock SpanCategory = iota // fenced ``` block, may span newlines
	SpanInlineCode                    // single-backtick span, single line
	SpanAcronym                       // 2+ consecutive uppercase letters
	SpanCapitalizedWord               // [A-Z][a-z]+ word
	SpanNamedEntity                   // person/organization/place token
	SpanUppercaseToken                // fully uppercase token
)

// String returns the string representation of SpanCategory
func (c SpanCategory) String() string {
	switch c {
	case SpanCodeBlock:
		return "CodeBlock"
	case SpanInlineCode:
		return "InlineCode"
	case SpanAcronym:
		return "Acronym"
	case SpanCapitalizedWord:
		return "CapitalizedWord"
	case SpanNamedEntity:
		return "NamedEntity"
	case SpanUppercaseToken:
		return "UppercaseToken"
	default:
		return "Unknown"
	}
}

// Rank returns the overlap precedence of the category (lower wins).
// Code spans always win over word-level spans, so a capitalized word
// inside a code block is never protected separately.
func (c SpanCategory) Rank() int {
	switch c {
	case SpanCodeBlock:
		return 0
	case SpanInlineCode:
		return 1
	case SpanAcronym:
		return 2
	case SpanCapitalizedWord:
		return 3
	default:
		return 4
	}
}

// Span is a protected substring of the input, recorded as an explicit
// byte interval against the immutable original text. Start and End are
// byte offsets (End is one past the last byte).
type Span struct {
	Category SpanCategory
	Start    int
	End      int
	Text     string
}

// MappingEntry associates one placeholder with exactly one captured
// span instance.
type MappingEntry struct {
	Placeholder string
	Original    string
}

// Mapping is the ordered placeholder table for one transform call.
// Insertion order is the order spans were discovered in the source.
type Mapping []MappingEntry

// TokenCategory classifies a token produced by a Tagger.
type TokenCategory int

const (
	TokenWord TokenCategory = iota // ordinary prose word
	TokenPerson
	TokenOrganization
	TokenLocation
	TokenUppercase // fully uppercase token (acronym-like)
	TokenNumber
	TokenPunct
)

// String returns the string representation of TokenCategory
func (c TokenCategory) String() string {
	switch c {
	case TokenWord:
		return "Word"
	case TokenPerson:
		return "Person"
	case TokenOrganization:
		return "Organization"
	case TokenLocation:
		return "Location"
	case TokenUppercase:
		return "Uppercase"
	case TokenNumber:
		return "Number"
	case TokenPunct:
		return "Punct"
	default:
		return "Unknown"
	}
}

// Protected reports whether tokens of this category keep their case.
func (c TokenCategory) Protected() bool {
	switch c {
	case TokenPerson, TokenOrganization, TokenLocation, TokenUppercase:
		return true
	default:
		return false
	}
}

// Token is one unit of tagged text. Text holds the token itself and
// Whitespace the exact run of whitespace that followed it in the
// source, so that concatenating Text+Whitespace over all tokens
// reproduces the tagged string byte for byte.
type Token struct {
	Text       string
	Whitespace string
	Category   TokenCategory
}

// TransformResult holds the outcome of one transform call.
type TransformResult struct {
	OriginalText    string
	TransformedText string
	SpanCount       int
	TokenCount      int
	Warnings        []string
}

// Mode selects how case decisions are made.
type Mode string

const (
	// ModeRegex protects capitalized words and acronyms by surface
	// pattern and lowercases the rest in one blind pass.
	ModeRegex Mode = "regex"
	// ModeEntity decides per token using a tagger; named entities and
	// uppercase tokens keep their case.
	ModeEntity Mode = "entity"
)

// TaggerKind selects the token classification backend for entity mode.
type TaggerKind string

const (
	TaggerRule TaggerKind = "rule"
	TaggerONNX TaggerKind = "onnx"
	TaggerLLM  TaggerKind = "llm"
)

// ErrorCode identifies an error category across the application.
type ErrorCode string

const (
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrIO           ErrorCode = "IO_ERROR"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrModel        ErrorCode = "MODEL_ERROR"
	ErrAPICall      ErrorCode = "API_CALL_ERROR"
	ErrNetwork      ErrorCode = "NETWORK_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error carrying a machine-readable code.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
