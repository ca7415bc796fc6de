package domain

// SubjectType differentiates callers of the HTTP tool API.
type SubjectType string

const (
	SubjectTypeAgent    SubjectType = "AGENT"
	SubjectTypeOperator SubjectType = "OPERATOR"
)
