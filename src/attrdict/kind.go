package attrdict

//go:generate go tool stringer -type=Kind -output=kind_string.go

// Kind tags the closed set of values a Record field can hold.
type Kind int

const (
	KindMissing Kind = iota // field is not present
	KindScalar
	KindRecord
	KindSequence
	KindReference
)
