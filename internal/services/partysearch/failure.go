package partysearchsvc

import "fmt"

// FailureKind tags why an operation did not succeed.
type FailureKind int

const (
	FailureUnspecified FailureKind = iota
	FailureInvalidPayload
	FailureInvalidCampaign
	FailureInvalidContinent
	FailureInvalidRegion
	FailureInvalidMap
	FailureInvalidDistrict
	FailureInvalidEntries
	FailureInvalidPartySize
	FailureInvalidPartyMaxSize
	FailureInvalidNpcs
	FailureEntriesNotFound
	FailureUnavailable
)

var failureNames = map[FailureKind]string{
	FailureUnspecified:         "Unspecified",
	FailureInvalidPayload:      "InvalidPayload",
	FailureInvalidCampaign:     "InvalidCampaign",
	FailureInvalidContinent:    "InvalidContinent",
	FailureInvalidRegion:       "InvalidRegion",
	FailureInvalidMap:          "InvalidMap",
	FailureInvalidDistrict:     "InvalidDistrict",
	FailureInvalidEntries:      "InvalidEntries",
	FailureInvalidPartySize:    "InvalidPartySize",
	FailureInvalidPartyMaxSize: "InvalidPartyMaxSize",
	FailureInvalidNpcs:         "InvalidNpcs",
	FailureEntriesNotFound:     "EntriesNotFound",
	FailureUnavailable:         "Unavailable",
}

func (k FailureKind) String() string {
	if s, ok := failureNames[k]; ok {
		return s
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

// Invalid reports whether k is a caller input problem.
func (k FailureKind) Invalid() bool {
	return k >= FailureInvalidPayload && k <= FailureInvalidNpcs
}

// Failure is the tagged error returned by the service. Use errors.As and
// switch on Kind.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return f.Kind.String()
	}
	return f.Kind.String() + ": " + f.Message
}

func fail(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
