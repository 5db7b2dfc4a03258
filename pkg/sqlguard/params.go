package sqlguard

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionFinding describes an injection pattern detected in a parameter
// value supplied alongside a parameterized query.
type InjectionFinding struct {
	ParamName   string
	Fingerprint string
}

// CheckParameter runs the libinjection heuristic over one parameter value.
// Only string values are checked; numbers and booleans cannot carry an
// injection payload. Returns nil when the value is clean.
//
// Parameterized execution already prevents the value from being interpreted
// as SQL; this check exists to surface hostile input early with a clear
// verdict instead of a confusing server error.
func CheckParameter(name string, value any) *InjectionFinding {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if !isSQLi {
		return nil
	}
	return &InjectionFinding{
		ParamName:   name,
		Fingerprint: string(fingerprint),
	}
}

// CheckParameters validates every parameter value and returns one finding per
// dirty parameter. An empty result means all values are clean.
func CheckParameters(params map[string]any) []*InjectionFinding {
	var findings []*InjectionFinding
	for name, value := range params {
		if finding := CheckParameter(name, value); finding != nil {
			findings = append(findings, finding)
		}
	}
	return findings
}
