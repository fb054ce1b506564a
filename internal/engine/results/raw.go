package results

import (
	"bytes"
	"encoding/json"
	"io"

	"vreport/internal/core/errors"
)

// Session is one browser run as written by the test runner.
type Session struct {
	Browser     *SessionBrowser `json:"browser"`
	TestResults *Suite          `json:"testResults"`
}

type SessionBrowser struct {
	Name string `json:"name"`
}

// Suite is a named group of suites and tests. The runner nests them as
// component > story > viewport.
type Suite struct {
	Name   string  `json:"name"`
	Suites []Suite `json:"suites"`
	Tests  []*Test `json:"tests"`
}

type Test struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Skipped bool   `json:"skipped,omitempty"`
}

// DecodeSessions reads either {"sessions": [...]} or a bare session array.
func DecodeSessions(r io.Reader) ([]Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "read sessions")
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New(errors.CodeValidationError, "sessions input is empty")
	}

	if trimmed[0] == '[' {
		var sessions []Session
		if err := json.Unmarshal(trimmed, &sessions); err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "decode sessions")
		}
		return sessions, nil
	}

	var envelope struct {
		Sessions []Session `json:"sessions"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "decode sessions")
	}
	return envelope.Sessions, nil
}
