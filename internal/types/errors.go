package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed run.
type ErrorKind int

const (
	// StructuralError: no qualifying sheet or header row.
	StructuralError ErrorKind = iota + 1
	// SchemaError: a required canonical column could not be resolved.
	SchemaError
	// ValueError: a value could not be parsed or mapped.
	ValueError
)

func (k ErrorKind) String() string {
	switch k {
	case StructuralError:
		return "structural"
	case SchemaError:
		return "schema"
	case ValueError:
		return "value"
	}
	return "unknown"
}

// Error is the failure of one run. It carries what was examined so the
// dashboard can tell the user what to fix.
type Error struct {
	Kind    ErrorKind
	Msg     string
	Sheets  []string
	Fields  []Field
	Columns []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if len(e.Fields) > 0 {
		names := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			names[i] = string(f)
		}
		fmt.Fprintf(&b, " (missing: %s)", strings.Join(names, ", "))
	}
	if len(e.Sheets) > 0 {
		fmt.Fprintf(&b, " (sheets checked: %s)", strings.Join(e.Sheets, ", "))
	}
	return b.String()
}

// Hint returns the corrective input the user must supply.
func (e *Error) Hint() string {
	switch e.Kind {
	case StructuralError:
		return "Re-upload a workbook that contains the expected sheet and header row."
	case SchemaError:
		return "Re-upload a workbook whose header row includes the required columns."
	case ValueError:
		return "Check the rating values in the workbook and re-upload."
	}
	return "Try another file."
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
