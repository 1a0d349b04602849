package models

import (
	"fmt"
	"strconv"
)

// FormatNumber renders n without trailing zeros.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Display renders an input the way the entry reader shows it:
// text as-is, numbers followed by their helper, booleans as the helper
// question followed by Yes or No.
func (in FieldInput) Display() string {
	switch v := in.Value.(type) {
	case TextValue:
		if v.Text == nil {
			return ""
		}
		return *v.Text
	case NumberValue:
		if v.Number == nil {
			return "-"
		}
		if in.Helper == nil {
			return FormatNumber(*v.Number)
		}
		return fmt.Sprintf("%s %s", FormatNumber(*v.Number), *in.Helper)
	case BoolValue:
		answer := "No"
		if v.Bool != nil && *v.Bool {
			answer = "Yes"
		}
		if in.Helper == nil {
			return answer
		}
		return fmt.Sprintf("%s %s", *in.Helper, answer)
	case RawValue:
		switch {
		case v.String != nil:
			return *v.String
		case v.Number != nil:
			return FormatNumber(*v.Number)
		case v.Bool != nil:
			return strconv.FormatBool(*v.Bool)
		}
	}
	return ""
}
