package types

// StringPtr converts a string to a pointer to a string
func StringPtr(s string) *string {
	return &s
}

// IntPtr converts an int to a pointer to an int
func IntPtr(i int) *int {
	return &i
}

// BoolPtr converts a bool to a pointer to a bool
func BoolPtr(b bool) *bool {
	return &b
}

// Float64Ptr converts a float64 to a pointer to a float64
func Float64Ptr(f float64) *float64 {
	return &f
}

// PositiveIntPtr returns a pointer to i, or nil when i is not positive
func PositiveIntPtr(i int) *int {
	if i <= 0 {
		return nil
	}
	return &i
}

// FirstFloat64 returns the first non-nil pointer of the list
func FirstFloat64(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
