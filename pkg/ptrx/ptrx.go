// Package ptrx provides pointer helpers for building AWS SDK inputs.
package ptrx

// Bool returns a pointer value for the bool value passed in.
func Bool(v bool) *bool {
	return &v
}

// String returns a pointer value for the string value passed in.
func String(v string) *string {
	return &v
}

// Int returns a pointer value for the int value passed in.
func Int(v int) *int {
	return &v
}

// Int32 returns a pointer value for the int32 value passed in.
func Int32(v int32) *int32 {
	return &v
}

// Float32 returns a pointer value for the float32 value passed in.
func Float32(v float32) *float32 {
	return &v
}

// Float64 returns a pointer value for the float64 value passed in.
func Float64(v float64) *float64 {
	return &v
}

// ToString returns the value of the string pointer passed in or "" if the
// pointer is nil.
func ToString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ToInt32 returns the value of the int32 pointer passed in or 0 if the
// pointer is nil.
func ToInt32(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}

// ToFloat32 returns the value of the float32 pointer passed in or 0 if the
// pointer is nil.
func ToFloat32(p *float32) float32 {
	if p == nil {
		return 0
	}
	return *p
}
