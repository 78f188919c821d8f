package utils

func Deref[T any](p *T, defaultValue T) T {
	if p != nil {
		return *p
	}
	return defaultValue
}

func Ptr[T any](v T) *T {
	return &v
}
