//go:build !unix

package arena

var pageSize = 4096

func mapRegion(size int) ([]byte, error) { return make([]byte, size), nil }

func unmapRegion([]byte) error { return nil }
