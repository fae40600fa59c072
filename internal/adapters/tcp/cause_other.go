//go:build !unix

package tcp

func errnoCause(error) string { return "" }
