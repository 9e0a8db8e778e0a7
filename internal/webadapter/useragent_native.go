//go:build !(js && wasm)

package webadapter

func hostUserAgent() string {
	return ""
}
