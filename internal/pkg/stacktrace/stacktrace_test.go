package stacktrace

import (
	"reflect"
	"testing"
)

func TestInternalPaths(t *testing.T) {
	// Arrange
	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/gocontact/internal/otp/usecase.(*Usecase).Issue(...)
	/src/gocontact/internal/otp/usecase/issue.go:42 +0x1a
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2220 +0x29
`)

	// Act
	got := InternalPaths(stack)

	// Assert
	want := []string{"internal/otp/usecase/issue.go:42"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("InternalPaths() = %v, want %v", got, want)
	}
}
