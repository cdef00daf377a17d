package bridge

// NativeBridge is implemented by the native side (the C++ core behind
// Kotlin/Swift glue). gomobile exposes this as an interface that native code
// can satisfy.
//
// Rules for gomobile compatibility:
//   - methods may only use primitive types, strings, []byte, or other
//     gomobile-bound types as parameters and return values
//   - no variadic parameters
//   - errors are returned as a second return value
type NativeBridge interface {
	// InvokeHandler routes a JSON encoded result message to whatever is
	// waiting on handlerID. It must be safe to call from any thread.
	InvokeHandler(handlerID int64, result string)

	// RegisterDevice hands a fresh push registration token to the core.
	// It is a singleton sink, not correlated with any handler.
	RegisterDevice(token string) int

	// Suspended is forwarded when the app goes to the background.
	Suspended() int

	// Resumed is forwarded when the app returns to the foreground.
	Resumed() int
}
