package dispatch

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflect_TypedFunction(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	reg := newTestRegistry()
	add := Reflect(func(a, b int) int { return a + b }, "a", "b")
	require.NoError(t, reg.Connect(add, "sum", "calc", WithArgs(2.0)))

	// --- Act ---
	responses, err := reg.Send("sum", "calc", Named(map[string]any{"b": int64(40)}))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []any{42}, valuesOf(responses))
	assert.Equal(t, []string{"a", "b"}, add.Signature().Names())
	runtime.KeepAlive(add)
}

func TestReflect_Results(t *testing.T) {
	t.Parallel()

	errBad := errors.New("bad")
	testCases := []struct {
		name      string
		fn        any
		wantValue any
		wantErr   error
	}{
		{name: "no results", fn: func() {}, wantValue: nil},
		{name: "value only", fn: func() string { return "v" }, wantValue: "v"},
		{name: "nil error only", fn: func() error { return nil }, wantValue: nil},
		{name: "error only", fn: func() error { return errBad }, wantErr: errBad},
		{name: "value and error", fn: func() (int, error) { return 7, nil }, wantValue: 7},
		{name: "value and failing error", fn: func() (int, error) { return 0, errBad }, wantValue: 0, wantErr: errBad},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			recv := Reflect(tc.fn)
			call, err := bind(recv, "s", nil, Extra{}, nil, nil)
			require.NoError(t, err)

			value, err := recv.fn(call)

			assert.Equal(t, tc.wantValue, value)
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func TestReflect_Variadic(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	join := Reflect(func(sep string, parts ...string) string { return strings.Join(parts, sep) }, "sep")
	require.NoError(t, reg.Connect(join, "join", nil))

	responses, err := reg.Send("join", nil, Args("-", "a", "b", "c"))

	require.NoError(t, err)
	assert.Equal(t, []any{"a-b-c"}, valuesOf(responses))
	runtime.KeepAlive(join)
}

func TestReflect_TypeMismatchIsBindError(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	r := Reflect(func(n int) int { return n }, "n")
	require.NoError(t, reg.Connect(r, "x", nil))

	responses, err := reg.SendRobust("x", nil, Named(map[string]any{"n": "not a number"}))

	require.NoError(t, err)
	require.Len(t, responses, 1)
	var be *BindError
	require.ErrorAs(t, responses[0].Err, &be)
	assert.Contains(t, be.Reason, `argument "n"`)
	runtime.KeepAlive(r)
}

func TestReflect_NumericConversion(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		fn         any
		arg        any
		want       any
		wantReason string
	}{
		{name: "int to uint8", fn: func(n uint8) uint8 { return n }, arg: 200, want: uint8(200)},
		{name: "whole float to int", fn: func(n int) int { return n }, arg: 3.0, want: 3},
		{name: "int to float32", fn: func(f float32) float32 { return f }, arg: 2, want: float32(2)},
		{name: "uint to int64", fn: func(n int64) int64 { return n }, arg: uint(9), want: int64(9)},
		{name: "overflowing uint8", fn: func(n uint8) uint8 { return n }, arg: 300, wantReason: "out of range"},
		{name: "negative to uint8", fn: func(n uint8) uint8 { return n }, arg: -1, wantReason: "out of range"},
		{name: "fractional float to int", fn: func(n int) int { return n }, arg: 2.9, wantReason: "not a whole number"},
		{name: "huge float to int", fn: func(n int) int { return n }, arg: 1e30, wantReason: "out of range"},
		{name: "overflowing int8", fn: func(n int8) int8 { return n }, arg: int64(-129), wantReason: "out of range"},
		{name: "overflowing float32", fn: func(f float32) float32 { return f }, arg: 1e300, wantReason: "out of range"},
		{name: "huge uint to int64", fn: func(n int64) int64 { return n }, arg: uint64(1 << 63), wantReason: "out of range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			recv := Reflect(tc.fn, "n")
			call, err := bind(recv, "s", nil, Extra{}, []any{tc.arg}, nil)
			require.NoError(t, err)

			// --- Act ---
			value, err := recv.fn(call)

			// --- Assert ---
			if tc.wantReason == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.want, value)
				return
			}
			var be *BindError
			require.ErrorAs(t, err, &be)
			assert.Contains(t, be.Reason, tc.wantReason)
			assert.Nil(t, value)
		})
	}
}

func TestReflect_PanicsOnMisuse(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { Reflect("not a func") })
	assert.Panics(t, func() { Reflect(func(a, b int) {}, "a") })
	assert.Panics(t, func() { Reflect(func() (int, int) { return 0, 0 }) })
	assert.Panics(t, func() { Reflect(func() (int, int, error) { return 0, 0, nil }) })
	assert.NotPanics(t, func() { Reflect(fmt.Sprint) })
}
