package decorator_test

import (
	"testing"

	"github.com/cadl-lang/cadlc/decorator"
	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/stretchr/testify/require"
)

func TestInvokeReturnsNilOnSuccess(t *testing.T) {
	called := false
	b := &decorator.Binding{
		Descriptor: decorator.Descriptor{Path: "noop"},
		Fn:         func(ctx *decorator.Context) { called = true },
	}
	d := b.Invoke(&decorator.Context{Site: diagnostic.NoTarget})
	require.Nil(t, d)
	require.True(t, called)
}

func TestInvokeRecoversPanicIntoDiagnostic(t *testing.T) {
	b := &decorator.Binding{
		Descriptor: decorator.Descriptor{Path: "boom"},
		Fn:         func(ctx *decorator.Context) { panic("bad argument") },
	}
	d := b.Invoke(&decorator.Context{Site: diagnostic.NoTarget})
	require.NotNil(t, d)
	require.Equal(t, diagnostic.CodeDecoratorThrew, d.Code)
	require.Contains(t, d.Format(), "boom")
	require.Contains(t, d.Format(), "bad argument")
}
