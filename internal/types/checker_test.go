package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/rustlite/internal/lexer"
	"github.com/malphas-lang/rustlite/internal/parser"
	"github.com/malphas-lang/rustlite/internal/types"
)

func check(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.New(lexer.New(src)).Parse()
	require.NoError(t, err)
	return types.New().Check(prog)
}

func TestCheckS1IdentityFunction(t *testing.T) {
	err := check(t, `fn main() -> i32 { let x: i32 = 1; return x; }`)
	assert.NoError(t, err)
}

func TestCheckS2MutabilityError(t *testing.T) {
	err := check(t, `fn main() { let x: i32 = 1; x = 2; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x")
}

func TestCheckS3UninitializedRead(t *testing.T) {
	err := check(t, `fn main() { let x: i32; let y: i32 = x; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x")
}

func TestCheckS4ArrayBounds(t *testing.T) {
	err := check(t, `fn main() { let a: [i32;3] = [1,2,3]; let b: i32 = a[5]; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5")
}

func TestCheckS5ReferenceAliasing(t *testing.T) {
	err := check(t, `fn main() { let mut x: i32 = 0; let r1 = &mut x; let r2 = &x; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x")
}

func TestCheckMutableReferenceRequiresMutVariable(t *testing.T) {
	err := check(t, `fn main() { let x: i32 = 0; let r = &mut x; }`)
	require.Error(t, err)
}

func TestCheckMutableReferenceRejectsExistingReference(t *testing.T) {
	err := check(t, `fn main() { let mut x: i32 = 0; let r1 = &x; let r2 = &mut x; }`)
	require.Error(t, err)
}

func TestCheckMultipleImmutableReferencesAllowed(t *testing.T) {
	err := check(t, `fn main() { let mut x: i32 = 0; let r1 = &x; let r2 = &x; }`)
	assert.NoError(t, err)
}

func TestCheckFirstWriteAllowedOnUninitializedNonMut(t *testing.T) {
	err := check(t, `fn main() { let x: i32; x = 1; }`)
	assert.NoError(t, err)
}

func TestCheckReassignAfterFirstWriteRejected(t *testing.T) {
	err := check(t, `fn main() { let x: i32; x = 1; x = 2; }`)
	require.Error(t, err)
}

func TestCheckDerefRequiresReference(t *testing.T) {
	err := check(t, `fn main() { let x: i32 = 0; let y: i32 = *x; }`)
	require.Error(t, err)
}

func TestCheckDerefOfReferenceOk(t *testing.T) {
	err := check(t, `fn main() { let x: i32 = 0; let r = &x; let y: i32 = *r; }`)
	assert.NoError(t, err)
}

func TestCheckUnaryMinusRequiresI32(t *testing.T) {
	err := check(t, `fn main() { let x: i32 = 0; let r = &x; let y = -r; }`)
	require.Error(t, err)
}

func TestCheckCallArityMismatch(t *testing.T) {
	err := check(t, `fn f(a: i32) -> i32 { return a; } fn main() { let x: i32 = f(1, 2); }`)
	require.Error(t, err)
}

func TestCheckCallArgTypeMismatch(t *testing.T) {
	err := check(t, `fn f(a: i32) -> i32 { return a; } fn main() { let x: i32 = 0; let r = &x; let y: i32 = f(r); }`)
	require.Error(t, err)
}

func TestCheckCallOk(t *testing.T) {
	err := check(t, `fn f(a: i32) -> i32 { return a; } fn main() -> i32 { return f(1); }`)
	assert.NoError(t, err)
}

func TestCheckReturnTypeMismatch(t *testing.T) {
	err := check(t, `fn main() -> i32 { return; }`)
	require.Error(t, err)
}

func TestCheckReturnValueWhenVoidDeclared(t *testing.T) {
	err := check(t, `fn main() { return 1; }`)
	require.Error(t, err)
}

func TestCheckBreakOutsideLoopRejected(t *testing.T) {
	err := check(t, `fn main() { break; }`)
	require.Error(t, err)
}

func TestCheckContinueOutsideLoopRejected(t *testing.T) {
	err := check(t, `fn main() { continue; }`)
	require.Error(t, err)
}

func TestCheckBreakInsideWhileOk(t *testing.T) {
	err := check(t, `fn main() { let mut x: i32 = 0; while x < 10 { break; } }`)
	assert.NoError(t, err)
}

func TestCheckForLoopRangeMustBeI32(t *testing.T) {
	err := check(t, `fn main() { let x: i32 = 0; let r = &x; for i in r..10 { } }`)
	require.Error(t, err)
}

func TestCheckForLoopOk(t *testing.T) {
	err := check(t, `fn main() { for i in 0..10 { } }`)
	assert.NoError(t, err)
}

func TestCheckTupleMemberAssignRequiresMut(t *testing.T) {
	err := check(t, `fn main() { let t: (i32, i32) = (1, 2); t.0 = 3; }`)
	require.Error(t, err)
}

func TestCheckTupleMemberAssignOk(t *testing.T) {
	err := check(t, `fn main() { let mut t: (i32, i32) = (1, 2); t.0 = 3; }`)
	assert.NoError(t, err)
}

func TestCheckTupleMemberAssignTypeMismatch(t *testing.T) {
	err := check(t, `fn main() { let mut t: (i32, i32) = (1, 2); let x: i32 = 0; let r = &x; t.0 = r; }`)
	require.Error(t, err)
}

func TestCheckArrayElementAssignRequiresMut(t *testing.T) {
	err := check(t, `fn main() { let a: [i32; 2] = [1, 2]; a[0] = 5; }`)
	require.Error(t, err)
}

func TestCheckArrayElementAssignOk(t *testing.T) {
	err := check(t, `fn main() { let mut a: [i32; 2] = [1, 2]; a[0] = 5; }`)
	assert.NoError(t, err)
}

func TestCheckArrayElementTypeMismatch(t *testing.T) {
	err := check(t, `fn main() { let mut a: [i32; 2] = [1, 2]; let x: i32 = 0; let r = &x; a[0] = r; }`)
	require.Error(t, err)
}

func TestCheckIfExprMatchingArmTypesOk(t *testing.T) {
	err := check(t, `fn main() { let mut x: i32 = 0; let r = &x; let y = if 1 { 1 } else { *r }; }`)
	assert.NoError(t, err)
}

func TestCheckLoopExprWithBreakValue(t *testing.T) {
	err := check(t, `fn main() -> i32 { let y: i32 = loop { break 7; }; return y; }`)
	assert.NoError(t, err)
}

func TestCheckRedeclarationShadowsWithinSameScope(t *testing.T) {
	err := check(t, `fn main() { let x: i32 = 1; let x: i32 = 2; }`)
	assert.NoError(t, err)
}

func TestTypeEqualityReflexiveAndStructural(t *testing.T) {
	a := types.Array{Elem: types.I32{}, Size: 3}
	b := types.Array{Elem: types.I32{}, Size: 3}
	assert.True(t, types.Equal(a, a))
	assert.True(t, types.Equal(a, b))

	c := types.Array{Elem: types.I32{}, Size: 4}
	assert.False(t, types.Equal(a, c))

	r1 := types.Ref{Mut: true, To: types.I32{}}
	r2 := types.Ref{Mut: false, To: types.I32{}}
	assert.False(t, types.Equal(r1, r2))

	t1 := types.Tuple{Elems: []types.Type{types.I32{}, types.I32{}}}
	t2 := types.Tuple{Elems: []types.Type{types.I32{}, types.I32{}}}
	assert.True(t, types.Equal(t1, t2))
}

func TestUndeclaredVariableRejected(t *testing.T) {
	err := check(t, `fn main() { let x: i32 = y; }`)
	require.Error(t, err)
}

func TestUndeclaredFunctionRejected(t *testing.T) {
	err := check(t, `fn main() { let x: i32 = f(1); }`)
	require.Error(t, err)
}
