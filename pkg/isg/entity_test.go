package isg

import (
	"testing"

	"github.com/kraklabs/isgraph/pkg/interning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocatedEntityValidates(t *testing.T) {
	e := NewLocatedEntity(LangRust, KindFunction, "helper", interning.NameID(1),
		Location{FileID: 1, LineStart: 1, LineEnd: 1}, "src/main.rs", "fn helper()", "fn helper() {}")
	require.NoError(t, e.Validate())
	assert.Equal(t, ISGL1Key("rust:fn:helper:src_main_rs:1-1"), e.Key)
}

func TestEntityValidateRejectsMissingCurrentCode(t *testing.T) {
	e := Entity{
		Key:      "rust:fn:x:src_main_rs:1-1",
		Temporal: InitialState(),
	}
	assert.Error(t, e.Validate())
}

func TestImplBlockRequiresForType(t *testing.T) {
	e := Entity{
		Key:         "go:impl:x:src_a_go:1-1",
		Kind:        KindImplBlock,
		Temporal:    InitialState(),
		CurrentCode: strPtr("impl X for Y {}"),
	}
	assert.Error(t, e.Validate())

	e.KindData = &ImplBlockData{ForType: "Y"}
	assert.NoError(t, e.Validate())
}

func strPtr(s string) *string { return &s }
