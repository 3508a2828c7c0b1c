package isg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocatedKeyMatchesMinimalIngestScenario(t *testing.T) {
	key := LocatedKey(LangRust, KindFunction, "main", "src/main.rs", 1, 1)
	assert.Equal(t, ISGL1Key("rust:fn:main:src_main_rs:1-1"), key)

	key2 := LocatedKey(LangRust, KindFunction, "helper", "src/main.rs", 1, 1)
	assert.Equal(t, ISGL1Key("rust:fn:helper:src_main_rs:1-1"), key2)
}

func TestSanitizePathReplacesSlashesAndDots(t *testing.T) {
	assert.Equal(t, "a_b_c_go", SanitizePath("a/b\\c.go"))
}

func TestProposedKeyIsDeterministicForSameTimestamp(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	k1 := ProposedKey("pkg/foo.go", "NewThing", KindFunction, ts)
	k2 := ProposedKey("pkg/foo.go", "NewThing", KindFunction, ts)
	assert.Equal(t, k1, k2)
}

func TestContentHashEqualForNormalizedSignatures(t *testing.T) {
	a := ContentHash("func   helper()  {}")
	b := ContentHash("func helper() {}")
	assert.Equal(t, a, b)
}
