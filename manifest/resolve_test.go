package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_SingleMatch(t *testing.T) {
	ix := mustIndex(t, twoRecordPage)

	res := ix.Resolve([]string{"123-12345678"})

	require.Len(t, res.Matched, 1)
	assert.Empty(t, res.Unmatched)
	assert.Equal(t, "123-12345678", res.Matched[0].Identifier)
	assert.Equal(t, "ABC 123 12345678 10 250.5 ... Total", res.Matched[0].Entry.Block.Text)
}

func TestResolve_CollectsUnmatched(t *testing.T) {
	ix := mustIndex(t, twoRecordPage)

	res := ix.Resolve([]string{"123-12345678", "999-00000000"})

	require.Len(t, res.Blocks(), 1)
	assert.Equal(t, "ABC 123 12345678 10 250.5 ... Total", res.Blocks()[0].Text)
	assert.Equal(t, []string{"999-00000000"}, res.Unmatched)
}

func TestResolve_RequestOrder(t *testing.T) {
	ix := mustIndex(t, twoRecordPage)

	res := ix.Resolve([]string{"456-87654321", "123-12345678"})

	require.Len(t, res.Matched, 2)
	assert.Equal(t, "456-87654321", res.Matched[0].Identifier)
	assert.Equal(t, "123-12345678", res.Matched[1].Identifier)
}

func TestResolve_ExactMatchOnly(t *testing.T) {
	ix := mustIndex(t, twoRecordPage)

	res := ix.Resolve([]string{"12312345678", "123 - 12345678", "123-12345678 "})

	assert.Empty(t, res.Matched)
	assert.Equal(t, []string{"12312345678", "123 - 12345678", "123-12345678 "}, res.Unmatched)
}

func TestResolve_RepeatedRequest(t *testing.T) {
	ix := mustIndex(t, twoRecordPage)

	res := ix.Resolve([]string{"123-12345678", "000-00000000", "123-12345678", "000-00000000"})

	assert.Len(t, res.Matched, 1)
	assert.Equal(t, []string{"000-00000000"}, res.Unmatched)
}

func TestResolve_Idempotent(t *testing.T) {
	ix := mustIndex(t, twoRecordPage, "QQ 781 55554444 3 18 Total")
	req := []string{"781-55554444", "999-00000000", "123-12345678"}

	first := ix.Resolve(req)
	second := ix.Resolve(req)

	assert.Equal(t, first, second)
}

func TestResolve_DuplicateResolvesToFirst(t *testing.T) {
	pages := []string{
		"AA 111 11111111 1 1.0 first Total",
		"BB 111 11111111 9 9.9 second Total",
	}

	for i := 0; i < 5; i++ {
		ix := mustIndex(t, pages...)
		res := ix.Resolve([]string{"111-11111111"})
		require.Len(t, res.Matched, 1)
		assert.Equal(t, "AA 111 11111111 1 1.0 first Total", res.Matched[0].Entry.Block.Text)
		assert.Equal(t, 1, res.Matched[0].Entry.Block.Page)
	}
}

func TestResolve_EmptyRequest(t *testing.T) {
	ix := mustIndex(t, twoRecordPage)

	res := ix.Resolve(nil)

	assert.Empty(t, res.Matched)
	assert.Empty(t, res.Unmatched)
	assert.Empty(t, res.Blocks())
}
