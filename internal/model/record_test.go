package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterFor(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"API", "A"},
		{"agile", "A"},
		{"  zoom", "Z"},
		{"3D printing", "0"},
		{"404", "0"},
		{".NET", "0"},
		{"Émigré", "0"},
		{"", "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LetterFor(tt.term), tt.term)
	}
}

func TestNormalizeLetter(t *testing.T) {
	for in, want := range map[string]string{"a": "A", "Z": "Z", "0": "0", "0-9": "0"} {
		got, err := NormalizeLetter(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "AB", "#", "1"} {
		_, err := NormalizeLetter(in)
		assert.ErrorIs(t, err, ErrValidation, in)
	}
}

func TestRecordNormalizeAndValidate(t *testing.T) {
	r := Record{Letter: "x", Term: "  Widget ", Definition: " A thing "}.Normalize()
	assert.Equal(t, Record{Letter: "X", Term: "Widget", Definition: "A thing"}, r)

	r = Record{Letter: "??", Term: "2FA", Definition: "Two factor"}.Normalize()
	assert.Equal(t, "0", r.Letter)

	assert.ErrorIs(t, Record{Definition: "d"}.Validate(), ErrValidation)
	assert.ErrorIs(t, Record{Term: "t"}.Validate(), ErrValidation)
	assert.ErrorIs(t, Record{Letter: "AA", Term: "t", Definition: "d"}.Validate(), ErrValidation)
	assert.NoError(t, Record{Letter: "T", Term: "t", Definition: "d"}.Validate())
}

func TestSortRecords(t *testing.T) {
	in := []Record{
		{Letter: "B", Term: "beta"},
		{Letter: "A", Term: "apple"},
		{Letter: "A", Term: "API"},
		{Letter: "0", Term: "3D"},
		{Letter: "A", Term: "Agile"},
	}
	out := SortRecords(in)
	var terms []string
	for _, r := range out {
		terms = append(terms, r.Term)
	}
	assert.Equal(t, []string{"3D", "Agile", "API", "apple", "beta"}, terms)
	assert.Equal(t, "beta", in[0].Term, "input must not be reordered")
}
