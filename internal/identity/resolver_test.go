package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Luka Dončić":         "luka doncic",
		"Jaren Jackson Jr.":   "jaren jackson",
		"Karl-Anthony Towns":  "karl anthony towns",
		"  De'Aaron   Fox ":   "deaaron fox",
		"Nikola Jokić":        "nikola jokic",
		"Gary Trent Jr":       "gary trent",
		"Marvin Bagley III":   "marvin bagley",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestResolver(t *testing.T) {
	r := NewResolver([]Candidate{
		{ID: 246, Name: "Nikola Jokic"},
		{ID: 132, Name: "Luka Doncic"},
		{ID: 3547238, Name: "Jaren Jackson Jr."},
		{ID: 17, Name: "Jrue Holiday"},
	}, 0)

	id, ok := r.Resolve("Nikola Jokić")
	assert.True(t, ok)
	assert.Equal(t, 246, id)

	id, ok = r.Resolve("Jaren Jackson")
	assert.True(t, ok)
	assert.Equal(t, 3547238, id)

	id, ok = r.Resolve("Luka Doncik")
	assert.True(t, ok)
	assert.Equal(t, 132, id)

	_, ok = r.Resolve("Victor Wembanyama")
	assert.False(t, ok)

	_, ok = r.Resolve("")
	assert.False(t, ok)
	assert.Equal(t, 4, r.Len())
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("abc", "abc"))
	assert.InDelta(t, 0.75, Similarity("abcd", "abcx"), 1e-9)
	assert.Equal(t, 1.0, Similarity("", ""))
}
