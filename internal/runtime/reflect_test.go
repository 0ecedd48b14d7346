package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReflector_Reflect(t *testing.T) {
	r := NewReflector(nil)

	tests := []struct {
		in   string
		want string
	}{
		{"my dog and me", "your dog and you"},
		{"i am sad", "you are sad"},
		{"you are kind", "i am kind"},
		{"i love you", "you love me"},
		{"you hate me", "i hate you"},
		{"your mother and you", "my mother and me"},
		{"they are here", "they are here"},
		{"are you sad", "am i sad"},
		{"what are you doing", "what am i doing"},
		{"why are they here", "why are they here"},
		{"were you there", "was i there"},
		{"you were right", "i was right"},
		{"i was wrong", "you were wrong"},
		{"it was late", "it was late"},
		{"mine is yours", "yours is mine"},
		{"myself", "yourself"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ReflectString(tt.in))
		})
	}
}

func TestReflector_PreservesOrderAndLength(t *testing.T) {
	r := NewReflector(nil)
	in := []string{"the", "cat", "sat", "on", "my", "mat"}
	out := r.Reflect(in)
	assert.Equal(t, []string{"the", "cat", "sat", "on", "your", "mat"}, out)
	assert.Equal(t, "my", in[4], "input slice is not modified")
}

func TestReflector_CustomTable(t *testing.T) {
	r := NewReflector(map[string]string{"WE": "they"})
	assert.Equal(t, "they went home", r.ReflectString("we went home"))
	assert.Equal(t, "my", r.ReflectString("my"), "custom table replaces the defaults")
}
