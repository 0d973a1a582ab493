package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "none", in: "no mentions here", want: nil},
		{name: "single", in: "thanks @alice", want: []string{"alice"}},
		{name: "deduplicated in order", in: "@bob then @alice then @bob again", want: []string{"bob", "alice"}},
		{name: "case sensitive", in: "@Bob and @bob", want: []string{"Bob", "bob"}},
		{name: "stops at punctuation", in: "ping @carol_2, and @dave.", want: []string{"carol_2", "dave"}},
		{name: "bare at sign", in: "email me @ home", want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Extract(tc.in))
		})
	}
}
