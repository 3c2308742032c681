package specs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckWellFormed(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		ok   bool
	}{
		{"simple", `<spec><weight unit="kg">1.5</weight></spec>`, true},
		{"declaration", `<?xml version="1.0"?>` + "\n" + `<spec/>`, true},
		{"unclosed", `<spec><weight></spec>`, false},
		{"two roots", `<a/><b/>`, false},
		{"trailing text", `<a/>tail`, false},
		{"plain text", `not xml`, false},
		{"empty", ``, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkWellFormed(tc.doc)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
