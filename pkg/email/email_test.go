package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "bare address", in: "ana@example.com", want: "ana@example.com", ok: true},
		{name: "surrounding space", in: "  ana@example.com ", want: "ana@example.com", ok: true},
		{name: "display name", in: "Ana Ortiz <ana@example.com>", want: "ana@example.com", ok: true},
		{name: "empty", in: "   ", ok: false},
		{name: "no domain", in: "ana", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecipients(t *testing.T) {
	got := Recipients("Ana@Example.com", "", "bob@example.com", "ana@example.com", "broken")
	assert.Equal(t, []string{"Ana@Example.com", "bob@example.com"}, got)
	assert.Empty(t, Recipients())
}
