package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_BasicShapes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"username", "username"},
		{"@Username", "username"},
		{"  @Username  ", "username"},
		{"UserName", "username"},
		{"https://t.me/User", "user"},
		{"http://t.me/User", "user"},
		{"t.me/User", "user"},
		{"t.me/User/", "user"},
		{"https://t.me/Bar?start=1/", "bar"},
		{"t.me/User?start=abc", "user"},
		{"", ""},
		{"   ", ""},
		{"@", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "input %q", tc.in)
	}
}

func TestNormalize_SameKeyForAllShapes(t *testing.T) {
	shapes := []string{
		"cooluser",
		"@cooluser",
		"@CoolUser",
		"https://t.me/CoolUser",
		"t.me/cooluser?start=ref123",
	}
	for _, s := range shapes {
		assert.Equal(t, "cooluser", Normalize(s), "input %q", s)
	}
}

func TestNormalize_DoubleApplicationIsNoOp(t *testing.T) {
	for _, raw := range []string{"@Foo", "foo", "https://t.me/Bar?start=1/", "t.me/Baz"} {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once), "input %q", raw)
	}
}

func TestNormalize_HandleContainingTMe(t *testing.T) {
	// The suffix after the last t.me/ wins.
	assert.Equal(t, "real", Normalize("https://t.me/t.me/real"))
}
