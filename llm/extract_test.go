package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCode(t *testing.T) {
	t.Run("BareCode", func(t *testing.T) {
		code := "def main():\n    print('hello')\n"
		assert.Equal(t, "def main():\n    print('hello')", ExtractCode(code))
	})

	t.Run("FencedWithLanguageTag", func(t *testing.T) {
		response := "```python\nprint('hello')\n```"
		assert.Equal(t, "print('hello')", ExtractCode(response))
	})

	t.Run("FencedWithoutTag", func(t *testing.T) {
		response := "```\nint main() { return 0; }\n```"
		assert.Equal(t, "int main() { return 0; }", ExtractCode(response))
	})

	t.Run("FencedWithSurroundingProse", func(t *testing.T) {
		response := "Here is the solution:\n```go\npackage main\n\nfunc main() {}\n```\nHope this helps!"
		assert.Equal(t, "package main\n\nfunc main() {}", ExtractCode(response))
	})

	t.Run("TildeFence", func(t *testing.T) {
		response := "~~~java\nclass Main {}\n~~~"
		assert.Equal(t, "class Main {}", ExtractCode(response))
	})

	t.Run("UnclosedFence", func(t *testing.T) {
		response := "```python\nprint(1)\nprint(2)"
		assert.Equal(t, "print(1)\nprint(2)", ExtractCode(response))
	})

	t.Run("CppTagSurvives", func(t *testing.T) {
		response := "```c++\n#include <iostream>\nint main() {}\n```"
		assert.Equal(t, "#include <iostream>\nint main() {}", ExtractCode(response))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, "", ExtractCode("   \n  "))
	})
}

func TestIsPass(t *testing.T) {
	cases := []struct {
		feedback string
		want     bool
	}{
		{"PASS", true},
		{"pass", true},
		{"Pass, looks good overall", true},
		{"The code passes all checks", true},
		{"Missing error handling on line 4", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsPass(tc.feedback), "feedback: %q", tc.feedback)
	}
}
